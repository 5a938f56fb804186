package feature

import (
	"regexp"
	"strings"
)

// Matcher inspects normalized rules text and reports the tags it detects.
// Matchers are pure and independent of each other; the registry fixes their
// evaluation order so extraction stays reproducible.
type Matcher interface {
	Name() string
	Match(text string) []Tag
}

// Registry is the ordered matcher list applied by Extract.
var Registry = []Matcher{
	untapMatcher{},
	pattern("etb", `enters? the battlefield`, TagETBTrigger),
	pattern("ltb", `leaves? the battlefield`, TagLTBTrigger),
	pattern("dies", `\bdies\b`, TagDiesTrigger),
	pattern("tap-ability", `\{t\}:`, TagTapAbility),
	pattern("sac-outlet", `sacrifice (a |an |another |two |three |x )`, TagSacOutlet),
	pattern("mana-add", `add \{|add (one|two|three|x) mana`, TagManaAdd),
	// Token creation is itself an enters-the-battlefield event, so the
	// matcher reports both tags.
	pattern("token", `creates? .{0,80}\btoken`, TagTokenCreate, TagETBTrigger),
	pattern("storm", `\bstorm\b`, TagStormCount),
	pattern("flicker", `exile .{0,120}return .{0,80}to the battlefield`, TagFlicker),
	pattern("bounce", `return .{0,80}owner's hand`, TagBounce),
	pattern("draw", `draws? (a card|\w+ cards?)`, TagDraw),
	pattern("copy-spell", `copy .{0,60}\b(spell|instant|sorcery)\b`, TagCopySpell),
	pattern("tutor", `search your library`, TagTutor),
	pattern("recur", `(return|put) .{0,80}from your graveyard`, TagRecur),
	pattern("cost-reduce", `costs? \{?.{0,20}(less to cast|reduced)`, TagCostReduce),
	pattern("lifegain", `gains? \d+ life|you gain life`, TagLifegain),
}

// --- Pattern matcher: one regex, fixed tags ---

type patternMatcher struct {
	name string
	re   *regexp.Regexp
	tags []Tag
}

func pattern(name, expr string, tags ...Tag) Matcher {
	return patternMatcher{name: name, re: regexp.MustCompile(expr), tags: tags}
}

func (m patternMatcher) Name() string { return m.name }

func (m patternMatcher) Match(text string) []Tag {
	if m.re.MatchString(text) {
		return m.tags
	}
	return nil
}

// --- Untap matcher: clause-scoped self/other distinction ---

// untapMatcher distinguishes untap_self from untap_other per clause. A clause
// that brings another permanent into it, either as the untap target ("untap
// target creature", "untap enchanted creature") or as the trigger ("whenever
// another creature enters the battlefield, untap ~"), counts as untap_other.
// A purely self-referential clause ("{t}: untap ~") counts as untap_self.
type untapMatcher struct{}

var (
	clauseSplitRe = regexp.MustCompile(`[.;\n]`)
	untapWordRe   = regexp.MustCompile(`\buntaps?\b`)
	otherRefRe    = regexp.MustCompile(`\b(another|other|target|each|all|enchanted|equipped|up to|that creature|those|lands?|creatures you control|permanents)\b`)
	selfRefRe     = regexp.MustCompile(`~|\bit\b|\bthis\b`)
	noUntapRe     = regexp.MustCompile(`(doesn't|don't) untap|untap step`)
)

func (untapMatcher) Name() string { return "untap" }

func (untapMatcher) Match(text string) []Tag {
	var tags []Tag
	for _, clause := range clauseSplitRe.Split(text, -1) {
		if !untapWordRe.MatchString(clause) || noUntapRe.MatchString(clause) {
			continue
		}
		switch {
		case otherRefRe.MatchString(clause):
			tags = append(tags, TagUntapOther)
		case selfRefRe.MatchString(clause):
			tags = append(tags, TagUntapSelf)
		default:
			tags = append(tags, TagUntapOther)
		}
	}
	return tags
}

// --- Normalization ---

var reminderRe = regexp.MustCompile(`\([^)]*\)`)

// Normalize prepares rules text for matching: reminder text in parentheses
// is dropped (its templated wording causes false positives), everything is
// lowercased, and the card's self-references by name become "~".
func Normalize(text, name, shortName string) string {
	t := reminderRe.ReplaceAllString(text, "")
	t = strings.ToLower(t)
	if name != "" {
		t = strings.ReplaceAll(t, strings.ToLower(name), "~")
	}
	if shortName != "" && !strings.EqualFold(shortName, name) {
		t = strings.ReplaceAll(t, strings.ToLower(shortName), "~")
	}
	return t
}
