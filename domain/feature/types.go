package feature

// Tag is one entry in the fixed mechanic vocabulary. Tags are structural
// signals over rules text; they say nothing about whether a combo is good.
type Tag string

const (
	TagUntapSelf   Tag = "untap_self"
	TagUntapOther  Tag = "untap_other"
	TagETBTrigger  Tag = "etb_trigger"
	TagLTBTrigger  Tag = "ltb_trigger"
	TagDiesTrigger Tag = "dies_trigger"
	TagTapAbility  Tag = "tap_ability"
	TagSacOutlet   Tag = "sac_outlet"
	TagManaAdd     Tag = "mana_add"
	TagTokenCreate Tag = "token_create"
	TagStormCount  Tag = "storm_count"
	TagFlicker     Tag = "flicker"
	TagBounce      Tag = "bounce"
	TagDraw        Tag = "draw"
	TagCopySpell   Tag = "copy_spell"
	TagTutor       Tag = "tutor"
	TagRecur       Tag = "recur"
	TagCostReduce  Tag = "cost_reduce"
	TagLifegain    Tag = "lifegain"
)

// AllTags fixes the vocabulary order for exports and stable listings.
var AllTags = []Tag{
	TagUntapSelf,
	TagUntapOther,
	TagETBTrigger,
	TagLTBTrigger,
	TagDiesTrigger,
	TagTapAbility,
	TagSacOutlet,
	TagManaAdd,
	TagTokenCreate,
	TagStormCount,
	TagFlicker,
	TagBounce,
	TagDraw,
	TagCopySpell,
	TagTutor,
	TagRecur,
	TagCostReduce,
	TagLifegain,
}

// Set is the derived feature record for one card. Tag values count how many
// independent clauses matched; most consumers only care about presence.
type Set struct {
	CardName string      `json:"card_name"`
	Tags     map[Tag]int `json:"tags,omitempty"`
}

// Has reports whether the tag was detected at all.
func (s Set) Has(tag Tag) bool {
	return s.Tags[tag] > 0
}

// HasAll reports whether every given tag was detected.
func (s Set) HasAll(tags ...Tag) bool {
	for _, t := range tags {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// Count returns the number of distinct tags detected.
func (s Set) Count() int {
	return len(s.Tags)
}

// List returns detected tags in canonical vocabulary order.
func (s Set) List() []Tag {
	var out []Tag
	for _, t := range AllTags {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
