package combo

import (
	"fmt"
	"log"
	"sort"

	"gocombo/domain/card"
	"gocombo/domain/core"
	"gocombo/domain/feature"
)

// Synthesizer turns a card universe plus feature sets into labeled reasoning
// examples. Purely local: no I/O, no model calls. The pairwise enumeration
// is the dominant cost for the full legal pool (low thousands of cards).
type Synthesizer struct {
	Rules        []Rule
	NegativeRate float64
	Seed         int64
}

// Summary reports what a synthesis run produced; batch callers print it
// instead of failing on individual bad records.
type Summary struct {
	Pairs     int
	Positives int
	Negatives int
	Skipped   int
}

// NewSynthesizer builds a synthesizer with the default rule registry.
func NewSynthesizer(negativeRate float64, seed int64) *Synthesizer {
	return &Synthesizer{
		Rules:        DefaultRules,
		NegativeRate: negativeRate,
		Seed:         seed,
	}
}

// Synthesize evaluates every unordered pair of distinct cards against the
// rule registry. The first matching rule wins and renders its template as a
// positive example; non-matching pairs become negatives at the sampling
// rate. The output set is independent of the input card order: pairs are
// enumerated over name-sorted cards and the negative sampling decision is a
// hash of the pair key, not an RNG sequence.
func (s *Synthesizer) Synthesize(records []card.Record, features map[string]feature.Set) ([]ReasoningExample, Summary) {
	var summary Summary

	byName := make(map[string]card.Record, len(records))
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if !rec.Valid() {
			summary.Skipped++
			log.Printf("[Synthesizer] skipping malformed card record (missing name)")
			continue
		}
		if _, dup := byName[rec.Name]; dup {
			summary.Skipped++
			log.Printf("[Synthesizer] skipping duplicate card record %q", rec.Name)
			continue
		}
		byName[rec.Name] = rec
		names = append(names, rec.Name)
	}
	sort.Strings(names)

	var examples []ReasoningExample
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			first, second := byName[names[i]], byName[names[j]]
			summary.Pairs++

			if ex, ok := s.matchPair(first, second, features); ok {
				examples = append(examples, ex)
				summary.Positives++
				continue
			}

			if s.sampleNegative(names[i], names[j]) {
				completion, _ := Render(TemplateNoCombo, first, second)
				examples = append(examples, ReasoningExample{
					Cards:      []string{first.Name, second.Name},
					Prompt:     PairPrompt(first, second),
					Completion: completion,
					Label:      false,
				})
				summary.Negatives++
			}
		}
	}

	return examples, summary
}

// matchPair tries each rule in priority order, in both role orientations.
func (s *Synthesizer) matchPair(first, second card.Record, features map[string]feature.Set) (ReasoningExample, bool) {
	fsFirst := features[first.Name]
	fsSecond := features[second.Name]

	for _, rule := range s.Rules {
		var enabler, payoff card.Record
		switch {
		case rule.Match(fsFirst, fsSecond):
			enabler, payoff = first, second
		case rule.Match(fsSecond, fsFirst):
			enabler, payoff = second, first
		default:
			continue
		}

		completion, ok := Render(rule.Template, enabler, payoff)
		if !ok {
			continue
		}
		return ReasoningExample{
			Cards:      []string{enabler.Name, payoff.Name},
			Rule:       rule.ID,
			Prompt:     PairPrompt(enabler, payoff),
			Completion: completion,
			Label:      true,
		}, true
	}
	return ReasoningExample{}, false
}

// sampleNegative decides deterministically whether a non-combo pair becomes
// a negative example. Keyed on (seed, pair key) so reruns and reordered
// inputs pick the same pairs.
func (s *Synthesizer) sampleNegative(a, b string) bool {
	if s.NegativeRate <= 0 {
		return false
	}
	return core.UnitFraction(fmt.Sprintf("%d|%s", s.Seed, Key([]string{a, b}))) < s.NegativeRate
}
