package combo

import (
	"fmt"
	"sort"
	"strings"

	"gocombo/domain/card"
	"gocombo/domain/feature"
)

// Supplemental example generators. These wrap the curated combos and
// per-card feature summaries into the same (prompt, completion) shape the
// pairwise synthesizer emits, so one training file carries all of them.

// KnownComboExamples renders the curated combos as positive examples: one
// step-by-step infinite-combo walkthrough per combo, plus a two-card
// interaction explanation when both cards resolve in the universe.
func KnownComboExamples(known []KnownCombo, byName map[string]card.Record) []ReasoningExample {
	var examples []ReasoningExample

	for _, k := range known {
		if k.Type == "infinite" {
			var sb strings.Builder
			sb.WriteString("Yes, this is an infinite combo. Here's how it works:\n\n")
			sb.WriteString("Description: " + k.Description + "\n\nSteps:\n")
			for i, step := range k.Steps {
				sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
			}
			sb.WriteString("\nResult: " + k.Result + "\n")
			sb.WriteString("\nRequirements: " + strings.Join(k.Requirements, ", "))

			examples = append(examples, ReasoningExample{
				Cards:      k.Cards,
				Prompt:     "Analyze if these cards create an infinite combo in Pauper format.\n\nCards: " + strings.Join(k.Cards, ", "),
				Completion: sb.String(),
				Label:      true,
			})
		}

		// Interaction example for the first two resolvable cards.
		var resolved []card.Record
		for _, name := range k.Cards {
			if rec, ok := byName[name]; ok {
				resolved = append(resolved, rec)
			}
		}
		if len(resolved) >= 2 {
			firstStep := "They enable each other."
			if len(k.Steps) > 0 {
				firstStep = k.Steps[0]
			}
			examples = append(examples, ReasoningExample{
				Cards:  []string{resolved[0].Name, resolved[1].Name},
				Prompt: "Explain how these two cards interact in a Pauper combo.\n\n" + resolved[0].Describe() + "\n\n" + resolved[1].Describe(),
				Completion: "These cards create a synergistic interaction:\n\n" + k.Description +
					"\n\nKey interaction: " + firstStep,
				Label: true,
			})
		}
	}

	return examples
}

// CardAnalysisExamples emits per-card "analyze this card" examples with a
// combo-potential grade derived from the tag count. Capped at limit cards,
// taken in name order for reproducibility.
func CardAnalysisExamples(records []card.Record, features map[string]feature.Set, limit int) []ReasoningExample {
	sorted := make([]card.Record, 0, len(records))
	for _, rec := range records {
		if rec.Valid() {
			sorted = append(sorted, rec)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	examples := make([]ReasoningExample, 0, len(sorted))
	for _, rec := range sorted {
		fs := features[rec.Name]

		grade := "Low"
		switch {
		case fs.Count() > 2:
			grade = "High"
		case fs.Count() > 0:
			grade = "Medium"
		}

		abilities := "none detected"
		if fs.Count() > 0 {
			parts := make([]string, 0, fs.Count())
			for _, t := range fs.List() {
				parts = append(parts, string(t))
			}
			abilities = strings.Join(parts, ", ")
		}

		examples = append(examples, ReasoningExample{
			Cards:  []string{rec.Name},
			Prompt: "Analyze this Pauper card for combo potential.\n\n" + rec.Describe(),
			Completion: fmt.Sprintf("Card Analysis:\n\nType: %s\nKey Abilities: %s\n\nCombo Potential: %s",
				rec.TypeLine, abilities, grade),
			Label: fs.Count() > 0,
		})
	}
	return examples
}

// companionAdvice maps a detected tag to what to look for in a partner card.
var companionAdvice = map[feature.Tag]string{
	feature.TagUntapSelf:   "effects that trigger when it taps, so the self-untap closes a loop",
	feature.TagUntapOther:  "creatures with tap abilities worth reusing, especially token makers and mana producers",
	feature.TagETBTrigger:  "flicker effects that re-trigger the enters-the-battlefield ability",
	feature.TagTapAbility:  "untap effects that let the ability fire more than once per turn",
	feature.TagSacOutlet:   "repeatable token producers to feed the sacrifice outlet",
	feature.TagManaAdd:     "untap effects to reuse the mana ability, or storm payoffs for the extra mana",
	feature.TagTokenCreate: "sacrifice outlets, and permanents that untap when creatures enter the battlefield",
	feature.TagStormCount:  "cheap spells, cost reduction, and mana producers to raise the storm count",
	feature.TagFlicker:     "creatures with enters-the-battlefield abilities, especially ones that return instants",
	feature.TagRecur:       "sacrifice outlets so the recurred cards loop",
	feature.TagLifegain:    "creatures that untap when you gain life",
}

// SuggestionExamples emits "what combos with this card" examples for cards
// with enough tags to say something useful (at least minTags).
func SuggestionExamples(records []card.Record, features map[string]feature.Set, minTags, limit int) []ReasoningExample {
	sorted := make([]card.Record, 0, len(records))
	for _, rec := range records {
		if rec.Valid() && features[rec.Name].Count() >= minTags {
			sorted = append(sorted, rec)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	examples := make([]ReasoningExample, 0, len(sorted))
	for _, rec := range sorted {
		fs := features[rec.Name]
		var sb strings.Builder
		sb.WriteString(rec.Name + " combos well with:\n\n")
		n := 1
		for _, tag := range fs.List() {
			advice, ok := companionAdvice[tag]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n", n, advice))
			n++
		}
		if n == 1 {
			continue
		}

		examples = append(examples, ReasoningExample{
			Cards:      []string{rec.Name},
			Prompt:     SuggestPrompt(rec),
			Completion: sb.String(),
			Label:      true,
		})
	}
	return examples
}
