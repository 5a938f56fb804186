package combo

import (
	"fmt"
	"strings"

	"gocombo/domain/card"
)

// Prompt templates shared by dataset synthesis and the discovery/explorer
// clients. Training and inference must ask the same question the same way.

// PairPrompt asks whether two specific cards combo.
func PairPrompt(a, b card.Record) string {
	return fmt.Sprintf(
		"Analyze if these two cards create a combo or synergy in Pauper format.\n\nCard 1: %s\n\nCard 2: %s",
		a.Describe(), b.Describe())
}

// InfinitePrompt asks whether a set of cards forms an infinite loop.
func InfinitePrompt(cards []card.Record) string {
	descs := make([]string, len(cards))
	for i, c := range cards {
		descs[i] = c.Describe()
	}
	return "Analyze if these cards create an infinite combo in Pauper format. Think step-by-step.\n\nCards:\n\n" +
		strings.Join(descs, "\n\n")
}

// SuggestPrompt asks for companion pieces for a single card.
func SuggestPrompt(c card.Record) string {
	return fmt.Sprintf(
		"What cards would combo well with this card in Pauper format?\n\n%s", c.Describe())
}

// affirmativeMarkers are the response keywords treated as a positive combo
// verdict by the discovery client.
var affirmativeMarkers = []string{"combo", "infinite", "synergy", "loop", "repeatedly"}

// IsAffirmative scans a model response for an affirmative combo verdict.
func IsAffirmative(response string) bool {
	lowered := strings.TrimSpace(strings.ToLower(response))
	// A flat "No, ..." opening overrides any marker words later in the text.
	for _, neg := range []string{"no ", "no,", "no."} {
		if strings.HasPrefix(lowered, neg) {
			return false
		}
	}
	for _, marker := range affirmativeMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
