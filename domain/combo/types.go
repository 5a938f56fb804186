package combo

import (
	"sort"
	"strings"

	"gocombo/domain/core"
)

// RuleID identifies a compatibility rule.
type RuleID string

// TemplateID identifies the explanation template a rule binds to.
type TemplateID string

// ReasoningExample is one (prompt, completion) training pair tied to a card
// combination. Immutable once generated.
type ReasoningExample struct {
	Cards      []string `json:"cards"`
	Rule       RuleID   `json:"rule,omitempty"`
	Prompt     string   `json:"prompt"`
	Completion string   `json:"completion"`
	Label      bool     `json:"label"`
}

// KnownCombo is a curated, human-verified combo used to seed the training
// set and to keep the discovery search away from ground it already knows.
type KnownCombo struct {
	Cards        []string `json:"cards"`
	Description  string   `json:"description"`
	Steps        []string `json:"steps"`
	Requirements []string `json:"requirements"`
	Result       string   `json:"result"`
	Type         string   `json:"type"`
}

// Discovery is one positive verdict from the model search. Discoveries are
// appended, never deduplicated or revalidated here; curation is downstream.
type Discovery struct {
	ID       core.DiscoveryID `json:"id"`
	Cards    []string         `json:"cards"`
	Analysis string           `json:"analysis"`
	Novelty  string           `json:"novelty"`
	FoundAt  core.Timestamp   `json:"found_at"`
}

// Key builds the idempotency key for a card combination: sorted lowercased
// names joined with "|". The same cards in any order produce the same key.
func Key(names []string) string {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(strings.TrimSpace(n))
	}
	sort.Strings(lowered)
	return strings.Join(lowered, "|")
}
