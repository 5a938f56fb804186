package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocombo/adapters/dataset"
	"gocombo/adapters/llm"
	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/core"
	"gocombo/domain/feature"
	"gocombo/internal/errors"
)

var (
	testGuard = card.Record{
		Name:       "Midnight Guard",
		TypeLine:   "Creature — Human Soldier",
		OracleText: "Whenever another creature enters the battlefield, untap Midnight Guard.",
	}
	testGond = card.Record{
		Name:       "Presence of Gond",
		TypeLine:   "Enchantment — Aura",
		OracleText: "Enchant creature\nEnchanted creature has \"{T}: Create a 1/1 green Elf Warrior creature token.\"",
	}
	testBears = card.Record{
		Name:     "Grizzly Bears",
		TypeLine: "Creature — Bear",
	}
)

func testUniverse() ([]card.Record, map[string]feature.Set) {
	records := []card.Record{testGuard, testGond, testBears}
	features, _ := feature.ExtractAll(records)
	return records, features
}

func newDiscoveryService(t *testing.T, mock *llm.MockClient) (*DiscoveryService, *dataset.Store) {
	t.Helper()
	store, err := dataset.NewStore(t.TempDir())
	require.NoError(t, err)
	return &DiscoveryService{
		LLM:            mock,
		Model:          "test-model",
		Store:          store,
		MaxTokens:      128,
		MinTagCount:    1,
		CandidateLimit: 10,
		TripleLimit:    0,
	}, store
}

func TestDiscoveryRecordsAffirmativeVerdicts(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, this is an infinite combo."}
	svc, store := newDiscoveryService(t, mock)
	records, features := testUniverse()

	report, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err)

	// Grizzly Bears has no tags and is filtered out, leaving one pair.
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Tried)
	assert.Equal(t, 1, report.Found)
	assert.False(t, core.ID(report.Run).IsEmpty())

	discoveries, err := store.List()
	require.NoError(t, err)
	require.Len(t, discoveries, 1)
	assert.False(t, core.ID(discoveries[0].ID).IsEmpty())
	assert.ElementsMatch(t, []string{"Midnight Guard", "Presence of Gond"}, discoveries[0].Cards)
	assert.Equal(t, "potentially_new", discoveries[0].Novelty)
	assert.False(t, discoveries[0].FoundAt.IsZero())
}

func TestDiscoveryIgnoresNegativeVerdicts(t *testing.T) {
	mock := &llm.MockClient{Response: "No, these cards do not interact."}
	svc, store := newDiscoveryService(t, mock)
	records, features := testUniverse()

	report, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Tried)
	assert.Equal(t, 0, report.Found)

	discoveries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, discoveries)
}

func TestDiscoveryResumeSkipsSeenCombinations(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, combo."}
	svc, _ := newDiscoveryService(t, mock)
	records, features := testUniverse()

	_, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err)
	firstQueries := len(mock.Prompts)

	report, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Tried)
	assert.Equal(t, 1, report.SkippedSeen)
	assert.Len(t, mock.Prompts, firstQueries, "resume must not re-query the model")
}

func TestDiscoverySkipsKnownCombos(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, combo."}
	svc, _ := newDiscoveryService(t, mock)
	records, features := testUniverse()

	known := []combo.KnownCombo{{
		Cards:       []string{"Midnight Guard", "Presence of Gond"},
		Description: "Infinite creature tokens",
		Type:        "infinite",
	}}

	report, err := svc.Run(context.Background(), records, features, known)
	require.NoError(t, err)

	// The only candidate pair is the known combo; one validation query runs
	// but no search query does.
	assert.Equal(t, 0, report.Tried)
	assert.Equal(t, 0, report.Found)
	assert.Len(t, mock.Prompts, 1)
}

func TestDiscoveryModelErrorsSkipCombination(t *testing.T) {
	mock := &llm.MockClient{Error: errors.ModelError("inference backend down", nil)}
	svc, store := newDiscoveryService(t, mock)
	records, features := testUniverse()

	report, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err, "model failures must not abort the run")

	assert.Equal(t, 1, report.Tried)
	assert.Equal(t, 1, report.ModelErrors)
	assert.Equal(t, 0, report.Found)

	// The failed combination still counts as seen; reruns move on.
	seen, err := store.Seen(combo.Key([]string{"Midnight Guard", "Presence of Gond"}))
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDiscoveryTriplesRespectBudget(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, combo."}
	svc, _ := newDiscoveryService(t, mock)
	svc.TripleLimit = 1

	extra := card.Record{
		Name:       "Llanowar Elves",
		TypeLine:   "Creature — Elf Druid",
		OracleText: "{T}: Add {G}.",
	}
	records := []card.Record{testGuard, testGond, extra}
	features, _ := feature.ExtractAll(records)

	report, err := svc.Run(context.Background(), records, features, nil)
	require.NoError(t, err)

	// Three candidates: 3 pairs plus exactly 1 budgeted triple.
	assert.Equal(t, 3, report.Candidates)
	assert.Equal(t, 4, report.Tried)
}

func TestDiscoveryCandidateSelectionOrdersByTagCount(t *testing.T) {
	svc := &DiscoveryService{MinTagCount: 1, CandidateLimit: 2}
	records, features := testUniverse()

	candidates := svc.selectCandidates(records, features)
	require.Len(t, candidates, 2)

	// Presence of Gond carries three tags, Midnight Guard two.
	assert.Equal(t, "Presence of Gond", candidates[0].Name)
	assert.Equal(t, "Midnight Guard", candidates[1].Name)
}

func TestDiscoveryDerivedThreshold(t *testing.T) {
	svc := &DiscoveryService{MinTagCount: 0, CandidateLimit: 10}
	records, features := testUniverse()

	candidates := svc.selectCandidates(records, features)

	// With a derived 90th-percentile cutoff over {0, 2, 3}, only the most
	// tag-dense cards survive; the tagless one never does.
	for _, c := range candidates {
		assert.NotEqual(t, "Grizzly Bears", c.Name)
	}
	assert.NotEmpty(t, candidates)
}
