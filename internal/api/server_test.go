package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocombo/adapters/dataset"
	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/core"
	"gocombo/domain/feature"
)

func newTestServer(t *testing.T) (*Server, *dataset.Store) {
	t.Helper()

	store, err := dataset.NewStore(t.TempDir())
	require.NoError(t, err)

	records := []card.Record{
		{Name: "Midnight Guard", TypeLine: "Creature — Human Soldier",
			OracleText: "Whenever another creature enters the battlefield, untap Midnight Guard.", Legal: true},
		{Name: "Grizzly Bears", TypeLine: "Creature — Bear", Legal: true},
	}
	features := map[string]feature.Set{
		"Midnight Guard": {CardName: "Midnight Guard", Tags: map[feature.Tag]int{
			feature.TagUntapOther: 1,
			feature.TagETBTrigger: 1,
		}},
	}
	require.NoError(t, store.WriteCards(records, features))
	require.NoError(t, store.WriteKnownCombos(combo.KnownCombos))

	server, err := NewServer("0", store, store)
	require.NoError(t, err)
	return server, store
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestListCards(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server.Router(), "/api/cards")
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []struct {
		Name     string `json:"name"`
		TagCount int    `json:"tag_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 2)

	// Name-sorted.
	assert.Equal(t, "Grizzly Bears", cards[0].Name)
	assert.Equal(t, 0, cards[0].TagCount)
	assert.Equal(t, "Midnight Guard", cards[1].Name)
	assert.Equal(t, 2, cards[1].TagCount)
}

func TestListCardsMinTagFilter(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server.Router(), "/api/cards?min_tags=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Midnight Guard", cards[0].Name)

	rec = get(t, server.Router(), "/api/cards?min_tags=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCard(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server.Router(), "/api/cards/"+url.PathEscape("Midnight Guard"))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Name string        `json:"name"`
		Tags []feature.Tag `json:"combo_features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Midnight Guard", detail.Name)
	assert.Equal(t, []feature.Tag{feature.TagUntapOther, feature.TagETBTrigger}, detail.Tags)
}

func TestGetCardNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server.Router(), "/api/cards/"+url.PathEscape("Black Lotus"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnownCombosEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server.Router(), "/api/combos/known")
	require.Equal(t, http.StatusOK, rec.Code)

	var known []combo.KnownCombo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &known))
	assert.Len(t, known, len(combo.KnownCombos))
}

func TestDiscoveredEndpoints(t *testing.T) {
	server, store := newTestServer(t)

	require.NoError(t, store.Append(combo.Discovery{
		Cards:    []string{"Card A", "Card B"},
		Analysis: "Yes, an infinite combo:\n\n1. Tap A\n2. Untap with B",
		Novelty:  "potentially_new",
		FoundAt:  core.Now(),
	}))

	rec := get(t, server.Router(), "/api/combos/discovered")
	require.Equal(t, http.StatusOK, rec.Code)

	var discoveries []combo.Discovery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &discoveries))
	require.Len(t, discoveries, 1)

	// The detail view renders the analysis as HTML.
	rec = get(t, server.Router(), "/combos/discovered/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "Card A + Card B")

	rec = get(t, server.Router(), "/combos/discovered/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, server.Router(), "/combos/discovered/nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
