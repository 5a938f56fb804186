package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocombo/internal/errors"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{BaseURL: serverURL, Query: "legal:pauper"})
}

func TestFetchAllFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "legal:pauper", r.URL.Query().Get("q"))

		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"name": "Llanowar Elves", "type_line": "Creature — Elf Druid", "oracle_text": "{T}: Add {G}.", "legalities": map[string]string{"pauper": "legal"}},
					{"name": "Grizzly Bears", "type_line": "Creature — Bear", "legalities": map[string]string{"pauper": "legal"}},
				},
				"has_more":  true,
				"next_page": fmt.Sprintf("%s/cards/search?q=legal%%3Apauper&page=2", server.URL),
			})
		case "2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"name": "Midnight Guard", "type_line": "Creature — Human Soldier", "legalities": map[string]string{"pauper": "legal"}},
					{"type_line": "Creature — Nameless"}, // malformed; skipped
				},
				"has_more": false,
			})
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	records, report, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Skipped)

	require.Len(t, records, 3)
	assert.Equal(t, "Llanowar Elves", records[0].Name)
	assert.Equal(t, "Midnight Guard", records[2].Name)
	assert.True(t, records[0].Legal)
}

func TestFetchAllRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":     []map[string]interface{}{{"name": "Llanowar Elves"}},
			"has_more": false,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	records, report, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, report.Fetched)
	require.Len(t, records, 1)
}

func TestFetchAllGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.FetchAll(context.Background())
	require.Error(t, err)

	assert.EqualValues(t, maxAttempts, atomic.LoadInt32(&calls))
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
}

func TestFetchAllDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.FetchAll(context.Background())
	require.Error(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "4xx responses must not be retried")
	assert.Equal(t, errors.CodeParse, errors.GetCode(err))
}

func TestFetchAllRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeParse, errors.GetCode(err))
}

func TestLegalityMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"name": "Banned Card", "legalities": map[string]string{"pauper": "banned"}},
				{"name": "Legal Card", "legalities": map[string]string{"pauper": "legal"}},
			},
			"has_more": false,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	records, _, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.False(t, records[0].Legal)
	assert.True(t, records[1].Legal)
}
