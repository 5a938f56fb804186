package api

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"

	"gocombo/domain/card"
	"gocombo/domain/feature"
)

type cardSummary struct {
	Name     string `json:"name"`
	TypeLine string `json:"type_line"`
	TagCount int    `json:"tag_count"`
}

type cardDetail struct {
	card.Record
	Tags []feature.Tag `json:"combo_features"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	summaries := make([]cardSummary, 0, len(s.records))
	for _, rec := range s.records {
		count := 0
		if set, ok := s.features[rec.Name]; ok {
			count = set.Count()
		}
		summaries = append(summaries, cardSummary{
			Name:     rec.Name,
			TypeLine: rec.TypeLine,
			TagCount: count,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	if min := r.URL.Query().Get("min_tags"); min != "" {
		threshold, err := strconv.Atoi(min)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_tags must be an integer")
			return
		}
		filtered := summaries[:0]
		for _, c := range summaries {
			if c.TagCount >= threshold {
				filtered = append(filtered, c)
			}
		}
		summaries = filtered
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad card name")
		return
	}
	rec, ok := s.byName[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("card %q not in dataset", name))
		return
	}
	detail := cardDetail{Record: rec}
	if set, found := s.features[rec.Name]; found {
		detail.Tags = set.List()
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleKnownCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := s.Datasets.ReadKnownCombos()
	if err != nil {
		log.Printf("[API] read known combos: %v", err)
		writeError(w, http.StatusInternalServerError, "known combos unavailable")
		return
	}
	writeJSON(w, http.StatusOK, combos)
}

func (s *Server) handleDiscovered(w http.ResponseWriter, r *http.Request) {
	discoveries, err := s.Discovery.List()
	if err != nil {
		log.Printf("[API] list discoveries: %v", err)
		writeError(w, http.StatusInternalServerError, "discoveries unavailable")
		return
	}
	writeJSON(w, http.StatusOK, discoveries)
}

// handleDiscoveryDetail renders a single discovery's analysis as HTML so the
// model's markdown-ish prose reads cleanly in a browser.
func (s *Server) handleDiscoveryDetail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}
	discoveries, err := s.Discovery.List()
	if err != nil {
		log.Printf("[API] list discoveries: %v", err)
		writeError(w, http.StatusInternalServerError, "discoveries unavailable")
		return
	}
	if index >= len(discoveries) {
		writeError(w, http.StatusNotFound, "no discovery at that index")
		return
	}
	d := discoveries[index]

	source := fmt.Sprintf("# %s\n\n%s\n", joinCards(d.Cards), d.Analysis)
	html := markdown.ToHTML([]byte(source), nil, nil)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		log.Printf("[API] write discovery detail: %v", err)
	}
}

func joinCards(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " + "
		}
		out += n
	}
	return out
}
