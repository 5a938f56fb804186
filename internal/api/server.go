package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"gocombo/domain/card"
	"gocombo/domain/feature"
	"gocombo/ports"
)

// Server exposes the collected datasets over a small read-only JSON API,
// handy for browsing extraction results and discoveries without opening the
// files by hand.
type Server struct {
	Port      string
	Datasets  ports.DatasetStore
	Discovery ports.DiscoveryStore

	records  []card.Record
	features map[string]feature.Set
	byName   map[string]card.Record
}

// NewServer loads the card universe once; the datasets are immutable between
// collect runs, so there is nothing to invalidate.
func NewServer(port string, datasets ports.DatasetStore, discovery ports.DiscoveryStore) (*Server, error) {
	records, features, err := datasets.ReadCards()
	if err != nil {
		return nil, fmt.Errorf("load card dataset: %w", err)
	}
	byName := make(map[string]card.Record, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	return &Server{
		Port:      port,
		Datasets:  datasets,
		Discovery: discovery,
		records:   records,
		features:  features,
		byName:    byName,
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.Port,
		Handler: s.Router(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[API] listening on :%s", s.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Router builds the route table; split out so tests can hit it directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", s.handleListCards)
		r.Get("/cards/{name}", s.handleGetCard)
		r.Get("/combos/known", s.handleKnownCombos)
		r.Get("/combos/discovered", s.handleDiscovered)
	})
	r.Get("/combos/discovered/{index}", s.handleDiscoveryDetail)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
