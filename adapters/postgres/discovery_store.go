package postgres

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gocombo/domain/combo"
	"gocombo/domain/core"
	"gocombo/ports"
)

// DiscoveryStore persists discovery state in PostgreSQL. Used instead of the
// JSON file store when DATABASE_URL is set, so long discovery runs survive
// restarts without rescanning combinations.
type DiscoveryStore struct {
	db *sqlx.DB
}

// NewDiscoveryStore connects and ensures the schema exists.
func NewDiscoveryStore(databaseURL string) (ports.DiscoveryStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	store := &DiscoveryStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *DiscoveryStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS discovery_seen (
		key        TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS discovered_combos (
		id       UUID PRIMARY KEY,
		cards    JSONB NOT NULL,
		analysis TEXT NOT NULL,
		novelty  TEXT NOT NULL,
		found_at TIMESTAMPTZ NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Seen reports whether a combination key was already tried.
func (s *DiscoveryStore) Seen(key string) (bool, error) {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM discovery_seen WHERE key = $1`, key); err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSeen records a tried combination key.
func (s *DiscoveryStore) MarkSeen(key string) error {
	_, err := s.db.Exec(`INSERT INTO discovery_seen (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, key)
	return err
}

// Append adds a discovery to the results table.
func (s *DiscoveryStore) Append(d combo.Discovery) error {
	cards, err := json.Marshal(d.Cards)
	if err != nil {
		return err
	}
	id := d.ID
	if core.ID(id).IsEmpty() {
		id = core.DiscoveryID(core.NewID())
	}
	_, err = s.db.Exec(
		`INSERT INTO discovered_combos (id, cards, analysis, novelty, found_at) VALUES ($1, $2, $3, $4, $5)`,
		id.String(), cards, d.Analysis, d.Novelty, d.FoundAt.Time())
	return err
}

// List returns all recorded discoveries, oldest first.
func (s *DiscoveryStore) List() ([]combo.Discovery, error) {
	type row struct {
		ID       string    `db:"id"`
		Cards    []byte    `db:"cards"`
		Analysis string    `db:"analysis"`
		Novelty  string    `db:"novelty"`
		FoundAt  time.Time `db:"found_at"`
	}
	var rows []row
	if err := s.db.Select(&rows, `SELECT id, cards, analysis, novelty, found_at FROM discovered_combos ORDER BY found_at`); err != nil {
		return nil, err
	}
	out := make([]combo.Discovery, 0, len(rows))
	for _, r := range rows {
		var cards []string
		if err := json.Unmarshal(r.Cards, &cards); err != nil {
			return nil, err
		}
		out = append(out, combo.Discovery{
			ID:       core.DiscoveryID(r.ID),
			Cards:    cards,
			Analysis: r.Analysis,
			Novelty:  r.Novelty,
			FoundAt:  core.NewTimestamp(r.FoundAt),
		})
	}
	return out, nil
}
