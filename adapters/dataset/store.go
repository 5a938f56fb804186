package dataset

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/core"
	"gocombo/domain/feature"
	"gocombo/internal/errors"
)

// File names under the data directory. These are the pipeline's external
// interface; other tools read them wholesale.
const (
	CardsFile      = "pauper_cards_detailed.json"
	TrainingFile   = "combo_training_data.json"
	KnownFile      = "known_combos.json"
	DiscoveredFile = "discovered_combos.json"
	SeenFile       = "discovery_seen.json"
)

// Store persists datasets as JSON files in one directory. Every write goes
// to a temp file first and renames into place, so an interrupted write
// leaves the previous valid file intact.
type Store struct {
	Dir string
}

// NewStore creates the store, making the data directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOError(dir, err)
	}
	return &Store{Dir: dir}, nil
}

// detailedCard is the card-file row: the record with its derived tags
// inlined, matching how downstream consumers read the file.
type detailedCard struct {
	card.Record
	Tags map[feature.Tag]int `json:"tags,omitempty"`
}

// trainingRow is the training-file row shape: prompt, completion, label.
type trainingRow struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Label      bool   `json:"label"`
}

// WriteCards serializes the card universe with its feature tags.
func (s *Store) WriteCards(records []card.Record, features map[string]feature.Set) error {
	rows := make([]detailedCard, 0, len(records))
	for _, rec := range records {
		rows = append(rows, detailedCard{Record: rec, Tags: features[rec.Name].Tags})
	}
	return s.writeJSON(CardsFile, rows)
}

// ReadCards loads the card universe and feature sets back.
func (s *Store) ReadCards() ([]card.Record, map[string]feature.Set, error) {
	var rows []detailedCard
	if err := s.readJSON(CardsFile, &rows); err != nil {
		return nil, nil, err
	}
	records := make([]card.Record, 0, len(rows))
	features := make(map[string]feature.Set, len(rows))
	for _, row := range rows {
		records = append(records, row.Record)
		features[row.Name] = feature.Set{CardName: row.Name, Tags: row.Tags}
	}
	return records, features, nil
}

// WriteTrainingExamples serializes reasoning examples in the documented
// {prompt, completion, label} row layout.
func (s *Store) WriteTrainingExamples(examples []combo.ReasoningExample) error {
	rows := make([]trainingRow, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, trainingRow{Prompt: ex.Prompt, Completion: ex.Completion, Label: ex.Label})
	}
	return s.writeJSON(TrainingFile, rows)
}

// WriteKnownCombos serializes the curated combo corpus.
func (s *Store) WriteKnownCombos(known []combo.KnownCombo) error {
	return s.writeJSON(KnownFile, known)
}

// ReadKnownCombos loads the curated combo corpus.
func (s *Store) ReadKnownCombos() ([]combo.KnownCombo, error) {
	var known []combo.KnownCombo
	if err := s.readJSON(KnownFile, &known); err != nil {
		return nil, err
	}
	return known, nil
}

// --- DiscoveryStore on the same directory ---

// Seen reports whether a combination key was already tried.
func (s *Store) Seen(key string) (bool, error) {
	seen, err := s.readSeen()
	if err != nil {
		return false, err
	}
	return seen[key], nil
}

// MarkSeen records a tried combination key.
func (s *Store) MarkSeen(key string) error {
	seen, err := s.readSeen()
	if err != nil {
		return err
	}
	if seen[key] {
		return nil
	}
	keys := make([]string, 0, len(seen)+1)
	for k := range seen {
		keys = append(keys, k)
	}
	keys = append(keys, key)
	return s.writeJSON(SeenFile, keys)
}

// Append adds a discovery to the results file.
func (s *Store) Append(d combo.Discovery) error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	return s.writeJSON(DiscoveredFile, append(existing, d))
}

// List returns all recorded discoveries.
func (s *Store) List() ([]combo.Discovery, error) {
	var out []combo.Discovery
	err := s.readJSON(DiscoveredFile, &out)
	if err != nil && errors.GetCode(err) == errors.CodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) readSeen() (map[string]bool, error) {
	var keys []string
	err := s.readJSON(SeenFile, &keys)
	if err != nil && errors.GetCode(err) == errors.CodeNotFound {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	return seen, nil
}

// --- JSON plumbing ---

// writeJSON writes atomically: marshal, write temp file, rename over the
// destination. Rename is atomic on POSIX filesystems, so a crash before the
// rename leaves the old file untouched.
func (s *Store) writeJSON(name string, v interface{}) error {
	path := filepath.Join(s.Dir, name)

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal %s", name)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".tmp-*")
	if err != nil {
		return errors.IOError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.IOError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.IOError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.IOError(path, err)
	}
	log.Printf("[Dataset] wrote %s (%d bytes, sha256 %s)", name, len(raw), core.NewHash(raw))
	return nil
}

// Fingerprint returns the content hash of a dataset file, so consumers can
// tell whether a file changed between pipeline runs.
func (s *Store) Fingerprint(name string) (core.Hash, error) {
	path := filepath.Join(s.Dir, name)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.NotFound(name)
	}
	if err != nil {
		return "", errors.IOError(path, err)
	}
	return core.NewHash(raw), nil
}

func (s *Store) readJSON(name string, v interface{}) error {
	path := filepath.Join(s.Dir, name)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.NotFound(name)
	}
	if err != nil {
		return errors.IOError(path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.ParseError(fmt.Sprintf("unmarshal %s", name), err)
	}
	return nil
}
