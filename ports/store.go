package ports

import (
	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/feature"
)

// DatasetStore persists the collection pipeline's outputs. Writes replace
// whole files atomically; a crash mid-write must leave the previous valid
// file intact.
type DatasetStore interface {
	WriteCards(records []card.Record, features map[string]feature.Set) error
	ReadCards() ([]card.Record, map[string]feature.Set, error)

	WriteTrainingExamples(examples []combo.ReasoningExample) error

	WriteKnownCombos(known []combo.KnownCombo) error
	ReadKnownCombos() ([]combo.KnownCombo, error)
}

// DiscoveryStore persists discovery results and the seen set that makes
// reruns resumable. Keys are combo.Key idempotency keys.
type DiscoveryStore interface {
	Seen(key string) (bool, error)
	MarkSeen(key string) error

	Append(d combo.Discovery) error
	List() ([]combo.Discovery, error)
}
