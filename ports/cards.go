package ports

import (
	"context"

	"gocombo/domain/card"
)

// FetchReport counts what a fetch run saw; batch callers report it instead
// of failing on individual malformed cards.
type FetchReport struct {
	Pages   int
	Fetched int
	Skipped int
}

// CardSource provides read-only access to an external card database.
type CardSource interface {
	// FetchAll retrieves every card matching the source's configured query,
	// following pagination until exhausted.
	FetchAll(ctx context.Context) ([]card.Record, FetchReport, error)
}
