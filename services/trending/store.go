package trending

import (
	"context"
	"errors"

	"muppi/models"
)

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

var (
	ErrNotFound     = errors.New("trending entry not found")
	ErrTermRequired = errors.New("search term is required")
)

// Store is the document collection behind the trending counters. Its
// operations mirror what a hosted document database offers: exact-match
// lookup, create, increment and an ordered, limited listing.
type Store interface {
	// FindByTerm returns ErrNotFound when no entry has exactly this term.
	FindByTerm(ctx context.Context, term string) (models.TrendingEntry, error)
	Create(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error)
	// Increment adds one to the entry's count and returns the stored entry.
	Increment(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error)
	// Top lists entries by descending count, at most limit of them.
	Top(ctx context.Context, limit int) ([]models.TrendingEntry, error)
	Close() error
}
