package trending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"muppi/models"
)

// DefaultLimit is the size of the trending section.
const DefaultLimit = 5

// Service records which searches produce results and lists the most popular
// ones.
type Service struct {
	store        Store
	defaultLimit int
}

// NewService wraps store. A non-positive defaultLimit falls back to
// DefaultLimit.
func NewService(store Store, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Service{store: store, defaultLimit: defaultLimit}
}

// RecordSearch upserts the counter for term: an existing entry is incremented
// by one, otherwise a new entry starts at one and remembers topMovie. The key
// is the term, so two searches surfacing the same movie count separately.
func (s *Service) RecordSearch(ctx context.Context, term string, topMovie models.Movie) error {
	if strings.TrimSpace(term) == "" {
		return ErrTermRequired
	}

	existing, err := s.store.FindByTerm(ctx, term)
	switch {
	case err == nil:
		updated, err := s.store.Increment(ctx, existing)
		if err != nil {
			return fmt.Errorf("increment trending %q: %w", term, err)
		}
		slog.Debug("trending search incremented", "term", term, "count", updated.Count)
		return nil
	case errors.Is(err, ErrNotFound):
	default:
		return fmt.Errorf("find trending %q: %w", term, err)
	}

	created, err := s.store.Create(ctx, models.TrendingEntry{
		SearchTerm: term,
		MovieID:    topMovie.ID,
		PosterURL:  topMovie.PosterURL(),
		Count:      1,
	})
	if err != nil {
		return fmt.Errorf("create trending %q: %w", term, err)
	}
	slog.Debug("trending search created", "term", term, "document_id", created.DocumentID, "movie_id", created.MovieID)
	return nil
}

// ListTrending returns at most limit entries ordered by descending count.
func (s *Service) ListTrending(ctx context.Context, limit int) ([]models.TrendingEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	entries, err := s.store.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
