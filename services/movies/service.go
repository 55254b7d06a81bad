package movies

import (
	"context"
	"net/http"
	"strings"

	"muppi/config"
	"muppi/models"
)

// Service fetches movie lists from TMDB.
type Service struct {
	client *tmdbClient
}

// NewService builds a Service from TMDB settings. httpc may be nil, in which
// case a client with the configured timeout is used.
func NewService(settings config.TMDBSettings, httpc *http.Client) (*Service, error) {
	if strings.TrimSpace(settings.APIToken) == "" {
		return nil, config.ErrMissingTMDBToken
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: settings.Timeout()}
	}
	baseURL := settings.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = config.DefaultSettings().TMDB.BaseURL
	}
	return &Service{
		client: newTMDBClient(baseURL, settings.APIToken, settings.Language, httpc, settings.RequestsPerSecond),
	}, nil
}

// Fetch returns popular movies for an empty query and title matches
// otherwise. It issues exactly one request and never retries. Every failure
// is a *FetchError.
func (s *Service) Fetch(ctx context.Context, query string) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.client.listMovies(ctx, s.client.discoverURL())
	}
	return s.client.listMovies(ctx, s.client.searchURL(query))
}
