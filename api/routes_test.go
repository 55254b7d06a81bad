package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"muppi/handlers"
	"muppi/models"
)

type stubMovies struct{ lastQuery string }

func (s *stubMovies) Fetch(_ context.Context, query string) ([]models.Movie, error) {
	s.lastQuery = query
	return []models.Movie{{ID: 1, Title: "Alien"}}, nil
}

type stubTrending struct{ recorded []string }

func (s *stubTrending) RecordSearch(_ context.Context, term string, _ models.Movie) error {
	s.recorded = append(s.recorded, term)
	return nil
}

func (s *stubTrending) ListTrending(context.Context, int) ([]models.TrendingEntry, error) {
	return []models.TrendingEntry{{SearchTerm: "alien", Count: 2}}, nil
}

func newTestRouter() (http.Handler, *stubMovies, *stubTrending) {
	ms, ts := &stubMovies{}, &stubTrending{}
	r := NewRouter(
		handlers.NewBrowseHandler(ms, ts, 5),
		handlers.NewMoviesHandler(ms),
		handlers.NewTrendingHandler(ts),
	)
	return r, ms, ts
}

func TestRoutes(t *testing.T) {
	r, ms, ts := newTestRouter()

	tests := []struct {
		method, target, body string
		wantStatus           int
		wantBody             string
	}{
		{http.MethodGet, "/", "", http.StatusOK, "Alien"},
		{http.MethodGet, "/health", "", http.StatusOK, `"ok"`},
		{http.MethodGet, "/api/movies?query=alien", "", http.StatusOK, `"title":"Alien"`},
		{http.MethodGet, "/api/trending", "", http.StatusOK, `"searchTerm":"alien"`},
		{http.MethodPost, "/api/trending", `{"searchTerm":"alien","movie":{"id":1}}`, http.StatusNoContent, ""},
		{http.MethodDelete, "/api/trending", "", http.StatusMethodNotAllowed, ""},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body)))

		if rec.Code != tc.wantStatus {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.target, tc.wantStatus, rec.Code)
			continue
		}
		if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
			t.Errorf("%s %s: body %q does not contain %q", tc.method, tc.target, rec.Body.String(), tc.wantBody)
		}
	}

	if ms.lastQuery != "alien" {
		t.Errorf("expected last movie query alien, got %q", ms.lastQuery)
	}
	// The page load is a discover query, so only the POST records.
	if len(ts.recorded) != 1 || ts.recorded[0] != "alien" {
		t.Errorf("expected one recorded term, got %v", ts.recorded)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/movies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}
