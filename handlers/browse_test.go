package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"muppi/models"
	"muppi/services/movies"
	"muppi/services/trending"
)

type fakeMovieService struct {
	mu      sync.Mutex
	resp    []models.Movie
	err     error
	queries []string
}

func (f *fakeMovieService) Fetch(_ context.Context, query string) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.resp, f.err
}

type fakeTrendingService struct {
	mu        sync.Mutex
	entries   []models.TrendingEntry
	listErr   error
	recordErr error

	listCalls  int
	lastLimit  int
	recorded   []string
	lastRecord models.Movie
}

func (f *fakeTrendingService) RecordSearch(_ context.Context, term string, movie models.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, term)
	f.lastRecord = movie
	return nil
}

func (f *fakeTrendingService) ListTrending(_ context.Context, limit int) ([]models.TrendingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastLimit = limit
	return f.entries, f.listErr
}

var heat = models.Movie{ID: 949, Title: "Heat", PosterPath: "/heat.jpg", ReleaseDate: "1995-12-15", VoteAverage: 7.9, OriginalLanguage: "en"}

func TestBrowsePageInitialLoad(t *testing.T) {
	ms := &fakeMovieService{resp: []models.Movie{heat}}
	ts := &fakeTrendingService{entries: []models.TrendingEntry{{SearchTerm: "batman", Count: 4, PosterURL: "https://image.tmdb.org/t/p/w500/b.jpg"}}}
	h := NewBrowseHandler(ms, ts, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(ms.queries) != 1 || ms.queries[0] != "" {
		t.Fatalf("expected one discover fetch, got %q", ms.queries)
	}
	if ts.listCalls != 1 || ts.lastLimit != 5 {
		t.Fatalf("expected one trending load with limit 5, got %d calls (limit %d)", ts.listCalls, ts.lastLimit)
	}
	if len(ts.recorded) != 0 {
		t.Fatalf("discover must not record, got %v", ts.recorded)
	}

	body := rec.Body.String()
	for _, want := range []string{"You'll Enjoy Without Hassle", "Heat", "★ 7.9 • en • 1995", "batman", "https://image.tmdb.org/t/p/w500/heat.jpg"} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestBrowsePageSearchRecordsAndReloadsTrending(t *testing.T) {
	ms := &fakeMovieService{resp: []models.Movie{heat}}
	ts := &fakeTrendingService{}
	h := NewBrowseHandler(ms, ts, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/?q=heat", nil))

	if ms.queries[0] != "heat" {
		t.Fatalf("expected search for heat, got %q", ms.queries[0])
	}
	if len(ts.recorded) != 1 || ts.recorded[0] != "heat" || ts.lastRecord.ID != heat.ID {
		t.Fatalf("expected heat to be recorded once with its top result, got %v %+v", ts.recorded, ts.lastRecord)
	}
	if ts.listCalls != 2 {
		t.Fatalf("expected trending reload after record, got %d loads", ts.listCalls)
	}
	if !strings.Contains(rec.Body.String(), `value="heat"`) {
		t.Errorf("search box should keep the query")
	}
}

func TestBrowsePageZeroResults(t *testing.T) {
	ms := &fakeMovieService{resp: []models.Movie{}}
	ts := &fakeTrendingService{}
	h := NewBrowseHandler(ms, ts, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/?q=qwertyuiop", nil))

	if len(ts.recorded) != 0 {
		t.Fatalf("zero results must not be recorded, got %v", ts.recorded)
	}
	if !strings.Contains(rec.Body.String(), "No movies found.") {
		t.Errorf("expected empty state in page")
	}
}

func TestBrowsePageShowsErrorsPerSection(t *testing.T) {
	ms := &fakeMovieService{err: &movies.FetchError{Kind: movies.KindStatus, Status: 401, Message: movies.DefaultFailureMessage}}
	ts := &fakeTrendingService{listErr: errors.New("list trending: disk I/O error")}
	h := NewBrowseHandler(ms, ts, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/?q=heat", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("errors are rendered in the page, got status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to fetch movies") {
		t.Errorf("expected movie failure message")
	}
	if !strings.Contains(body, "disk I/O error") {
		t.Errorf("expected trending failure message")
	}
	if len(ts.recorded) != 0 {
		t.Errorf("failed fetch must not record")
	}
}

func TestBrowsePageRecordFailureStillRenders(t *testing.T) {
	ms := &fakeMovieService{resp: []models.Movie{heat}}
	ts := &fakeTrendingService{recordErr: errors.New("appwrite 503: unavailable")}
	h := NewBrowseHandler(ms, ts, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/?q=heat", nil))

	if ts.listCalls != 1 {
		t.Fatalf("no reload after a failed record, got %d loads", ts.listCalls)
	}
	if !strings.Contains(rec.Body.String(), "Heat") {
		t.Errorf("movies should still render")
	}
}

func TestMoviesSearch(t *testing.T) {
	ms := &fakeMovieService{resp: []models.Movie{heat}}
	h := NewMoviesHandler(ms)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/movies?query=heat", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ms.queries[0] != "heat" {
		t.Fatalf("expected query heat, got %q", ms.queries[0])
	}

	var resp struct {
		Movies []struct {
			ID        int64  `json:"id"`
			Title     string `json:"title"`
			PosterURL string `json:"posterUrl"`
		} `json:"movies"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Movies) != 1 || resp.Movies[0].Title != "Heat" {
		t.Fatalf("unexpected movies: %+v", resp.Movies)
	}
	if resp.Movies[0].PosterURL != "https://image.tmdb.org/t/p/w500/heat.jpg" {
		t.Fatalf("unexpected poster url %q", resp.Movies[0].PosterURL)
	}
}

func TestMoviesSearchFailure(t *testing.T) {
	ms := &fakeMovieService{err: &movies.FetchError{Kind: movies.KindUpstream, Message: "Invalid API key"}}
	h := NewMoviesHandler(ms)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/movies", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "Invalid API key" {
		t.Fatalf("unexpected error body %v", resp)
	}
}

func TestTrendingList(t *testing.T) {
	ts := &fakeTrendingService{}
	h := NewTrendingHandler(ts)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/trending?limit=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ts.lastLimit != 3 {
		t.Fatalf("expected limit 3, got %d", ts.lastLimit)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"trending":[]}` {
		t.Fatalf("unexpected body %s", got)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/trending?limit=abc", nil))
	if ts.lastLimit != 0 {
		t.Fatalf("invalid limit should fall back to the default, got %d", ts.lastLimit)
	}
}

func TestTrendingListFailure(t *testing.T) {
	h := NewTrendingHandler(&fakeTrendingService{listErr: errors.New("boom")})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/trending", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestTrendingRecord(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "ok", body: `{"searchTerm":"heat","movie":{"id":949,"title":"Heat"}}`, wantStatus: http.StatusNoContent},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "blank term", body: `{"searchTerm":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "term rejected", body: `{"searchTerm":"x"}`, serviceErr: trending.ErrTermRequired, wantStatus: http.StatusBadRequest},
		{name: "store down", body: `{"searchTerm":"x"}`, serviceErr: errors.New("db closed"), wantStatus: http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := &fakeTrendingService{recordErr: tc.serviceErr}
			h := NewTrendingHandler(ts)

			rec := httptest.NewRecorder()
			h.Record(rec, httptest.NewRequest(http.MethodPost, "/api/trending", strings.NewReader(tc.body)))

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusNoContent && (len(ts.recorded) != 1 || ts.lastRecord.ID != 949) {
				t.Fatalf("expected heat recorded, got %v %+v", ts.recorded, ts.lastRecord)
			}
		})
	}
}

func TestBrowsePageMovieWithoutPoster(t *testing.T) {
	noPoster := models.Movie{ID: 7, Title: "Lost Reel"}
	h := NewBrowseHandler(&fakeMovieService{resp: []models.Movie{noPoster}}, &fakeTrendingService{}, 5)

	rec := httptest.NewRecorder()
	h.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Lost Reel") || !strings.Contains(body, "No poster") {
		t.Fatalf("expected placeholder for movie without poster")
	}
	if strings.Contains(body, "<img") {
		t.Fatalf("no image should be emitted without a poster URL")
	}
}
