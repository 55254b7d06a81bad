package trending

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muppi/config"
	"muppi/models"
)

// fakeAppwrite emulates the subset of the Appwrite Databases API the store
// uses, backed by a map of documents.
type fakeAppwrite struct {
	t    *testing.T
	mu   sync.Mutex
	docs map[string]map[string]any
}

func (f *fakeAppwrite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("X-Appwrite-Project") != "proj" || r.Header.Get("X-Appwrite-Key") != "key" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "missing scope", "code": 401, "type": "general_unauthorized_scope"})
		return
	}

	const prefix = "/v1/databases/db/collections/trending/documents"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		f.list(w, r)
	case r.Method == http.MethodPost && id == "":
		var body struct {
			DocumentID string         `json:"documentId"`
			Data       map[string]any `json:"data"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		doc := body.Data
		doc["$id"] = body.DocumentID
		f.docs[body.DocumentID] = doc
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(doc)
	case r.Method == http.MethodPatch && id != "":
		doc, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Document with the requested ID could not be found.", "code": 404, "type": "document_not_found"})
			return
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		for k, v := range body.Data {
			doc[k] = v
		}
		json.NewEncoder(w).Encode(doc)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeAppwrite) list(w http.ResponseWriter, r *http.Request) {
	var (
		equalTerm *string
		orderDesc string
		limit     = 25
	)
	var raws []string
	for key, values := range r.URL.Query() {
		if strings.HasPrefix(key, "queries") {
			raws = append(raws, values...)
		}
	}
	for _, raw := range raws {
		var q struct {
			Method    string `json:"method"`
			Attribute string `json:"attribute"`
			Values    []any  `json:"values"`
		}
		require.NoError(f.t, json.Unmarshal([]byte(raw), &q))
		switch q.Method {
		case "equal":
			term := q.Values[0].(string)
			equalTerm = &term
		case "orderDesc":
			orderDesc = q.Attribute
		case "limit":
			limit = int(q.Values[0].(float64))
		}
	}

	out := make([]map[string]any, 0)
	for _, doc := range f.docs {
		if equalTerm != nil && doc["searchTerm"] != *equalTerm {
			continue
		}
		out = append(out, doc)
	}
	if orderDesc != "" {
		sort.Slice(out, func(i, j int) bool {
			return out[i][orderDesc].(float64) > out[j][orderDesc].(float64)
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	json.NewEncoder(w).Encode(map[string]any{"total": len(out), "documents": out})
}

func newAppwriteTestStore(t *testing.T) (*AppwriteStore, *fakeAppwrite) {
	t.Helper()
	fake := &fakeAppwrite{t: t, docs: make(map[string]map[string]any)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewAppwriteStore(config.AppwriteSettings{
		Endpoint:     srv.URL + "/v1/",
		ProjectID:    "proj",
		APIKey:       "key",
		DatabaseID:   "db",
		CollectionID: "trending",
	}, srv.Client())
	require.NoError(t, err)
	return store, fake
}

func TestAppwriteRecordSearchUpsert(t *testing.T) {
	store, fake := newAppwriteTestStore(t)
	svc := NewService(store, 5)
	ctx := context.Background()

	movie := models.Movie{ID: 155, Title: "The Dark Knight", PosterPath: "/tdk.jpg"}
	require.NoError(t, svc.RecordSearch(ctx, "batman", movie))
	require.NoError(t, svc.RecordSearch(ctx, "batman", movie))

	require.Len(t, fake.docs, 1, "second search must update, not create")

	entries, err := svc.ListTrending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].Count)
	assert.EqualValues(t, 155, entries[0].MovieID)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/tdk.jpg", entries[0].PosterURL)
}

func TestAppwriteTopOrdersAndLimits(t *testing.T) {
	store, fake := newAppwriteTestStore(t)
	for i, term := range []string{"a", "b", "c", "d", "e", "f"} {
		fake.docs[term] = map[string]any{"$id": term, "searchTerm": term, "count": float64(i + 1), "movieId": float64(i)}
	}

	top, err := store.Top(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	assert.Equal(t, "f", top[0].SearchTerm)
	assert.Equal(t, "b", top[4].SearchTerm)
}

func TestAppwriteFindByTermMissing(t *testing.T) {
	store, _ := newAppwriteTestStore(t)
	_, err := store.FindByTerm(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppwriteIncrementMissingDocument(t *testing.T) {
	store, _ := newAppwriteTestStore(t)
	_, err := store.Increment(context.Background(), models.TrendingEntry{DocumentID: "gone", Count: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppwriteErrorsCarryStatus(t *testing.T) {
	fake := &fakeAppwrite{t: t, docs: make(map[string]map[string]any)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewAppwriteStore(config.AppwriteSettings{
		Endpoint:     srv.URL + "/v1",
		ProjectID:    "proj",
		APIKey:       "wrong",
		DatabaseID:   "db",
		CollectionID: "trending",
	}, srv.Client())
	require.NoError(t, err)

	_, err = store.Top(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, appwriteStatus(err))
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestAppwriteCancelledContextSkipsRequest(t *testing.T) {
	store, fake := newAppwriteTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByTerm(ctx, "batman")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Create(ctx, models.TrendingEntry{SearchTerm: "batman"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.docs)
}

func TestNewAppwriteStoreRequiresSettings(t *testing.T) {
	_, err := NewAppwriteStore(config.AppwriteSettings{Endpoint: "https://cloud.appwrite.io/v1"}, nil)
	assert.ErrorIs(t, err, config.ErrAppwriteIncomplete)
}
