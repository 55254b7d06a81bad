package trending

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/client"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/query"
	"github.com/google/uuid"

	"muppi/config"
	"muppi/models"
)

// AppwriteStore keeps trending counters in an Appwrite Databases collection
// with searchTerm, movieId, posterUrl and count attributes.
//
// Increment reads the current count and writes count+1, so two sessions
// incrementing the same term at once can lose an update. Exact counts are not
// needed for a popularity list.
//
// The SDK calls take no context; ctx is only checked before each call.
type AppwriteStore struct {
	db           *databases.Databases
	databaseID   string
	collectionID string
}

// NewAppwriteStore builds a store from settings. httpc may be nil.
func NewAppwriteStore(settings config.AppwriteSettings, httpc *http.Client) (*AppwriteStore, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(settings.Endpoint), "/")
	projectID := strings.TrimSpace(settings.ProjectID)
	databaseID := strings.TrimSpace(settings.DatabaseID)
	collectionID := strings.TrimSpace(settings.CollectionID)
	if endpoint == "" || projectID == "" || databaseID == "" || collectionID == "" {
		return nil, config.ErrAppwriteIncomplete
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}

	opts := []client.ClientOption{
		appwrite.WithEndpoint(endpoint),
		appwrite.WithProject(projectID),
	}
	if key := strings.TrimSpace(settings.APIKey); key != "" {
		opts = append(opts, appwrite.WithKey(key))
	}
	c := client.New(opts...)
	c.Client = httpc

	return &AppwriteStore{
		db:           databases.New(c),
		databaseID:   databaseID,
		collectionID: collectionID,
	}, nil
}

// appwriteDocument is the collection's document shape, decoded from the
// SDK's raw document payload.
type appwriteDocument struct {
	ID         string    `json:"$id"`
	UpdatedAt  time.Time `json:"$updatedAt"`
	SearchTerm string    `json:"searchTerm"`
	MovieID    int64     `json:"movieId"`
	PosterURL  string    `json:"posterUrl"`
	Count      int64     `json:"count"`
}

func (d appwriteDocument) entry() models.TrendingEntry {
	return models.TrendingEntry{
		DocumentID: d.ID,
		SearchTerm: d.SearchTerm,
		MovieID:    d.MovieID,
		PosterURL:  d.PosterURL,
		Count:      d.Count,
		UpdatedAt:  d.UpdatedAt,
	}
}

type appwriteDocumentList struct {
	Total     int                `json:"total"`
	Documents []appwriteDocument `json:"documents"`
}

// appwriteStatus returns the HTTP status carried by an SDK error, or 0.
func appwriteStatus(err error) int {
	var coded interface{ GetStatusCode() int }
	if errors.As(err, &coded) {
		return coded.GetStatusCode()
	}
	return 0
}

func (s *AppwriteStore) list(ctx context.Context, queries ...string) ([]appwriteDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.db.ListDocuments(s.databaseID, s.collectionID, s.db.WithListDocumentsQueries(queries))
	if err != nil {
		return nil, fmt.Errorf("appwrite list documents: %w", err)
	}
	var out appwriteDocumentList
	if err := res.Decode(&out); err != nil {
		return nil, fmt.Errorf("appwrite decode documents: %w", err)
	}
	return out.Documents, nil
}

func (s *AppwriteStore) FindByTerm(ctx context.Context, term string) (models.TrendingEntry, error) {
	docs, err := s.list(ctx, query.Equal("searchTerm", term), query.Limit(1))
	if err != nil {
		return models.TrendingEntry{}, err
	}
	if len(docs) == 0 {
		return models.TrendingEntry{}, ErrNotFound
	}
	return docs[0].entry(), nil
}

func (s *AppwriteStore) Create(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.TrendingEntry{}, err
	}
	if entry.DocumentID == "" {
		entry.DocumentID = uuid.NewString()
	}
	if entry.Count <= 0 {
		entry.Count = 1
	}
	data := map[string]any{
		"searchTerm": entry.SearchTerm,
		"movieId":    entry.MovieID,
		"posterUrl":  entry.PosterURL,
		"count":      entry.Count,
	}
	res, err := s.db.CreateDocument(s.databaseID, s.collectionID, entry.DocumentID, data)
	if err != nil {
		return models.TrendingEntry{}, fmt.Errorf("appwrite create document: %w", err)
	}
	var doc appwriteDocument
	if err := res.Decode(&doc); err != nil {
		return models.TrendingEntry{}, fmt.Errorf("appwrite decode document: %w", err)
	}
	return doc.entry(), nil
}

func (s *AppwriteStore) Increment(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	if entry.DocumentID == "" {
		return models.TrendingEntry{}, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return models.TrendingEntry{}, err
	}
	res, err := s.db.UpdateDocument(s.databaseID, s.collectionID, entry.DocumentID,
		s.db.WithUpdateDocumentData(map[string]any{"count": entry.Count + 1}))
	if err != nil {
		if appwriteStatus(err) == http.StatusNotFound {
			return models.TrendingEntry{}, ErrNotFound
		}
		return models.TrendingEntry{}, fmt.Errorf("appwrite update document: %w", err)
	}
	var doc appwriteDocument
	if err := res.Decode(&doc); err != nil {
		return models.TrendingEntry{}, fmt.Errorf("appwrite decode document: %w", err)
	}
	return doc.entry(), nil
}

func (s *AppwriteStore) Top(ctx context.Context, limit int) ([]models.TrendingEntry, error) {
	if limit <= 0 {
		return []models.TrendingEntry{}, nil
	}
	docs, err := s.list(ctx, query.OrderDesc("count"), query.Limit(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]models.TrendingEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.entry())
	}
	return entries, nil
}

// Close is a no-op; the store holds no connections of its own.
func (s *AppwriteStore) Close() error {
	return nil
}
