package trending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"muppi/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// FileStore keeps trending counters in a JSON file. It suits single-user
// installs that do not want a database.
type FileStore struct {
	mu      sync.RWMutex
	fs      afero.Fs
	path    string
	entries map[string]models.TrendingEntry // keyed by search term
	now     func() time.Time
}

// NewFileStore creates a store persisting to trending.json inside storageDir.
func NewFileStore(fsys afero.Fs, storageDir string) (*FileStore, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fsys.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create trending dir: %w", err)
	}

	s := &FileStore{
		fs:      fsys,
		path:    filepath.Join(storageDir, "trending.json"),
		entries: make(map[string]models.TrendingEntry),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) FindByTerm(_ context.Context, term string) (models.TrendingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[term]
	if !ok {
		return models.TrendingEntry{}, ErrNotFound
	}
	return e, nil
}

func (s *FileStore) Create(_ context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[entry.SearchTerm]; ok {
		existing.Count++
		existing.UpdatedAt = s.now().UTC()
		s.entries[entry.SearchTerm] = existing
		return existing, s.saveLocked()
	}

	if entry.DocumentID == "" {
		entry.DocumentID = uuid.NewString()
	}
	if entry.Count <= 0 {
		entry.Count = 1
	}
	entry.UpdatedAt = s.now().UTC()
	s.entries[entry.SearchTerm] = entry
	return entry, s.saveLocked()
}

func (s *FileStore) Increment(_ context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.SearchTerm]
	if !ok || existing.DocumentID != entry.DocumentID {
		return models.TrendingEntry{}, ErrNotFound
	}
	existing.Count++
	existing.UpdatedAt = s.now().UTC()
	s.entries[entry.SearchTerm] = existing
	return existing, s.saveLocked()
}

func (s *FileStore) Top(_ context.Context, limit int) ([]models.TrendingEntry, error) {
	if limit <= 0 {
		return []models.TrendingEntry{}, nil
	}
	s.mu.RLock()
	entries := make([]models.TrendingEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sortByPopularity(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *FileStore) Close() error {
	return nil
}

// sortByPopularity orders by count, then most recently updated, then term.
func sortByPopularity(entries []models.TrendingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].SearchTerm < entries[j].SearchTerm
	})
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("stat trending: %w", err)
	}
	if !exists {
		return nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("read trending: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var list []models.TrendingEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode trending: %w", err)
	}
	for _, e := range list {
		if strings.TrimSpace(e.SearchTerm) == "" {
			continue
		}
		s.entries[e.SearchTerm] = e
	}
	return nil
}

func (s *FileStore) saveLocked() error {
	list := make([]models.TrendingEntry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	sortByPopularity(list)

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create trending temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode trending: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync trending: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close trending temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("persist trending: %w", err)
	}
	return nil
}
