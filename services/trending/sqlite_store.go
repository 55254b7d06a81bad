package trending

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"muppi/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore keeps trending counters in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the database at path and applies
// pending migrations. Use ":memory:" for a throwaway store.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create trending db dir: %w", err)
			}
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open trending db: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("trending migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("trending migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply trending migrations: %w", err)
	}
	for _, r := range results {
		log.Printf("[trending] applied migration %s in %s", r.Source.Path, r.Duration)
	}
	return nil
}

const selectColumns = `id, search_term, movie_id, poster_url, count, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (models.TrendingEntry, error) {
	var e models.TrendingEntry
	err := row.Scan(&e.DocumentID, &e.SearchTerm, &e.MovieID, &e.PosterURL, &e.Count, &e.UpdatedAt)
	return e, err
}

func (s *SQLiteStore) FindByTerm(ctx context.Context, term string) (models.TrendingEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM trending_searches WHERE search_term = ?`, term)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TrendingEntry{}, ErrNotFound
	}
	if err != nil {
		return models.TrendingEntry{}, err
	}
	return e, nil
}

// Create inserts a new entry. If another session created the same term in the
// meantime the existing row is incremented instead, so a term never gets two
// rows.
func (s *SQLiteStore) Create(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	if entry.DocumentID == "" {
		entry.DocumentID = uuid.NewString()
	}
	if entry.Count <= 0 {
		entry.Count = 1
	}
	now := s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trending_searches (id, search_term, movie_id, poster_url, count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(search_term) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at
	`, entry.DocumentID, entry.SearchTerm, entry.MovieID, entry.PosterURL, entry.Count, now)
	if err != nil {
		return models.TrendingEntry{}, err
	}
	return s.FindByTerm(ctx, entry.SearchTerm)
}

func (s *SQLiteStore) Increment(ctx context.Context, entry models.TrendingEntry) (models.TrendingEntry, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trending_searches SET count = count + 1, updated_at = ? WHERE id = ?`,
		s.now().UTC(), entry.DocumentID)
	if err != nil {
		return models.TrendingEntry{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.TrendingEntry{}, err
	}
	if n == 0 {
		return models.TrendingEntry{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM trending_searches WHERE id = ?`, entry.DocumentID)
	return scanEntry(row)
}

func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]models.TrendingEntry, error) {
	if limit <= 0 {
		return []models.TrendingEntry{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM trending_searches
		ORDER BY count DESC, updated_at DESC, search_term ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.TrendingEntry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
