package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	ErrMissingTMDBToken       = errors.New("tmdb api token not configured")
	ErrUnknownTrendingBackend = errors.New("unknown trending backend")
	ErrAppwriteIncomplete     = errors.New("appwrite endpoint, project, database and collection are required")
	ErrConfigPathNotSet       = errors.New("config path not set")
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	TMDB     TMDBSettings     `json:"tmdb"`
	Trending TrendingSettings `json:"trending"`
	Search   SearchSettings   `json:"search"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TMDBSettings configures the movie metadata API client.
type TMDBSettings struct {
	APIToken          string  `json:"apiToken"`
	BaseURL           string  `json:"baseUrl"`
	Language          string  `json:"language"`          // Optional, e.g. "en-US"; empty leaves TMDB's default
	TimeoutSeconds    int     `json:"timeoutSeconds"`    // Per-request timeout (0 = default 15s)
	RequestsPerSecond float64 `json:"requestsPerSecond"` // Outbound pacing (0 = default 20/s)
}

// Timeout returns the configured request timeout.
func (t TMDBSettings) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// TrendingBackend selects where trending search counters live.
type TrendingBackend string

const (
	TrendingBackendSQLite   TrendingBackend = "sqlite"
	TrendingBackendAppwrite TrendingBackend = "appwrite"
	TrendingBackendFile     TrendingBackend = "file"
)

type TrendingSettings struct {
	Backend  TrendingBackend   `json:"backend"`
	Limit    int               `json:"limit"` // Number of entries shown in the trending section
	SQLite   SQLiteSettings    `json:"sqlite"`
	File     FileStoreSettings `json:"file"`
	Appwrite AppwriteSettings  `json:"appwrite"`
}

type SQLiteSettings struct {
	Path string `json:"path"`
}

type FileStoreSettings struct {
	Directory string `json:"directory"`
}

// AppwriteSettings points at an Appwrite Databases collection holding
// searchTerm, movieId, posterUrl and count attributes.
type AppwriteSettings struct {
	Endpoint     string `json:"endpoint"` // e.g. https://cloud.appwrite.io/v1
	ProjectID    string `json:"projectId"`
	APIKey       string `json:"apiKey"`
	DatabaseID   string `json:"databaseId"`
	CollectionID string `json:"collectionId"`
}

type SearchSettings struct {
	DebounceMillis int `json:"debounceMillis"`
}

// Debounce returns the quiet period before a typed search term is committed.
// A non-positive value means the default, never "no debounce".
func (s SearchSettings) Debounce() time.Duration {
	if s.DebounceMillis <= 0 {
		return defaultDebounceMillis * time.Millisecond
	}
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

const defaultDebounceMillis = 500

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7788},
		TMDB: TMDBSettings{
			BaseURL:           "https://api.themoviedb.org/3",
			TimeoutSeconds:    15,
			RequestsPerSecond: 20,
		},
		Trending: TrendingSettings{
			Backend: TrendingBackendSQLite,
			Limit:   5,
			SQLite:  SQLiteSettings{Path: "cache/trending.db"},
			File:    FileStoreSettings{Directory: "cache"},
		},
		Search: SearchSettings{DebounceMillis: defaultDebounceMillis},
		Log: LogConfig{
			File:       "cache/logs/muppi.log",
			MaxSize:    10, // MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Validate reports configuration that would make the app unusable at startup.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.TMDB.APIToken) == "" {
		return ErrMissingTMDBToken
	}
	switch s.Trending.Backend {
	case TrendingBackendSQLite, TrendingBackendFile:
	case TrendingBackendAppwrite:
		a := s.Trending.Appwrite
		if strings.TrimSpace(a.Endpoint) == "" || strings.TrimSpace(a.ProjectID) == "" ||
			strings.TrimSpace(a.DatabaseID) == "" || strings.TrimSpace(a.CollectionID) == "" {
			return ErrAppwriteIncomplete
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTrendingBackend, s.Trending.Backend)
	}
	return nil
}

// ApplyEnv overlays secrets from the environment. They are never written back
// to the settings file.
func ApplyEnv(s *Settings, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if token := strings.TrimSpace(getenv("TMDB_API_KEY")); token != "" {
		s.TMDB.APIToken = token
	} else if token := strings.TrimSpace(getenv("VITE_TMDB_API_KEY")); token != "" {
		s.TMDB.APIToken = token // legacy front-end variable name
	}
	if key := strings.TrimSpace(getenv("APPWRITE_API_KEY")); key != "" {
		s.Trending.Appwrite.APIKey = key
	}
	if project := strings.TrimSpace(getenv("APPWRITE_PROJECT_ID")); project != "" {
		s.Trending.Appwrite.ProjectID = project
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs is NewManager over an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, ErrConfigPathNotSet
	}
	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	if !exists {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}

	s := DefaultSettings()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
	}

	normalize(&s)
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return ErrConfigPathNotSet
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

// normalize fills in values an older or hand-edited file left blank.
func normalize(s *Settings) {
	defaults := DefaultSettings()

	s.TMDB.APIToken = strings.TrimSpace(s.TMDB.APIToken)
	if strings.TrimSpace(s.TMDB.BaseURL) == "" {
		s.TMDB.BaseURL = defaults.TMDB.BaseURL
	}
	s.TMDB.BaseURL = strings.TrimRight(s.TMDB.BaseURL, "/")
	if s.TMDB.RequestsPerSecond <= 0 {
		s.TMDB.RequestsPerSecond = defaults.TMDB.RequestsPerSecond
	}

	s.Trending.Backend = TrendingBackend(strings.ToLower(strings.TrimSpace(string(s.Trending.Backend))))
	if s.Trending.Backend == "" {
		s.Trending.Backend = defaults.Trending.Backend
	}
	if s.Trending.Limit <= 0 {
		s.Trending.Limit = defaults.Trending.Limit
	}
	if strings.TrimSpace(s.Trending.SQLite.Path) == "" {
		s.Trending.SQLite.Path = defaults.Trending.SQLite.Path
	}
	if strings.TrimSpace(s.Trending.File.Directory) == "" {
		s.Trending.File.Directory = defaults.Trending.File.Directory
	}
	s.Trending.Appwrite.Endpoint = strings.TrimRight(strings.TrimSpace(s.Trending.Appwrite.Endpoint), "/")

	if s.Search.DebounceMillis <= 0 {
		s.Search.DebounceMillis = defaults.Search.DebounceMillis
	}
	if s.Server.Port <= 0 {
		s.Server.Port = defaults.Server.Port
	}
}
