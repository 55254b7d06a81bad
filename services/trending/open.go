package trending

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"muppi/config"
)

// Open builds the Store selected by settings.Backend.
func Open(ctx context.Context, settings config.TrendingSettings, httpc *http.Client) (Store, error) {
	var (
		store Store
		err   error
	)
	switch settings.Backend {
	case config.TrendingBackendSQLite, "":
		store, err = OpenSQLiteStore(ctx, settings.SQLite.Path)
	case config.TrendingBackendAppwrite:
		store, err = NewAppwriteStore(settings.Appwrite, httpc)
	case config.TrendingBackendFile:
		store, err = NewFileStore(afero.NewOsFs(), settings.File.Directory)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTrendingBackend, settings.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
