package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/natefinch/lumberjack.v2"

	"muppi/api"
	"muppi/config"
	"muppi/handlers"
	"muppi/internal/debounce"
	"muppi/internal/ui"
	"muppi/services/movies"
	"muppi/services/trending"
)

func main() {
	tuiMode := flag.Bool("tui", false, "run the terminal browser instead of the HTTP server")
	portOverride := flag.Int("port", 0, "override server port from config")
	debounceOverride := flag.Duration("debounce", 0, "override the search debounce delay (e.g. 300ms)")
	flag.Parse()

	// Determine config path (env or default)
	configPath := os.Getenv("MUPPI_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	config.ApplyEnv(&settings, os.Getenv)

	setupLogging(settings.Log, *tuiMode)

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}
	if *debounceOverride > 0 {
		settings.Search.DebounceMillis = int(debounceOverride.Milliseconds())
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("invalid settings (%s): %v", cfgManager.Path(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := trending.Open(ctx, settings.Trending, nil)
	if err != nil {
		log.Fatalf("failed to open trending store: %v", err)
	}
	trendingSvc := trending.NewService(store, settings.Trending.Limit)
	defer func() {
		if err := trendingSvc.Close(); err != nil {
			log.Printf("[trending] close: %v", err)
		}
	}()

	movieSvc, err := movies.NewService(settings.TMDB, nil)
	if err != nil {
		log.Fatalf("failed to initialise movie service: %v", err)
	}

	slog.Info("muppi starting",
		"mode", modeName(*tuiMode),
		"trending_backend", settings.Trending.Backend,
		"debounce", settings.Search.Debounce(),
	)

	if *tuiMode {
		runTUI(ctx, movieSvc, trendingSvc, settings)
		return
	}
	runServer(ctx, movieSvc, trendingSvc, settings)
}

func modeName(tui bool) string {
	if tui {
		return "tui"
	}
	return "http"
}

// setupLogging routes the standard logger through a rotating file. The
// terminal UI owns the screen, so in that mode the file is the only sink.
func setupLogging(cfg config.LogConfig, tuiMode bool) {
	var console io.Writer = os.Stdout
	if tuiMode {
		console = io.Discard
	}
	if cfg.File == "" {
		log.SetOutput(console)
		return
	}

	logDir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		log.SetOutput(console)
		return
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(console, fileWriter))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Logging to file: %s", cfg.File)
}

func runTUI(ctx context.Context, movieSvc *movies.Service, trendingSvc *trending.Service, settings config.Settings) {
	d := debounce.New[string](settings.Search.Debounce())
	defer d.Stop()

	model := ui.NewModel(ctx, movieSvc, trendingSvc, d, settings.Trending.Limit)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Fatalf("terminal UI error: %v", err)
	}
}

func runServer(ctx context.Context, movieSvc *movies.Service, trendingSvc *trending.Service, settings config.Settings) {
	r := api.NewRouter(
		handlers.NewBrowseHandler(movieSvc, trendingSvc, settings.Trending.Limit),
		handlers.NewMoviesHandler(movieSvc),
		handlers.NewTrendingHandler(trendingSvc),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}
