package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"muppi/handlers"
)

// corsMiddleware answers preflights itself and tags every API response.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// NewRouter builds the full router: the browser page at / and the JSON API.
func NewRouter(browseHandler *handlers.BrowseHandler, moviesHandler *handlers.MoviesHandler, trendingHandler *handlers.TrendingHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", browseHandler.Page).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	Register(r, moviesHandler, trendingHandler)
	return r
}

// Register mounts API endpoints onto the provided router.
func Register(r *mux.Router, moviesHandler *handlers.MoviesHandler, trendingHandler *handlers.TrendingHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/movies", moviesHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/movies", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/trending", trendingHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/trending", trendingHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/trending", handleOptions).Methods(http.MethodOptions)
}
