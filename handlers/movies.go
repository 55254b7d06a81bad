package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"muppi/models"
	"muppi/services/movies"
)

type movieService interface {
	Fetch(ctx context.Context, query string) ([]models.Movie, error)
}

var _ movieService = (*movies.Service)(nil)

type MoviesHandler struct {
	Service movieService
}

func NewMoviesHandler(s movieService) *MoviesHandler {
	return &MoviesHandler{Service: s}
}

// MovieResult adds the resolved poster URL to a movie.
type MovieResult struct {
	models.Movie
	PosterURL string `json:"posterUrl,omitempty"`
}

type MoviesResponse struct {
	Movies []MovieResult `json:"movies"`
}

func toMovieResults(list []models.Movie) []MovieResult {
	out := make([]MovieResult, 0, len(list))
	for _, m := range list {
		out = append(out, MovieResult{Movie: m, PosterURL: m.PosterURL()})
	}
	return out
}

// Search returns popular movies for an empty query and search results
// otherwise.
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	list, err := h.Service.Fetch(r.Context(), query)
	if err != nil {
		log.Printf("[movies] fetch %q failed: %v", query, err)
		writeJSONError(w, http.StatusBadGateway, movies.Message(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MoviesResponse{Movies: toMovieResults(list)})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
