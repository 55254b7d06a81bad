package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"muppi/models"
	"muppi/services/trending"
)

type trendingService interface {
	RecordSearch(ctx context.Context, term string, topMovie models.Movie) error
	ListTrending(ctx context.Context, limit int) ([]models.TrendingEntry, error)
}

var _ trendingService = (*trending.Service)(nil)

type TrendingHandler struct {
	Service trendingService
}

func NewTrendingHandler(s trendingService) *TrendingHandler {
	return &TrendingHandler{Service: s}
}

type TrendingResponse struct {
	Trending []models.TrendingEntry `json:"trending"`
}

// RecordSearchRequest is the body of POST /api/trending.
type RecordSearchRequest struct {
	SearchTerm string       `json:"searchTerm"`
	Movie      models.Movie `json:"movie"`
}

func (h *TrendingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.Service.ListTrending(r.Context(), limit)
	if err != nil {
		log.Printf("[trending] list failed: %v", err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	if entries == nil {
		entries = []models.TrendingEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TrendingResponse{Trending: entries})
}

func (h *TrendingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SearchTerm) == "" {
		writeJSONError(w, http.StatusBadRequest, "searchTerm is required")
		return
	}

	if err := h.Service.RecordSearch(r.Context(), req.SearchTerm, req.Movie); err != nil {
		if errors.Is(err, trending.ErrTermRequired) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[trending] record %q failed: %v", req.SearchTerm, err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
