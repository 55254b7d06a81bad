package models

import "time"

// TrendingEntry counts how often a search term produced results.
// There is at most one entry per distinct SearchTerm.
type TrendingEntry struct {
	DocumentID string    `json:"documentId"`
	SearchTerm string    `json:"searchTerm"`
	MovieID    int64     `json:"movieId"`
	PosterURL  string    `json:"posterUrl"`
	Count      int64     `json:"count"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
