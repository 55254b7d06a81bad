package models

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// Poster images are served from the TMDB image CDN at a fixed width.
const (
	PosterBaseURL = "https://image.tmdb.org/t/p"
	PosterSize    = "w500"
)

// Movie is a read-only projection of a TMDB movie result.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	PosterPath       string  `json:"posterPath,omitempty"`
	ReleaseDate      string  `json:"releaseDate,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	OriginalLanguage string  `json:"originalLanguage,omitempty"`
	VoteAverage      float64 `json:"voteAverage"`
}

// PosterURL returns the absolute poster URL, or "" when TMDB has no poster.
func (m Movie) PosterURL() string {
	trimmed := strings.TrimSpace(m.PosterPath)
	if trimmed == "" {
		return ""
	}
	return PosterBaseURL + "/" + path.Join(PosterSize, strings.TrimPrefix(trimmed, "/"))
}

// Year extracts the release year, or 0 when the date is missing or malformed.
func (m Movie) Year() int {
	date := strings.TrimSpace(m.ReleaseDate)
	if date == "" {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}
