package ui

import (
	"muppi/internal/browse"
	"muppi/models"
)

// searchSettledMsg carries a term that survived the debounce window.
type searchSettledMsg struct {
	term string
}

type moviesLoadedMsg struct {
	ticket browse.Ticket
	movies []models.Movie
	err    error
}

type trendingLoadedMsg struct {
	ticket  browse.Ticket
	entries []models.TrendingEntry
	err     error
}

type searchRecordedMsg struct {
	term string
	err  error
}
