// Package browse holds the view state of the movie browser: the search box,
// the all-movies section and the trending section, with the transitions
// between them.
package browse

import (
	"strings"

	"muppi/models"
)

// Status is the phase of one section.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Section is the result of the latest fetch for one list. Exactly one of
// loading, success or failure is active; a failure carries no items.
type Section[T any] struct {
	Status  Status
	Items   []T
	Message string
}

func (s Section[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s Section[T]) IsFailure() bool { return s.Status == StatusFailure }

func loading[T any]() Section[T] {
	return Section[T]{Status: StatusLoading}
}

func succeeded[T any](items []T) Section[T] {
	if items == nil {
		items = []T{}
	}
	return Section[T]{Status: StatusSuccess, Items: items}
}

func failed[T any](message string) Section[T] {
	return Section[T]{Status: StatusFailure, Message: message}
}

// Target names a section.
type Target int

const (
	TargetMovies Target = iota
	TargetTrending
)

// Ticket identifies one issued fetch. Only the ticket with the highest
// sequence number for its target may resolve that target.
type Ticket struct {
	Target Target
	Seq    uint64
	Term   string
}

// RecordRequest asks for a trending counter write: Term produced Movie as its
// top result.
type RecordRequest struct {
	Term  string
	Movie models.Movie
}

// SearchState separates what is typed from what has been searched for.
type SearchState struct {
	RawTerm       string
	CommittedTerm string
}

// State is the whole browser view. The zero value is not ready; use New.
type State struct {
	Search   SearchState
	Movies   Section[models.Movie]
	Trending Section[models.TrendingEntry]

	seq            uint64
	latestMovies   uint64
	latestTrending uint64
}

// New returns the initial state: both sections loading, empty search.
func New() State {
	return State{
		Movies:   loading[models.Movie](),
		Trending: loading[models.TrendingEntry](),
	}
}

// SetRaw records a keystroke.
func (s *State) SetRaw(term string) {
	s.Search.RawTerm = term
}

// Commit records a settled search term. It reports whether the committed
// term changed, which is when a new fetch is due.
func (s *State) Commit(term string) bool {
	term = strings.TrimSpace(term)
	if term == s.Search.CommittedTerm {
		return false
	}
	s.Search.CommittedTerm = term
	return true
}

// BeginMovies puts the movie section into loading and issues a ticket for a
// fetch of term. Any earlier movie ticket becomes stale.
func (s *State) BeginMovies(term string) Ticket {
	s.seq++
	s.latestMovies = s.seq
	s.Movies = loading[models.Movie]()
	return Ticket{Target: TargetMovies, Seq: s.seq, Term: strings.TrimSpace(term)}
}

// ResolveMovies applies the outcome of the fetch identified by t. Stale
// tickets are ignored (applied is false). When a non-empty search succeeds
// with at least one movie, rec names the top result to count as trending.
func (s *State) ResolveMovies(t Ticket, movies []models.Movie, err error) (applied bool, rec *RecordRequest) {
	if t.Target != TargetMovies || t.Seq != s.latestMovies {
		return false, nil
	}
	if err != nil {
		s.Movies = failed[models.Movie](err.Error())
		return true, nil
	}
	s.Movies = succeeded(movies)
	if t.Term != "" && len(movies) > 0 {
		return true, &RecordRequest{Term: t.Term, Movie: movies[0]}
	}
	return true, nil
}

// BeginTrending puts the trending section into loading and issues a ticket.
func (s *State) BeginTrending() Ticket {
	s.seq++
	s.latestTrending = s.seq
	s.Trending = loading[models.TrendingEntry]()
	return Ticket{Target: TargetTrending, Seq: s.seq}
}

// ResolveTrending applies a trending load; stale tickets are ignored.
func (s *State) ResolveTrending(t Ticket, entries []models.TrendingEntry, err error) bool {
	if t.Target != TargetTrending || t.Seq != s.latestTrending {
		return false
	}
	if err != nil {
		s.Trending = failed[models.TrendingEntry](err.Error())
		return true
	}
	s.Trending = succeeded(entries)
	return true
}
