// Package ui is the terminal front end: a search box with a debounced query,
// a trending section and an all-movies section.
package ui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"muppi/internal/browse"
	"muppi/internal/debounce"
	"muppi/models"
)

// MovieFetcher is satisfied by *movies.Service.
type MovieFetcher interface {
	Fetch(ctx context.Context, query string) ([]models.Movie, error)
}

// TrendingTracker is satisfied by *trending.Service.
type TrendingTracker interface {
	RecordSearch(ctx context.Context, term string, topMovie models.Movie) error
	ListTrending(ctx context.Context, limit int) ([]models.TrendingEntry, error)
}

// Model is the Bubble Tea model. Every state change happens in Update; the
// network work runs in commands that report back with their ticket.
type Model struct {
	ctx       context.Context
	movies    MovieFetcher
	trending  TrendingTracker
	limit     int
	debouncer *debounce.Debouncer[string]

	input   textinput.Model
	spinner spinner.Model
	state   browse.State
	notice  string
	width   int

	initial []tea.Cmd
}

// NewModel wires the services and the debouncer that settles keystrokes.
// The model owns the debouncer and stops it on quit.
func NewModel(ctx context.Context, movies MovieFetcher, trending TrendingTracker, d *debounce.Debouncer[string], limit int) Model {
	ti := textinput.New()
	ti.Placeholder = "Search through thousands of movies"
	ti.Prompt = "🔍 "
	ti.CharLimit = 120
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle

	m := Model{
		ctx:       ctx,
		movies:    movies,
		trending:  trending,
		limit:     limit,
		debouncer: d,
		input:     ti,
		spinner:   sp,
		state:     browse.New(),
		width:     80,
	}
	// Tickets for the initial loads are issued here because Init cannot
	// return an updated model.
	m.initial = []tea.Cmd{
		m.fetchMovies(m.state.BeginMovies("")),
		m.loadTrending(m.state.BeginTrending()),
	}
	return m
}

// State exposes the current view state.
func (m Model) State() browse.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, listen(m.debouncer)}
	cmds = append(cmds, m.initial...)
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.debouncer.Stop()
			return m, tea.Quit
		case "ctrl+r":
			m.notice = ""
			return m, tea.Batch(
				m.fetchMovies(m.state.BeginMovies(m.state.Search.CommittedTerm)),
				m.loadTrending(m.state.BeginTrending()),
			)
		}

		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.state.SetRaw(value)
			m.debouncer.Push(value)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case searchSettledMsg:
		if !m.state.Commit(msg.term) {
			return m, listen(m.debouncer)
		}
		ticket := m.state.BeginMovies(m.state.Search.CommittedTerm)
		return m, tea.Batch(listen(m.debouncer), m.fetchMovies(ticket))

	case moviesLoadedMsg:
		applied, rec := m.state.ResolveMovies(msg.ticket, msg.movies, msg.err)
		if !applied {
			log.Printf("[browse] dropped stale results for %q (seq %d)", msg.ticket.Term, msg.ticket.Seq)
			return m, nil
		}
		if msg.err != nil {
			log.Printf("[browse] fetch %q failed: %v", msg.ticket.Term, msg.err)
		}
		if rec == nil {
			return m, nil
		}
		return m, m.recordSearch(*rec)

	case searchRecordedMsg:
		if msg.err != nil {
			// The search itself succeeded; only the counter write is lost.
			log.Printf("[browse] record search %q failed: %v", msg.term, msg.err)
			m.notice = "Could not update trending searches"
			return m, nil
		}
		m.notice = ""
		return m, m.loadTrending(m.state.BeginTrending())

	case trendingLoadedMsg:
		if !m.state.ResolveTrending(msg.ticket, msg.entries, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("[browse] load trending failed: %v", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// listen waits for the next settled term. It yields nil once the debouncer
// has been stopped, which ends the chain.
func listen(d *debounce.Debouncer[string]) tea.Cmd {
	return func() tea.Msg {
		term, ok := <-d.C()
		if !ok {
			return nil
		}
		return searchSettledMsg{term: term}
	}
}

func (m Model) fetchMovies(ticket browse.Ticket) tea.Cmd {
	ctx, svc := m.ctx, m.movies
	return func() tea.Msg {
		movies, err := svc.Fetch(ctx, ticket.Term)
		return moviesLoadedMsg{ticket: ticket, movies: movies, err: err}
	}
}

func (m Model) loadTrending(ticket browse.Ticket) tea.Cmd {
	ctx, svc, limit := m.ctx, m.trending, m.limit
	return func() tea.Msg {
		entries, err := svc.ListTrending(ctx, limit)
		return trendingLoadedMsg{ticket: ticket, entries: entries, err: err}
	}
}

func (m Model) recordSearch(rec browse.RecordRequest) tea.Cmd {
	ctx, svc := m.ctx, m.trending
	return func() tea.Msg {
		return searchRecordedMsg{term: rec.Term, err: svc.RecordSearch(ctx, rec.Term, rec.Movie)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Find " + highlightStyle.Render("Movies") + " You'll Enjoy Without Hassle"))
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(sectionTitleStyle.Render("Trending Searches"))
	b.WriteString("\n")
	b.WriteString(m.renderTrending())

	b.WriteString(sectionTitleStyle.Render("All Movies"))
	b.WriteString("\n")
	b.WriteString(m.renderMovies())

	b.WriteString(helpStyle.Render("ctrl+r reload • esc quit"))
	return b.String()
}

func (m Model) renderTrending() string {
	sec := m.state.Trending
	switch sec.Status {
	case browse.StatusLoading:
		return m.spinner.View() + " Loading trending searches...\n"
	case browse.StatusFailure:
		return errorStyle.Render(sec.Message) + "\n"
	}
	if len(sec.Items) == 0 {
		return metaStyle.Render("No searches yet.") + "\n"
	}
	var b strings.Builder
	for i, e := range sec.Items {
		b.WriteString(rankStyle.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(titleStyle.Render(e.SearchTerm))
		b.WriteString(metaStyle.Render(fmt.Sprintf("  %d %s", e.Count, plural(e.Count, "search", "searches"))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMovies() string {
	sec := m.state.Movies
	switch sec.Status {
	case browse.StatusLoading:
		return m.spinner.View() + " Loading movies...\n"
	case browse.StatusFailure:
		return errorStyle.Render(sec.Message) + "\n"
	}
	if len(sec.Items) == 0 {
		if term := m.state.Search.CommittedTerm; term != "" {
			return metaStyle.Render(fmt.Sprintf("No movies found for %q.", term)) + "\n"
		}
		return metaStyle.Render("No movies found.") + "\n"
	}
	var b strings.Builder
	for i, mv := range sec.Items {
		b.WriteString(rankStyle.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(titleStyle.Render(mv.Title))
		b.WriteString(metaStyle.Render("  " + movieMeta(mv)))
		b.WriteString("\n")
	}
	return b.String()
}

// movieMeta renders "★ 8.5 • en • 2008" with N/A for missing parts.
func movieMeta(mv models.Movie) string {
	rating := "N/A"
	if mv.VoteAverage > 0 {
		rating = fmt.Sprintf("%.1f", mv.VoteAverage)
	}
	lang := mv.OriginalLanguage
	if lang == "" {
		lang = "N/A"
	}
	year := "N/A"
	if y := mv.Year(); y > 0 {
		year = strconv.Itoa(y)
	}
	return fmt.Sprintf("★ %s • %s • %s", rating, lang, year)
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
