package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/sourcegraph/conc"

	"muppi/internal/browse"
	"muppi/models"
)

//go:embed browse_templates/*.html
var browseTemplatesFS embed.FS

// BrowseHandler renders the movie browser as a server-side page.
type BrowseHandler struct {
	Movies   movieService
	Trending trendingService
	Limit    int

	tmpl *template.Template
}

func NewBrowseHandler(m movieService, t trendingService, limit int) *BrowseHandler {
	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"poster": func(mv models.Movie) string {
			return mv.PosterURL()
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseFS(browseTemplatesFS, "browse_templates/index.html"))
	return &BrowseHandler{Movies: m, Trending: t, Limit: limit, tmpl: tmpl}
}

type browsePage struct {
	Query string
	State browse.State
}

// Page loads trending searches and movies for ?q= concurrently, records the
// top hit of a non-empty search and renders the result.
func (h *BrowseHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	state := browse.New()
	state.SetRaw(query)
	state.Commit(query)

	var (
		movieTicket    = state.BeginMovies(query)
		trendingTicket = state.BeginTrending()
		movieList      []models.Movie
		movieErr       error
		entries        []models.TrendingEntry
		trendingErr    error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		movieList, movieErr = h.Movies.Fetch(ctx, movieTicket.Term)
	})
	wg.Go(func() {
		entries, trendingErr = h.Trending.ListTrending(ctx, h.Limit)
	})
	wg.Wait()

	_, rec := state.ResolveMovies(movieTicket, movieList, movieErr)
	state.ResolveTrending(trendingTicket, entries, trendingErr)
	if movieErr != nil {
		log.Printf("[browse] fetch %q failed: %v", query, movieErr)
	}

	if rec != nil {
		if err := h.Trending.RecordSearch(ctx, rec.Term, rec.Movie); err != nil {
			log.Printf("[browse] record search %q failed: %v", rec.Term, err)
		} else {
			reload := state.BeginTrending()
			entries, trendingErr = h.Trending.ListTrending(ctx, h.Limit)
			state.ResolveTrending(reload, entries, trendingErr)
		}
	}
	if trendingErr != nil {
		log.Printf("[browse] load trending failed: %v", trendingErr)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", browsePage{Query: query, State: state}); err != nil {
		log.Printf("[browse] render failed: %v", err)
	}
}
