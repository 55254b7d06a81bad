package movies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"muppi/models"
)

const (
	discoverSortKey = "popularity.desc"
)

type tmdbClient struct {
	baseURL  string
	token    string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

func newTMDBClient(baseURL, token, lang string, httpc *http.Client, requestsPerSecond float64) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 20
	}
	return &tmdbClient{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:    strings.TrimSpace(token),
		language: normalizeLanguage(lang),
		httpc:    httpc,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

type tmdbMovieListResponse struct {
	Results []tmdbMovie `json:"results"`

	// Payload-embedded error convention of older movie APIs.
	Response legacyFlag `json:"Response"`
	Error    string     `json:"Error"`
}

type tmdbMovie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	PosterPath       *string `json:"poster_path"`
	ReleaseDate      *string `json:"release_date"`
	Overview         string  `json:"overview"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
}

// legacyFlag decodes the Response field, which upstreams have sent as a
// boolean or as the strings "True"/"False".
type legacyFlag struct {
	set   bool
	value bool
}

func (f *legacyFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = legacyFlag{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = legacyFlag{set: true, value: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode Response field: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false":
		*f = legacyFlag{set: true, value: false}
	case "true":
		*f = legacyFlag{set: true, value: true}
	default:
		*f = legacyFlag{}
	}
	return nil
}

func (f legacyFlag) isFalse() bool {
	return f.set && !f.value
}

// discoverURL lists movies by descending popularity.
func (c *tmdbClient) discoverURL() string {
	endpoint := c.baseURL + "/discover/movie?sort_by=" + discoverSortKey
	return c.withLanguage(endpoint)
}

// searchURL matches movies by title. The query is percent-encoded the way
// browsers encode a URI component, so spaces become %20 rather than '+'.
func (c *tmdbClient) searchURL(query string) string {
	endpoint := c.baseURL + "/search/movie?query=" + encodeQueryComponent(query)
	return c.withLanguage(endpoint)
}

func (c *tmdbClient) withLanguage(endpoint string) string {
	if c.language == "" {
		return endpoint
	}
	return endpoint + "&language=" + url.QueryEscape(c.language)
}

// encodeQueryComponent escapes s the way a browser's encodeURIComponent
// does: every UTF-8 byte outside A-Z a-z 0-9 and -_.!~*'() becomes %XX.
func encodeQueryComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// listMovies performs exactly one GET and maps every failure to *FetchError.
func (c *tmdbClient) listMovies(ctx context.Context, endpoint string) ([]models.Movie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindTransport, Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[tmdb] http error: %v", err)
		return nil, &FetchError{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[tmdb] request failed: %s", resp.Status)
		return nil, &FetchError{
			Kind:    KindStatus,
			Status:  resp.StatusCode,
			Message: DefaultFailureMessage,
			Err:     fmt.Errorf("tmdb request failed: %s", resp.Status),
		}
	}

	var payload tmdbMovieListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[tmdb] decode error: %v", err)
		return nil, &FetchError{Kind: KindDecode, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if payload.Response.isFalse() {
		msg := strings.TrimSpace(payload.Error)
		if msg == "" {
			msg = DefaultFailureMessage
		}
		return nil, &FetchError{
			Kind:    KindUpstream,
			Status:  resp.StatusCode,
			Message: msg,
			Err:     errors.New("upstream reported Response=false"),
		}
	}

	movies := make([]models.Movie, 0, len(payload.Results))
	for _, r := range payload.Results {
		movies = append(movies, models.Movie{
			ID:               r.ID,
			Title:            r.Title,
			PosterPath:       deref(r.PosterPath),
			ReleaseDate:      deref(r.ReleaseDate),
			Overview:         r.Overview,
			OriginalLanguage: r.OriginalLanguage,
			VoteAverage:      r.VoteAverage,
		})
	}
	return movies, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// normalizeLanguage canonicalises a BCP 47 tag ("en_us" -> "en-US").
// Unparseable values are dropped so TMDB falls back to its default.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		log.Printf("[tmdb] ignoring invalid language %q: %v", lang, err)
		return ""
	}
	return tag.String()
}
