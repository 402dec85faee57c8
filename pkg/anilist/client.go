// Package anilist is a client for the AniList GraphQL API.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/vmunix/mediarr/pkg/release"
)

const defaultBaseURL = "https://graphql.anilist.co"

// Sentinel errors for AniList responses.
var (
	ErrNotFound    = errors.New("anime not found")
	ErrRateLimited = errors.New("rate limited: too many requests")
	ErrUnavailable = errors.New("anilist unavailable")
)

const mediaFields = `
	id
	idMal
	title { romaji english native }
	description(asHtml: false)
	startDate { year month day }
	endDate { year month day }
	coverImage { extraLarge large medium }
	bannerImage
	averageScore
	episodes
	duration
	genres
	studios(isMain: true) { nodes { name isAnimationStudio } }
	format
	status
	seasonYear
`

const searchQuery = `query ($search: String, $year: Int) {
  Page(page: 1, perPage: 10) {
    media(search: $search, seasonYear: $year, type: ANIME, sort: SEARCH_MATCH) {` + mediaFields + `}
  }
}`

const detailQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {` + mediaFields + `
    characters(sort: ROLE, perPage: 25) {
      edges {
        node { id name { full native } image { large medium } }
        role
        voiceActors(language: JAPANESE) { id name { full native } image { large medium } language }
      }
    }
  }
}`

// Client is an AniList GraphQL client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	pace       func(context.Context) error
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAttempts sets how many times a transient failure is tried.
func WithAttempts(n uint) Option {
	return func(c *Client) {
		c.attempts = max(n, 1)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "anilist")
	}
}

// WithPacer installs wait, which runs before every HTTP request, retries
// included. A shared rate gate makes the client honor a per-provider
// minimum interval.
func WithPacer(wait func(context.Context) error) Option {
	return func(c *Client) {
		c.pace = wait
	}
}

// SetPacer replaces the pacer. It must not be called while requests are
// in flight.
func (c *Client) SetPacer(wait func(context.Context) error) {
	c.pace = wait
}

func (c *Client) awaitTurn(ctx context.Context) error {
	if c.pace == nil {
		return nil
	}
	return c.pace(ctx)
}

// New creates a new AniList client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		attempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to ten anime matching title, restricted to the season
// year when year is positive.
func (c *Client) Search(ctx context.Context, title string, year int) ([]Media, error) {
	start := time.Now()
	vars := map[string]any{"search": title}
	if year > 0 {
		vars["year"] = year
	}

	var resp searchResponse
	if err := c.query(ctx, searchQuery, vars, &resp); err != nil {
		return nil, err
	}
	if err := firstError(resp.Errors); err != nil {
		return nil, err
	}

	results := resp.Data.Page.Media
	if c.log != nil {
		c.log.Debug("search completed",
			"query", title,
			"year", year,
			"results", len(results),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return results, nil
}

// Get fetches one anime with its character and voice actor credits.
func (c *Client) Get(ctx context.Context, id int64) (*Media, error) {
	var resp mediaResponse
	if err := c.query(ctx, detailQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Media == nil {
		if err := firstError(resp.Errors); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return resp.Data.Media, nil
}

// BestMatch searches for title and returns the first result whose English,
// romaji, or native title matches it. When nothing matches by title but a
// year was given, the top result is accepted if it aired that year. It
// returns ErrNotFound when no result is acceptable.
func (c *Client) BestMatch(ctx context.Context, title string, year int) (*Media, error) {
	results, err := c.Search(ctx, title, year)
	if err != nil {
		return nil, err
	}
	for i := range results {
		m := &results[i]
		for _, t := range []string{m.Title.English, m.Title.Romaji, m.Title.Native} {
			if t != "" && release.TitleMatch(title, t) {
				return m, nil
			}
		}
	}
	if year > 0 && len(results) > 0 && results[0].Year() == year {
		return &results[0], nil
	}
	return nil, ErrNotFound
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	return retry.Do(
		func() error {
			if err := c.awaitTurn(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.post(ctx, body, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

// retryable reports whether err is worth another attempt: throttling,
// server errors and transport failures. A cancelled context is not.
func retryable(err error) bool {
	switch {
	case !retry.IsRecoverable(err):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUnavailable):
		return true
	}
	var apiErr *apiError
	var decodeErr *decodeError
	return !errors.As(err, &apiErr) && !errors.As(err, &decodeErr)
}

type apiError struct {
	status string
}

func (e *apiError) Error() string {
	return "anilist API error: " + e.status
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decode response: " + e.err.Error()
}

func (e *decodeError) Unwrap() error {
	return e.err
}

func (c *Client) post(ctx context.Context, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// checkResponse maps HTTP status codes to errors. AniList answers 404
// with a GraphQL body for unknown IDs, so that status is left to the
// caller to decode.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return &apiError{status: resp.Status}
	}
}

func firstError(errs []graphqlError) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	if e.Status == http.StatusNotFound || strings.EqualFold(e.Message, "not found.") {
		return ErrNotFound
	}
	return fmt.Errorf("anilist: %s", e.Message)
}
