// Package jikan is a client for Jikan, the unofficial MyAnimeList REST API.
package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/avast/retry-go/v4"
)

const defaultBaseURL = "https://api.jikan.moe/v4"

// Sentinel errors for Jikan responses.
var (
	ErrNotFound    = errors.New("anime not found")
	ErrRateLimited = errors.New("rate limited: too many requests")
	ErrUnavailable = errors.New("jikan unavailable")
)

// Client is a Jikan v4 client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	pace       func(context.Context) error
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
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
		c.log = log.With("component", "jikan")
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

// New creates a new Jikan client.
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

// Search returns up to ten safe-for-work anime matching query. A positive
// year restricts results to those that started airing that year.
func (c *Client) Search(ctx context.Context, query string, year int) ([]Anime, error) {
	start := time.Now()
	params := url.Values{}
	params.Set("q", query)
	params.Set("sfw", "true")
	params.Set("limit", "10")
	if year > 0 {
		params.Set("start_date", fmt.Sprintf("%d-01-01", year))
		params.Set("end_date", fmt.Sprintf("%d-12-31", year))
	}

	var resp searchResponse
	if err := c.get(ctx, "/anime?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if c.log != nil {
		c.log.Debug("search completed",
			"query", query,
			"year", year,
			"results", len(resp.Data),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return resp.Data, nil
}

// Get fetches an anime by MAL ID.
func (c *Client) Get(ctx context.Context, malID int64) (*Anime, error) {
	var resp animeResponse
	if err := c.get(ctx, "/anime/"+strconv.FormatInt(malID, 10), &resp); err != nil {
		return nil, fmt.Errorf("get anime %d: %w", malID, err)
	}
	return &resp.Data, nil
}

// BestMatch searches for query and returns the highest scoring result.
// When the year-filtered search is empty it searches again without the
// year, still using the year for scoring. It returns ErrNotFound when no
// result scores above zero.
func (c *Client) BestMatch(ctx context.Context, query string, year int) (*Anime, error) {
	results, err := c.Search(ctx, query, year)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && year > 0 {
		if results, err = c.Search(ctx, query, 0); err != nil {
			return nil, err
		}
	}

	best := bestMatch(results, query, year)
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func bestMatch(results []Anime, query string, year int) *Anime {
	var best *Anime
	bestScore := 0
	for i := range results {
		if s := Score(&results[i], query, year); s > bestScore {
			best, bestScore = &results[i], s
		}
	}
	return best
}

// Score rates how well a search result fits query and year. Higher is
// better; zero means no evidence at all.
func Score(a *Anime, query string, year int) int {
	queryLower := strings.ToLower(query)
	queryClean := cleanTitle(queryLower)
	score := 0

	titleLower := strings.ToLower(a.Title)
	titleClean := cleanTitle(titleLower)
	switch {
	case titleClean == queryClean:
		score += 100
	case strings.Contains(titleLower, queryLower) || strings.Contains(queryLower, titleLower):
		score += 50
	case strings.Contains(titleClean, queryClean) || strings.Contains(queryClean, titleClean):
		score += 30
	}

	if a.TitleEnglish != "" {
		engLower := strings.ToLower(a.TitleEnglish)
		if cleanTitle(engLower) == queryClean {
			score += 100
		} else if strings.Contains(engLower, queryLower) {
			score += 40
		}
	}

	for _, syn := range a.TitleSynonyms {
		if cleanTitle(strings.ToLower(syn)) == queryClean {
			score += 80
			break
		}
	}

	if year > 0 {
		if a.Year == year {
			score += 50
		} else if strings.HasPrefix(a.Aired.From, strconv.Itoa(year)) {
			score += 40
		}
	}

	if a.Type == "TV" {
		score += 10
	}
	score += int(a.Score * 2)
	return score
}

// cleanTitle keeps letters, digits and single spaces.
func cleanTitle(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return retry.Do(
		func() error {
			if err := c.awaitTurn(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
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
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
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
	case errors.Is(err, ErrNotFound), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUnavailable):
		return true
	}
	var apiErr *apiError
	return !errors.As(err, &apiErr)
}

type apiError struct {
	status string
}

func (e *apiError) Error() string {
	return "jikan API error: " + e.status
}

// checkResponse maps HTTP status codes to errors.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return &apiError{status: resp.Status}
	}
}
