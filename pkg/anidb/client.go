// Package anidb is a client for the AniDB HTTP API. AniDB has no HTTP
// search, so lookups are by anime ID only.
package anidb

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultBaseURL    = "http://api.anidb.net:9001/httpapi"
	defaultClientName = "mediarr"
	defaultClientVer  = 1
)

// Sentinel errors for AniDB responses.
var (
	ErrNotFound    = errors.New("anime not found")
	ErrBanned      = errors.New("client banned by AniDB")
	ErrUnavailable = errors.New("anidb unavailable")
)

// Client is an AniDB HTTP API client.
type Client struct {
	baseURL    string
	clientName string
	clientVer  int
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

// WithClientID sets the registered client name and version sent with
// every request.
func WithClientID(name string, version int) Option {
	return func(c *Client) {
		c.clientName = name
		c.clientVer = version
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
		c.log = log.With("component", "anidb")
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

// New creates a new AniDB client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		clientName: defaultClientName,
		clientVer:  defaultClientVer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		attempts: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches an anime by AniDB ID.
func (c *Client) Get(ctx context.Context, aid int64) (*Anime, error) {
	start := time.Now()
	params := url.Values{}
	params.Set("request", "anime")
	params.Set("client", c.clientName)
	params.Set("clientver", strconv.Itoa(c.clientVer))
	params.Set("protover", "1")
	params.Set("aid", strconv.FormatInt(aid, 10))

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := c.awaitTurn(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			return c.fetch(ctx, c.baseURL+"?"+params.Encode())
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return nil, fmt.Errorf("get anime %d: %w", aid, err)
	}

	anime, err := parseAnime(body)
	if err != nil {
		return nil, fmt.Errorf("get anime %d: %w", aid, err)
	}

	if c.log != nil {
		c.log.Debug("anime fetched",
			"aid", aid,
			"title", anime.Title,
			"episodes", len(anime.Episodes),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return anime, nil
}

// retryable admits server errors and transport failures. Client errors
// and bans are final: AniDB penalizes clients that repeat them.
func retryable(err error) bool {
	return retry.IsRecoverable(err) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return nil, retry.Unrecoverable(fmt.Errorf("anidb API error: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// parseAnime decodes an anime document. AniDB answers unknown IDs and
// bans with 200 and an <error> body.
func parseAnime(body []byte) (*Anime, error) {
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("<error")) || bytes.Contains(body, []byte("<error>")) {
		if bytes.Contains(bytes.ToLower(body), []byte("banned")) {
			return nil, ErrBanned
		}
		return nil, ErrNotFound
	}

	var doc animeXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode anime: %w", err)
	}
	anime := doc.toAnime()
	if anime.Title == "" {
		return nil, ErrNotFound
	}
	return anime, nil
}
