package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	tmdb "github.com/ryanbradynd05/go-tmdb"

	"github.com/vmunix/mediarr/pkg/release"
)

const (
	defaultCacheTTL = time.Hour
	defaultLanguage = "en-US"
	castLimit       = 20
)

// ErrNotFound is returned when nothing on TMDB matches a lookup.
var ErrNotFound = errors.New("not found on TMDB")

// api is the subset of *tmdb.TMDb the client calls.
type api interface {
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvCredits(id int, options map[string]string) (*tmdb.TvCredits, error)
	GetMovieCredits(id int, options map[string]string) (*tmdb.MovieCredits, error)
	GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

// Client is a TMDB API client.
type Client struct {
	api      api
	language string
	cache    *responseCache
	attempts uint
	pace     func(context.Context) error
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithLanguage sets the metadata language, e.g. "en-US".
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithAttempts sets how many times a failed call is tried.
func WithAttempts(n uint) Option {
	return func(c *Client) {
		c.attempts = max(n, 1)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// WithPacer installs wait, which runs before every TMDB request, retries
// included. Cache hits do not wait.
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

// withAPI replaces the underlying go-tmdb client (for testing).
func withAPI(a api) Option {
	return func(c *Client) {
		c.api = a
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		api:      tmdb.Init(tmdb.Config{APIKey: apiKey, Proxies: nil, UseProxy: false}),
		language: defaultLanguage,
		cache:    newCache(defaultCacheTTL),
		attempts: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchSeries finds the first TV result whose name or original name
// matches name and returns its full details.
func (c *Client) SearchSeries(ctx context.Context, name string, year int) (*Series, error) {
	key := cacheKey("search-tv", strings.ToLower(name), year)
	if id, ok := lookup[int](c.cache, key); ok {
		return c.Series(ctx, id)
	}

	start := time.Now()
	opts := c.options()
	if year > 0 {
		opts["first_air_date_year"] = strconv.Itoa(year)
	}
	results, err := call(ctx, c, func() (*tmdb.TvSearchResults, error) {
		return c.api.SearchTv(name, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("search tv %q: %w", name, err)
	}

	id := 0
	for _, r := range results.Results {
		if release.TitleMatch(name, r.Name) || (r.OriginalName != "" && release.TitleMatch(name, r.OriginalName)) {
			id = r.ID
			break
		}
	}
	if c.log != nil {
		c.log.Debug("search completed",
			"kind", "tv",
			"query", name,
			"results", len(results.Results),
			"matched", id,
			"duration_ms", time.Since(start).Milliseconds())
	}
	if id == 0 {
		return nil, ErrNotFound
	}

	c.cache.set(key, id)
	return c.Series(ctx, id)
}

// SearchMovie finds a movie whose title or original title matches title,
// preferring one released in year.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) (*Movie, error) {
	key := cacheKey("search-movie", strings.ToLower(title), year)
	if id, ok := lookup[int](c.cache, key); ok {
		return c.Movie(ctx, id)
	}

	start := time.Now()
	opts := c.options()
	if year > 0 {
		opts["year"] = strconv.Itoa(year)
	}
	results, err := call(ctx, c, func() (*tmdb.MovieSearchResults, error) {
		return c.api.SearchMovie(title, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("search movie %q: %w", title, err)
	}

	matches := func(r tmdb.MovieShort) bool {
		return release.TitleMatch(title, r.Title) || (r.OriginalTitle != "" && release.TitleMatch(title, r.OriginalTitle))
	}
	id := 0
	if year > 0 {
		for _, r := range results.Results {
			if matches(r) && yearOf(r.ReleaseDate) == year {
				id = r.ID
				break
			}
		}
	}
	if id == 0 {
		for _, r := range results.Results {
			if matches(r) {
				id = r.ID
				break
			}
		}
	}
	if c.log != nil {
		c.log.Debug("search completed",
			"kind", "movie",
			"query", title,
			"results", len(results.Results),
			"matched", id,
			"duration_ms", time.Since(start).Milliseconds())
	}
	if id == 0 {
		return nil, ErrNotFound
	}

	c.cache.set(key, id)
	return c.Movie(ctx, id)
}

// Series fetches TV series details with external IDs and the top credits.
func (c *Client) Series(ctx context.Context, id int) (*Series, error) {
	key := cacheKey("tv", id)
	if s, ok := lookup[*Series](c.cache, key); ok {
		return s, nil
	}

	opts := c.options()
	opts["append_to_response"] = "external_ids"
	show, err := call(ctx, c, func() (*tmdb.TV, error) {
		return c.api.GetTvInfo(id, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("get tv %d: %w", id, err)
	}

	s := &Series{
		ID:           show.ID,
		Name:         show.Name,
		OriginalName: show.OriginalName,
		Overview:     show.Overview,
		FirstAirDate: show.FirstAirDate,
		PosterPath:   show.PosterPath,
		BackdropPath: show.BackdropPath,
		VoteAverage:  float64(show.VoteAverage),
	}
	if show.ExternalIDs != nil {
		s.IMDBID = show.ExternalIDs.ImdbID
	}
	if len(show.EpisodeRunTime) > 0 {
		s.RuntimeMinutes = show.EpisodeRunTime[0]
	}
	for _, g := range show.Genres {
		s.Genres = append(s.Genres, g.Name)
	}
	for _, n := range show.Networks {
		s.Networks = append(s.Networks, n.Name)
	}

	// Credits are optional; a series without them is still usable.
	credits, err := call(ctx, c, func() (*tmdb.TvCredits, error) {
		return c.api.GetTvCredits(id, c.options())
	})
	if err == nil {
		s.Cast = tvCast(credits)
	} else if c.log != nil {
		c.log.Debug("tv credits unavailable", "tmdb_id", id, "error", err)
	}

	c.cache.set(key, s)
	return s, nil
}

// Movie fetches movie details with the top credits.
func (c *Client) Movie(ctx context.Context, id int) (*Movie, error) {
	key := cacheKey("movie", id)
	if m, ok := lookup[*Movie](c.cache, key); ok {
		return m, nil
	}

	movie, err := call(ctx, c, func() (*tmdb.Movie, error) {
		return c.api.GetMovieInfo(id, c.options())
	})
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}

	m := &Movie{
		ID:             movie.ID,
		IMDBID:         movie.ImdbID,
		Title:          movie.Title,
		OriginalTitle:  movie.OriginalTitle,
		Overview:       movie.Overview,
		ReleaseDate:    movie.ReleaseDate,
		PosterPath:     movie.PosterPath,
		BackdropPath:   movie.BackdropPath,
		VoteAverage:    float64(movie.VoteAverage),
		RuntimeMinutes: int(movie.Runtime),
	}
	for _, g := range movie.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	for _, pc := range movie.ProductionCompanies {
		m.Studios = append(m.Studios, pc.Name)
	}

	credits, err := call(ctx, c, func() (*tmdb.MovieCredits, error) {
		return c.api.GetMovieCredits(id, c.options())
	})
	if err == nil {
		m.Cast = movieCast(credits)
	} else if c.log != nil {
		c.log.Debug("movie credits unavailable", "tmdb_id", id, "error", err)
	}

	c.cache.set(key, m)
	return m, nil
}

// Episode fetches one episode of a series.
func (c *Client) Episode(ctx context.Context, showID, season, episode int) (*Episode, error) {
	key := cacheKey("episode", showID, season, episode)
	if e, ok := lookup[*Episode](c.cache, key); ok {
		return e, nil
	}

	ep, err := call(ctx, c, func() (*tmdb.TvEpisode, error) {
		return c.api.GetTvEpisodeInfo(showID, season, episode, c.options())
	})
	if err != nil {
		return nil, fmt.Errorf("get episode %d S%02dE%02d: %w", showID, season, episode, err)
	}

	e := &Episode{
		ID:            ep.ID,
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		Name:          ep.Name,
		Overview:      ep.Overview,
		AirDate:       ep.AirDate,
		VoteAverage:   float64(ep.VoteAverage),
		StillPath:     ep.StillPath,
	}
	c.cache.set(key, e)
	return e, nil
}

func (c *Client) options() map[string]string {
	return map[string]string{"language": c.language}
}

// call runs a blocking go-tmdb request so that ctx cancellation returns
// promptly, retrying failures other than not-found. Each attempt waits on
// the pacer first. A nil result is reported as ErrNotFound.
func call[T any](ctx context.Context, c *Client, fn func() (*T, error)) (*T, error) {
	return retry.DoWithData(
		func() (*T, error) {
			if err := ctx.Err(); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			if c.pace != nil {
				if err := c.pace(ctx); err != nil {
					return nil, retry.Unrecoverable(err)
				}
			}
			type result struct {
				v   *T
				err error
			}
			done := make(chan result, 1)
			go func() {
				v, err := fn()
				done <- result{v, err}
			}()

			select {
			case <-ctx.Done():
				return nil, retry.Unrecoverable(ctx.Err())
			case r := <-done:
				if r.err != nil {
					if isNotFound(r.err) {
						return nil, retry.Unrecoverable(ErrNotFound)
					}
					return nil, r.err
				}
				if r.v == nil {
					return nil, retry.Unrecoverable(ErrNotFound)
				}
				return r.v, nil
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// isNotFound recognises TMDB's "resource could not be found" response,
// which go-tmdb surfaces only as error text.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not be found") || strings.Contains(msg, "404")
}

func tvCast(credits *tmdb.TvCredits) []CastMember {
	var out []CastMember
	for _, p := range credits.Cast {
		if len(out) == castLimit {
			return out
		}
		out = append(out, CastMember{PersonID: p.ID, Name: p.Name, Character: p.Character, Role: "Actor", ProfilePath: p.ProfilePath})
	}
	for _, p := range credits.Crew {
		if len(out) == castLimit {
			break
		}
		if keyCrewJob(p.Job) {
			out = append(out, CastMember{PersonID: p.ID, Name: p.Name, Role: p.Job, ProfilePath: p.ProfilePath})
		}
	}
	return out
}

func movieCast(credits *tmdb.MovieCredits) []CastMember {
	var out []CastMember
	for _, p := range credits.Cast {
		if len(out) == castLimit {
			return out
		}
		out = append(out, CastMember{PersonID: p.ID, Name: p.Name, Character: p.Character, Role: "Actor", ProfilePath: p.ProfilePath})
	}
	for _, p := range credits.Crew {
		if len(out) == castLimit {
			break
		}
		if keyCrewJob(p.Job) {
			out = append(out, CastMember{PersonID: p.ID, Name: p.Name, Role: p.Job, ProfilePath: p.ProfilePath})
		}
	}
	return out
}

func keyCrewJob(job string) bool {
	switch job {
	case "Director", "Writer", "Screenplay":
		return true
	}
	return false
}
