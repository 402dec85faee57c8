package metadata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vmunix/mediarr/internal/catalog"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

// Catalog acceptance thresholds.
const (
	CatalogMinScore    = catalog.MinScore
	CatalogMaxYearDiff = 5
)

// bounded runs one provider lookup under the call timeout. Pacing happens
// below, per request, so a cached answer never waits on a gate.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (*T, error)) (*T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// CatalogStrategy matches against the offline catalog, then fetches full
// details through the provider IDs the entry links to.
type CatalogStrategy struct {
	catalog CatalogSource
	anilist AniListSource
	anidb   AniDBSource
	jikan   JikanSource

	timeout time.Duration
	log     *slog.Logger
}

func (s *CatalogStrategy) Name() string { return "catalog" }

func (s *CatalogStrategy) Try(ctx context.Context, name string, year int) (*Record, error) {
	match, err := s.catalog.BestMatch(ctx, name, year, CatalogMaxYearDiff)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	ids := match.Entry.ProviderIDs()
	if s.log != nil {
		s.log.Debug("catalog match", "name", name, "title", match.Entry.Title, "score", match.Score,
			"anilist_id", ids.AniList, "anidb_id", ids.AniDB, "mal_id", ids.MAL)
	}

	if ids.AniList != 0 {
		m, err := bounded(ctx, s.timeout, func(ctx context.Context) (*anilist.Media, error) {
			return s.anilist.Get(ctx, ids.AniList)
		})
		if err == nil {
			r := fromAniList(m)
			r.fillIDs(ids.AniList, ids.AniDB, ids.MAL, ids.Kitsu)
			return r, nil
		}
		s.followupFailed(ctx, "anilist", ids.AniList, err)
	}

	if ids.AniDB != 0 {
		a, err := bounded(ctx, s.timeout, func(ctx context.Context) (*anidb.Anime, error) {
			return s.anidb.Get(ctx, ids.AniDB)
		})
		if err == nil {
			r := fromAniDB(a)
			r.fillIDs(ids.AniList, ids.AniDB, ids.MAL, ids.Kitsu)
			return r, nil
		}
		s.followupFailed(ctx, "anidb", ids.AniDB, err)
	}

	if ids.MAL != 0 {
		a, err := bounded(ctx, s.timeout, func(ctx context.Context) (*jikan.Anime, error) {
			return s.jikan.Get(ctx, ids.MAL)
		})
		if err == nil {
			r := fromJikan(a)
			r.fillIDs(ids.AniList, ids.AniDB, ids.MAL, ids.Kitsu)
			return r, nil
		}
		s.followupFailed(ctx, "jikan", ids.MAL, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *CatalogStrategy) followupFailed(ctx context.Context, provider string, id int64, err error) {
	if s.log == nil || ctx.Err() != nil {
		return
	}
	s.log.Debug("catalog follow-up failed", "provider", provider, "id", id, "error", err)
}

// AniListSearchStrategy searches AniList by title.
type AniListSearchStrategy struct {
	source  AniListSource
	timeout time.Duration
}

func (s *AniListSearchStrategy) Name() string { return "anilist" }

func (s *AniListSearchStrategy) Try(ctx context.Context, name string, year int) (*Record, error) {
	m, err := bounded(ctx, s.timeout, func(ctx context.Context) (*anilist.Media, error) {
		return s.source.BestMatch(ctx, name, year)
	})
	if errors.Is(err, anilist.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromAniList(m), nil
}

// JikanSearchStrategy searches MyAnimeList through Jikan.
type JikanSearchStrategy struct {
	source  JikanSource
	timeout time.Duration
}

func (s *JikanSearchStrategy) Name() string { return "jikan" }

func (s *JikanSearchStrategy) Try(ctx context.Context, name string, year int) (*Record, error) {
	a, err := bounded(ctx, s.timeout, func(ctx context.Context) (*jikan.Anime, error) {
		return s.source.BestMatch(ctx, name, year)
	})
	if errors.Is(err, jikan.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromJikan(a), nil
}

// JikanMovieStrategy is the anime-movie fallback for movie libraries.
type JikanMovieStrategy struct {
	JikanSearchStrategy
}

func (s *JikanMovieStrategy) Name() string { return "jikan-movie" }

// TMDBSeriesStrategy searches TMDB TV.
type TMDBSeriesStrategy struct {
	source  TMDBSource
	timeout time.Duration
}

func (s *TMDBSeriesStrategy) Name() string { return "tmdb-series" }

func (s *TMDBSeriesStrategy) Try(ctx context.Context, name string, year int) (*Record, error) {
	series, err := bounded(ctx, s.timeout, func(ctx context.Context) (*tmdb.Series, error) {
		return s.source.SearchSeries(ctx, name, year)
	})
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromTMDBSeries(series), nil
}

// TMDBMovieStrategy searches TMDB movies.
type TMDBMovieStrategy struct {
	source  TMDBSource
	timeout time.Duration
}

func (s *TMDBMovieStrategy) Name() string { return "tmdb-movie" }

func (s *TMDBMovieStrategy) Try(ctx context.Context, name string, year int) (*Record, error) {
	m, err := bounded(ctx, s.timeout, func(ctx context.Context) (*tmdb.Movie, error) {
		return s.source.SearchMovie(ctx, name, year)
	})
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromTMDBMovie(m), nil
}
