package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/mediarr/internal/catalog"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/release"
)

// DefaultProviderTimeout bounds each remote provider call.
const DefaultProviderTimeout = 30 * time.Second

// ErrNoMatch is returned by Resolve when every tier of the chain came up empty.
var ErrNoMatch = errors.New("no metadata match")

// Sources are the providers a Resolver draws on. Catalog and TMDB may be
// nil, which removes their tiers from every chain.
type Sources struct {
	AniList AniListSource
	Jikan   JikanSource
	AniDB   AniDBSource
	TMDB    TMDBSource
	Catalog CatalogSource
}

// Resolver picks metadata for a name by walking the chain for its class.
type Resolver struct {
	src     Sources
	cache   *Cache
	timeout time.Duration
	gates   map[Provider]*Gate
	chains  map[release.Class][]Strategy
	custom  map[release.Class][]Strategy
	log     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache routes AniList, Jikan, and AniDB lookups through c.
func WithCache(c *Cache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

// WithProviderTimeout sets the per-call timeout.
func WithProviderTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithGateInterval overrides the request spacing for one provider.
func WithGateInterval(p Provider, interval time.Duration) ResolverOption {
	return func(r *Resolver) { r.gates[p] = NewGate(interval) }
}

// WithStrategies replaces the chain for class.
func WithStrategies(class release.Class, strategies ...Strategy) ResolverOption {
	return func(r *Resolver) { r.custom[class] = strategies }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l.With("component", "metadata") }
}

// NewResolver builds a resolver and its provider chains.
func NewResolver(src Sources, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		src:     src,
		timeout: DefaultProviderTimeout,
		gates: map[Provider]*Gate{
			ProviderAniList: NewGate(AniListInterval),
			ProviderJikan:   NewGate(JikanInterval),
			ProviderAniDB:   NewGate(AniDBInterval),
			ProviderTMDB:    NewGate(TMDBInterval),
		},
		custom: map[release.Class][]Strategy{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.src.AniList = pace(r.src.AniList, r.gates[ProviderAniList], func(s AniListSource, g *Gate) AniListSource {
		return &gatedAniList{next: s, gate: g}
	})
	r.src.Jikan = pace(r.src.Jikan, r.gates[ProviderJikan], func(s JikanSource, g *Gate) JikanSource {
		return &gatedJikan{next: s, gate: g}
	})
	r.src.AniDB = pace(r.src.AniDB, r.gates[ProviderAniDB], func(s AniDBSource, g *Gate) AniDBSource {
		return &gatedAniDB{next: s, gate: g}
	})
	r.src.TMDB = pace(r.src.TMDB, r.gates[ProviderTMDB], func(s TMDBSource, g *Gate) TMDBSource {
		return &gatedTMDB{next: s, gate: g}
	})

	if r.cache != nil {
		if r.src.AniList != nil {
			r.src.AniList = &cachedAniList{next: r.src.AniList, cache: r.cache, log: r.log}
		}
		if r.src.Jikan != nil {
			r.src.Jikan = &cachedJikan{next: r.src.Jikan, cache: r.cache, log: r.log}
		}
		if r.src.AniDB != nil {
			r.src.AniDB = &cachedAniDB{next: r.src.AniDB, cache: r.cache, log: r.log}
		}
	}

	r.chains = r.buildChains()
	for class, strategies := range r.custom {
		r.chains[class] = strategies
	}
	return r
}

func (r *Resolver) buildChains() map[release.Class][]Strategy {
	var anime []Strategy
	if r.src.Catalog != nil {
		anime = append(anime, &CatalogStrategy{
			catalog: r.src.Catalog,
			anilist: r.src.AniList,
			anidb:   r.src.AniDB,
			jikan:   r.src.Jikan,
			timeout: r.timeout,
			log:     r.log,
		})
	}
	jikanSearch := JikanSearchStrategy{source: r.src.Jikan, timeout: r.timeout}
	anime = append(anime,
		&AniListSearchStrategy{source: r.src.AniList, timeout: r.timeout},
		&jikanSearch,
	)

	series := append([]Strategy(nil), anime...)
	var movie []Strategy
	if r.src.TMDB != nil {
		series = append(series, &TMDBSeriesStrategy{source: r.src.TMDB, timeout: r.timeout})
		movie = append(movie, &TMDBMovieStrategy{source: r.src.TMDB, timeout: r.timeout})
	}
	movie = append(movie, &JikanMovieStrategy{JikanSearchStrategy: jikanSearch})

	return map[release.Class][]Strategy{
		release.ClassAnime:  anime,
		release.ClassSeries: series,
		release.ClassMovie:  movie,
	}
}

// Chain returns the strategy names tried for class, in order.
func (r *Resolver) Chain(class release.Class) []string {
	names := make([]string, 0, len(r.chains[class]))
	for _, s := range r.chains[class] {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the first record any tier of the class's chain produces.
// Tier failures are logged and treated as no match. The result is
// backfilled with catalog cross-references before it is returned.
func (r *Resolver) Resolve(ctx context.Context, name string, year int, class release.Class) (*Record, error) {
	for _, s := range r.chains[class] {
		start := time.Now()
		rec, err := s.Try(ctx, name, year)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if r.log != nil {
				r.log.Warn("metadata tier failed", "strategy", s.Name(), "name", name, "year", year, "error", err)
			}
			continue
		}
		if rec == nil {
			if r.log != nil {
				r.log.Debug("metadata tier missed", "strategy", s.Name(), "name", name, "year", year,
					"duration_ms", time.Since(start).Milliseconds())
			}
			continue
		}

		r.Backfill(ctx, rec)
		if r.log != nil {
			r.log.Info("metadata resolved", "strategy", s.Name(), "name", name, "year", year,
				"title", rec.Name, "provider", rec.Provider.String(),
				"duration_ms", time.Since(start).Milliseconds())
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%s %q: %w", class, name, ErrNoMatch)
}

// Backfill fills missing anime IDs on rec from the catalog entry linked to
// any ID it already has. Known IDs are never overwritten.
func (r *Resolver) Backfill(ctx context.Context, rec *Record) {
	if r.src.Catalog == nil || rec == nil {
		return
	}
	lookups := []struct {
		id   int64
		find func(context.Context, int64) (*catalog.Entry, error)
	}{
		{rec.AniListID, r.src.Catalog.FindByAniListID},
		{rec.MALID, r.src.Catalog.FindByMALID},
		{rec.AniDBID, r.src.Catalog.FindByAniDBID},
	}
	for _, l := range lookups {
		if l.id == 0 {
			continue
		}
		entry, err := l.find(ctx, l.id)
		if err != nil {
			if r.log != nil {
				r.log.Debug("catalog backfill failed", "id", l.id, "error", err)
			}
			return
		}
		if entry == nil {
			continue
		}
		ids := entry.ProviderIDs()
		rec.fillIDs(ids.AniList, ids.AniDB, ids.MAL, ids.Kitsu)
		return
	}
}

// Episode fetches episode metadata from TMDB. It returns nil without error
// when TMDB is not configured, the series has no TMDB ID, or TMDB has no
// such episode.
func (r *Resolver) Episode(ctx context.Context, series *Record, season, episode int) (*EpisodeRecord, error) {
	if r.src.TMDB == nil || series == nil || series.TMDBID == 0 {
		return nil, nil
	}
	e, err := bounded(ctx, r.timeout, func(ctx context.Context) (*tmdb.Episode, error) {
		return r.src.TMDB.Episode(ctx, int(series.TMDBID), season, episode)
	})
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("episode s%02de%02d: %w", season, episode, err)
	}
	return fromTMDBEpisode(e), nil
}

// Preload loads the catalog ahead of a scan.
func (r *Resolver) Preload(ctx context.Context) error {
	if r.src.Catalog == nil {
		return nil
	}
	return r.src.Catalog.EnsureLoaded(ctx)
}

// UnloadCatalog releases the catalog's memory. The next lookup reloads it.
func (r *Resolver) UnloadCatalog() {
	if r.src.Catalog != nil {
		r.src.Catalog.Unload()
	}
}

// CatalogEnabled reports whether the offline catalog tier is active.
func (r *Resolver) CatalogEnabled() bool {
	return r.src.Catalog != nil
}
