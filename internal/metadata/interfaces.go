package metadata

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/vmunix/mediarr/internal/catalog"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

// Strategy is one tier of a resolution chain. Try returns a nil record
// when the tier has no acceptable match.
type Strategy interface {
	Name() string
	Try(ctx context.Context, name string, year int) (*Record, error)
}

// AniListSource is satisfied by *anilist.Client.
type AniListSource interface {
	BestMatch(ctx context.Context, title string, year int) (*anilist.Media, error)
	Get(ctx context.Context, id int64) (*anilist.Media, error)
}

// JikanSource is satisfied by *jikan.Client.
type JikanSource interface {
	BestMatch(ctx context.Context, query string, year int) (*jikan.Anime, error)
	Get(ctx context.Context, malID int64) (*jikan.Anime, error)
}

// AniDBSource is satisfied by *anidb.Client.
type AniDBSource interface {
	Get(ctx context.Context, aid int64) (*anidb.Anime, error)
}

// TMDBSource is satisfied by *tmdb.Client.
type TMDBSource interface {
	SearchSeries(ctx context.Context, name string, year int) (*tmdb.Series, error)
	SearchMovie(ctx context.Context, title string, year int) (*tmdb.Movie, error)
	Episode(ctx context.Context, showID, season, episode int) (*tmdb.Episode, error)
}

// CatalogSource is satisfied by *catalog.DB.
type CatalogSource interface {
	EnsureLoaded(ctx context.Context) error
	Unload()
	BestMatch(ctx context.Context, query string, year, maxYearDiff int) (*catalog.Match, error)
	FindByAniListID(ctx context.Context, id int64) (*catalog.Entry, error)
	FindByAniDBID(ctx context.Context, id int64) (*catalog.Entry, error)
	FindByMALID(ctx context.Context, id int64) (*catalog.Entry, error)
}
