package metadata

import (
	"context"

	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

// pacedSource is implemented by the provider clients, which wait on a
// pacer before each HTTP request they send.
type pacedSource interface {
	SetPacer(wait func(context.Context) error)
}

// pace attaches g to src. Clients get it as their per-request pacer;
// any other source is wrapped so that each call waits its turn.
func pace[S any](src S, g *Gate, wrap func(S, *Gate) S) S {
	switch p := any(src).(type) {
	case nil:
		return src
	case pacedSource:
		p.SetPacer(g.AwaitTurn)
		return src
	}
	return wrap(src, g)
}

type gatedAniList struct {
	next AniListSource
	gate *Gate
}

func (s *gatedAniList) BestMatch(ctx context.Context, title string, year int) (*anilist.Media, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.BestMatch(ctx, title, year)
}

func (s *gatedAniList) Get(ctx context.Context, id int64) (*anilist.Media, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, id)
}

type gatedJikan struct {
	next JikanSource
	gate *Gate
}

func (s *gatedJikan) BestMatch(ctx context.Context, query string, year int) (*jikan.Anime, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.BestMatch(ctx, query, year)
}

func (s *gatedJikan) Get(ctx context.Context, malID int64) (*jikan.Anime, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, malID)
}

type gatedAniDB struct {
	next AniDBSource
	gate *Gate
}

func (s *gatedAniDB) Get(ctx context.Context, aid int64) (*anidb.Anime, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, aid)
}

type gatedTMDB struct {
	next TMDBSource
	gate *Gate
}

func (s *gatedTMDB) SearchSeries(ctx context.Context, name string, year int) (*tmdb.Series, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.SearchSeries(ctx, name, year)
}

func (s *gatedTMDB) SearchMovie(ctx context.Context, title string, year int) (*tmdb.Movie, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.SearchMovie(ctx, title, year)
}

func (s *gatedTMDB) Episode(ctx context.Context, showID, season, episode int) (*tmdb.Episode, error) {
	if err := s.gate.AwaitTurn(ctx); err != nil {
		return nil, err
	}
	return s.next.Episode(ctx, showID, season, episode)
}
