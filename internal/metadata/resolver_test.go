package metadata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediarr/internal/catalog"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/metadata/mocks"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
	"github.com/vmunix/mediarr/pkg/release"
)

type sources struct {
	anilist *mocks.MockAniListSource
	jikan   *mocks.MockJikanSource
	anidb   *mocks.MockAniDBSource
	tmdb    *mocks.MockTMDBSource
	catalog *mocks.MockCatalogSource
}

func newSources(t *testing.T) *sources {
	ctrl := gomock.NewController(t)
	return &sources{
		anilist: mocks.NewMockAniListSource(ctrl),
		jikan:   mocks.NewMockJikanSource(ctrl),
		anidb:   mocks.NewMockAniDBSource(ctrl),
		tmdb:    mocks.NewMockTMDBSource(ctrl),
		catalog: mocks.NewMockCatalogSource(ctrl),
	}
}

// resolver builds a resolver over every mocked source with gates disabled.
func (s *sources) resolver(opts ...metadata.ResolverOption) *metadata.Resolver {
	opts = append([]metadata.ResolverOption{
		metadata.WithGateInterval(metadata.ProviderAniList, 0),
		metadata.WithGateInterval(metadata.ProviderJikan, 0),
		metadata.WithGateInterval(metadata.ProviderAniDB, 0),
		metadata.WithGateInterval(metadata.ProviderTMDB, 0),
	}, opts...)
	return metadata.NewResolver(metadata.Sources{
		AniList: s.anilist,
		Jikan:   s.jikan,
		AniDB:   s.anidb,
		TMDB:    s.tmdb,
		Catalog: s.catalog,
	}, opts...)
}

func frierenEntry() *catalog.Entry {
	return &catalog.Entry{
		Title: "Sousou no Frieren",
		Sources: []string{
			"https://anidb.net/anime/17617",
			"https://anilist.co/anime/154587",
			"https://kitsu.app/anime/46474",
			"https://myanimelist.net/anime/52991",
		},
		Season: &catalog.Season{Season: "FALL", Year: 2023},
	}
}

func frierenMedia() *anilist.Media {
	return &anilist.Media{
		ID:          154587,
		IDMal:       52991,
		Title:       anilist.Title{Romaji: "Sousou no Frieren", English: "Frieren: Beyond Journey's End", Native: "葬送のフリーレン"},
		Description: "The adventure is over but life goes on.",
		SeasonYear:  2023,
		CoverImage:  anilist.CoverImage{ExtraLarge: "https://img.anili.st/frieren.jpg"},
	}
}

func TestResolver_Chains(t *testing.T) {
	src := newSources(t)

	full := src.resolver()
	assert.Equal(t, []string{"catalog", "anilist", "jikan"}, full.Chain(release.ClassAnime))
	assert.Equal(t, []string{"catalog", "anilist", "jikan", "tmdb-series"}, full.Chain(release.ClassSeries))
	assert.Equal(t, []string{"tmdb-movie", "jikan-movie"}, full.Chain(release.ClassMovie))

	bare := metadata.NewResolver(metadata.Sources{AniList: src.anilist, Jikan: src.jikan, AniDB: src.anidb})
	assert.Equal(t, []string{"anilist", "jikan"}, bare.Chain(release.ClassAnime))
	assert.Equal(t, []string{"anilist", "jikan"}, bare.Chain(release.ClassSeries))
	assert.Equal(t, []string{"jikan-movie"}, bare.Chain(release.ClassMovie))
	assert.False(t, bare.CatalogEnabled())
}

func TestResolver_CatalogFollowsAniList(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().BestMatch(gomock.Any(), "Frieren", 2023, metadata.CatalogMaxYearDiff).
		Return(&catalog.Match{Entry: *frierenEntry(), Score: 92}, nil)
	src.anilist.EXPECT().Get(gomock.Any(), int64(154587)).Return(frierenMedia(), nil)
	src.catalog.EXPECT().FindByAniListID(gomock.Any(), int64(154587)).Return(frierenEntry(), nil)

	rec, err := src.resolver().Resolve(context.Background(), "Frieren", 2023, release.ClassAnime)
	require.NoError(t, err)

	assert.Equal(t, metadata.ProviderAniList, rec.Provider)
	assert.Equal(t, "Frieren: Beyond Journey's End", rec.Name)
	assert.Equal(t, "葬送のフリーレン", rec.OriginalName)
	assert.Equal(t, int64(154587), rec.AniListID)
	assert.Equal(t, int64(17617), rec.AniDBID)
	assert.Equal(t, int64(52991), rec.MALID)
	assert.Equal(t, int64(46474), rec.KitsuID)
	assert.Equal(t, 2023, rec.Year)
}

func TestResolver_CatalogFallsBackToAniDB(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().BestMatch(gomock.Any(), "Frieren", 0, metadata.CatalogMaxYearDiff).
		Return(&catalog.Match{Entry: *frierenEntry(), Score: 88}, nil)
	src.anilist.EXPECT().Get(gomock.Any(), int64(154587)).Return(nil, anilist.ErrUnavailable)
	src.anidb.EXPECT().Get(gomock.Any(), int64(17617)).Return(&anidb.Anime{
		ID: 17617, Title: "Sousou no Frieren", TitleKanji: "葬送のフリーレン", StartDate: "2023-09-29",
	}, nil)
	src.catalog.EXPECT().FindByAniListID(gomock.Any(), int64(154587)).Return(frierenEntry(), nil)

	rec, err := src.resolver().Resolve(context.Background(), "Frieren", 0, release.ClassAnime)
	require.NoError(t, err)

	assert.Equal(t, metadata.ProviderAniDB, rec.Provider)
	assert.Equal(t, "Sousou no Frieren", rec.Name)
	assert.Equal(t, int64(154587), rec.AniListID, "sibling IDs come from the catalog entry")
	assert.Equal(t, int64(52991), rec.MALID)
	assert.Equal(t, 2023, rec.Year)
}

func TestResolver_CatalogFollowUpsExhausted(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().BestMatch(gomock.Any(), "Frieren", 0, gomock.Any()).
		Return(&catalog.Match{Entry: *frierenEntry(), Score: 88}, nil)
	src.anilist.EXPECT().Get(gomock.Any(), int64(154587)).Return(nil, anilist.ErrNotFound)
	src.anidb.EXPECT().Get(gomock.Any(), int64(17617)).Return(nil, anidb.ErrBanned)
	src.jikan.EXPECT().Get(gomock.Any(), int64(52991)).Return(nil, jikan.ErrRateLimited)

	// The chain continues with the AniList search tier.
	src.anilist.EXPECT().BestMatch(gomock.Any(), "Frieren", 0).Return(frierenMedia(), nil)
	src.catalog.EXPECT().FindByAniListID(gomock.Any(), int64(154587)).Return(nil, nil)
	src.catalog.EXPECT().FindByMALID(gomock.Any(), int64(52991)).Return(frierenEntry(), nil)

	rec, err := src.resolver().Resolve(context.Background(), "Frieren", 0, release.ClassAnime)
	require.NoError(t, err)
	assert.Equal(t, metadata.ProviderAniList, rec.Provider)
	assert.Equal(t, int64(17617), rec.AniDBID, "backfilled through the MAL lookup")
}

func TestResolver_SeriesFallsThroughToTMDB(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().BestMatch(gomock.Any(), "Breaking Bad", 2008, gomock.Any()).Return(nil, nil)
	src.anilist.EXPECT().BestMatch(gomock.Any(), "Breaking Bad", 2008).Return(nil, anilist.ErrNotFound)
	src.jikan.EXPECT().BestMatch(gomock.Any(), "Breaking Bad", 2008).Return(nil, errors.New("connection reset"))
	src.tmdb.EXPECT().SearchSeries(gomock.Any(), "Breaking Bad", 2008).Return(&tmdb.Series{
		ID: 1396, IMDBID: "tt0903747", Name: "Breaking Bad", FirstAirDate: "2008-01-20",
		PosterPath: "/bb.jpg", Networks: []string{"AMC"},
		Cast: []tmdb.CastMember{{PersonID: 17419, Name: "Bryan Cranston", Character: "Walter White", Role: "Actor"}},
	}, nil)

	rec, err := src.resolver().Resolve(context.Background(), "Breaking Bad", 2008, release.ClassSeries)
	require.NoError(t, err)

	assert.Equal(t, metadata.ProviderTMDB, rec.Provider)
	assert.Equal(t, int64(1396), rec.TMDBID)
	assert.Equal(t, "tt0903747", rec.IMDBID)
	assert.Equal(t, "AMC", rec.Studio)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/bb.jpg", rec.PosterURL)
	require.Len(t, rec.Cast, 1)
	assert.Equal(t, "tmdb-person-17419", rec.Cast[0].PersonID)
}

func TestResolver_MovieFallsBackToJikan(t *testing.T) {
	src := newSources(t)
	src.tmdb.EXPECT().SearchMovie(gomock.Any(), "Your Name", 2016).Return(nil, tmdb.ErrNotFound)
	src.jikan.EXPECT().BestMatch(gomock.Any(), "Your Name", 2016).Return(&jikan.Anime{
		MalID: 32281, Title: "Kimi no Na wa.", TitleJapanese: "君の名は。", Type: "Movie", Year: 2016, Score: 8.8,
	}, nil)
	src.catalog.EXPECT().FindByMALID(gomock.Any(), int64(32281)).Return(nil, nil)

	rec, err := src.resolver().Resolve(context.Background(), "Your Name", 2016, release.ClassMovie)
	require.NoError(t, err)
	assert.Equal(t, metadata.ProviderJikan, rec.Provider)
	assert.Equal(t, "Jikan/MAL", rec.Provider.String())
	assert.Equal(t, "君の名は。", rec.OriginalName)
	assert.InDelta(t, 8.8, rec.CommunityRating, 0.001)
}

func TestResolver_NoMatch(t *testing.T) {
	src := newSources(t)
	ctrl := gomock.NewController(t)
	first := mocks.NewMockStrategy(ctrl)
	second := mocks.NewMockStrategy(ctrl)
	first.EXPECT().Name().Return("first").AnyTimes()
	second.EXPECT().Name().Return("second").AnyTimes()
	first.EXPECT().Try(gomock.Any(), "Nothing", 0).Return(nil, errors.New("status 503"))
	second.EXPECT().Try(gomock.Any(), "Nothing", 0).Return(nil, nil)

	r := src.resolver(metadata.WithStrategies(release.ClassSeries, first, second))
	assert.Equal(t, []string{"first", "second"}, r.Chain(release.ClassSeries))

	_, err := r.Resolve(context.Background(), "Nothing", 0, release.ClassSeries)
	assert.ErrorIs(t, err, metadata.ErrNoMatch)
}

func TestResolver_StopsWhenCancelled(t *testing.T) {
	src := newSources(t)
	ctrl := gomock.NewController(t)
	first := mocks.NewMockStrategy(ctrl)
	second := mocks.NewMockStrategy(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	first.EXPECT().Try(gomock.Any(), "Frieren", 0).DoAndReturn(
		func(context.Context, string, int) (*metadata.Record, error) {
			cancel()
			return nil, context.Canceled
		})
	// second must never be tried.

	r := src.resolver(metadata.WithStrategies(release.ClassAnime, first, second))
	_, err := r.Resolve(ctx, "Frieren", 0, release.ClassAnime)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_BackfillKeepsKnownIDs(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().FindByAniListID(gomock.Any(), int64(154587)).Return(frierenEntry(), nil)

	rec := &metadata.Record{AniListID: 154587, MALID: 1}
	src.resolver().Backfill(context.Background(), rec)

	assert.Equal(t, int64(1), rec.MALID)
	assert.Equal(t, int64(17617), rec.AniDBID)
	assert.Equal(t, int64(46474), rec.KitsuID)
}

func TestResolver_Episode(t *testing.T) {
	src := newSources(t)
	r := src.resolver()
	ctx := context.Background()

	e, err := r.Episode(ctx, &metadata.Record{Name: "Frieren"}, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, e, "no TMDB ID means no episode lookup")

	series := &metadata.Record{TMDBID: 1396}
	src.tmdb.EXPECT().Episode(gomock.Any(), 1396, 1, 1).Return(&tmdb.Episode{
		Name: "Pilot", AirDate: "2008-01-20", VoteAverage: 8.5, StillPath: "/pilot.jpg",
	}, nil)
	src.tmdb.EXPECT().Episode(gomock.Any(), 1396, 9, 9).Return(nil, tmdb.ErrNotFound)
	src.tmdb.EXPECT().Episode(gomock.Any(), 1396, 2, 1).Return(nil, errors.New("timeout"))

	e, err = r.Episode(ctx, series, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pilot", e.Name)
	assert.Equal(t, "2008-01-20", e.PremiereDate)
	assert.Equal(t, "https://image.tmdb.org/t/p/w300/pilot.jpg", e.StillURL)

	e, err = r.Episode(ctx, series, 9, 9)
	require.NoError(t, err)
	assert.Nil(t, e)

	_, err = r.Episode(ctx, series, 2, 1)
	assert.Error(t, err)
}

func TestResolver_PreloadAndUnload(t *testing.T) {
	src := newSources(t)
	src.catalog.EXPECT().EnsureLoaded(gomock.Any()).Return(nil)
	src.catalog.EXPECT().Unload()

	r := src.resolver()
	require.NoError(t, r.Preload(context.Background()))
	r.UnloadCatalog()
	assert.True(t, r.CatalogEnabled())
}
