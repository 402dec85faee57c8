package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
)

func TestScan_ReusesSeriesAcrossFolders(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "Anime", "/media/anime", library.KindEpisodic)
	h.resolver.set("Frieren", frieren())
	h.resolver.set("Sousou no Frieren", frieren())
	h.touch(t,
		"/media/anime/Frieren (2023)/Frieren - S01E01.mkv",
		"/media/anime/Frieren (2023)/Frieren - S01E02.mkv",
		"/media/anime/Sousou no Frieren/[SubsPlease] Sousou no Frieren - 03 [1080p].mkv",
	)

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.SeriesAdded)
	assert.Equal(t, 1, res.SeriesReused)
	assert.Equal(t, 3, res.EpisodesAdded)
	assert.Equal(t, 1, res.EpisodesFromExistingSeries)

	series := h.series(t, lib)
	require.Len(t, series, 1)
	s := series[0]
	assert.Equal(t, "Frieren: Beyond Journey's End", s.Name)
	assert.Equal(t, int64(154587), s.AniListID)
	assert.Equal(t, 2023, s.Year)

	eps := h.episodes(t, s.ID)
	require.Len(t, eps, 3)
	for _, e := range eps {
		require.NotNil(t, e.RuntimeTicks)
		assert.Equal(t, int64(1440*library.TicksPerSecond), *e.RuntimeTicks)
	}

	genres, err := h.store.Genres(s.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Adventure", "Fantasy"}, genres)

	images, err := h.queues.ImageCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, images.Pending, "poster and backdrop queued once each")
	thumbs, err := h.queues.ThumbnailCounts()
	require.NoError(t, err)
	assert.Equal(t, 3, thumbs.Pending)

	assert.Equal(t, 1, h.resolver.unloads)
}

func TestScan_ReusesStoredSeriesByProviderID(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "Anime", "/media/anime", library.KindEpisodic)
	h.resolver.set("Frieren", frieren())
	h.touch(t, "/media/anime/Frieren/Frieren - S01E01.mkv")

	_, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)

	h.resolver.set("Sousou no Frieren", frieren())
	h.touch(t, "/media/anime/Sousou no Frieren/Sousou no Frieren - S01E02.mkv")
	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)

	assert.Equal(t, 0, res.SeriesAdded)
	assert.Equal(t, 2, res.SeriesReused)
	assert.Equal(t, 1, res.EpisodesAdded, "already stored files are skipped")
	require.Len(t, h.series(t, lib), 1)
}

func TestScan_UnmatchedSeries(t *testing.T) {
	h := newHarness(t)
	unmatched := h.bus.Subscribe(events.EventSeriesUnmatched, 4)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.touch(t, "/media/tv/Mystery Show (2019)/Mystery Show S01E01.mkv")

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SeriesAdded)

	series := h.series(t, lib)
	require.Len(t, series, 1)
	assert.Equal(t, "Mystery Show", series[0].Name)
	assert.Equal(t, 2019, series[0].Year)

	records, err := h.store.ListUnmatched(lib.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	u := records[0]
	assert.Equal(t, series[0].ID, u.SeriesID)
	assert.Equal(t, "Mystery Show (2019)", u.FolderName)
	assert.Equal(t, "Mystery Show", u.AttemptedTitle)
	assert.Equal(t, 2019, u.AttemptedYear)
	assert.Equal(t, "No metadata match found", u.FailureReason)
	assert.Equal(t, 1, u.AttemptCount)

	select {
	case e := <-unmatched:
		ev, ok := e.(*events.SeriesUnmatched)
		require.True(t, ok)
		assert.Equal(t, "Mystery Show (2019)", ev.Folder)
		assert.Equal(t, series[0].ID, ev.EntityID())
	default:
		t.Fatal("expected a series.unmatched event")
	}

	images, err := h.queues.ImageCounts()
	require.NoError(t, err)
	assert.Zero(t, images.Pending)
}

func TestScan_SkipsExtrasAndIgnoredFolders(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.touch(t,
		"/media/tv/Show/Show - S01E01.mkv",
		"/media/tv/Show/Show - S01E01.nfo",
		"/media/tv/Show/[Group] Show - NCOP1 [1080p].mkv",
		"/media/tv/Show/random.mkv",
		"/media/tv/Show/Extras/Show - S01E90.mkv",
		"/media/tv/Show/Season 2/.ignore",
		"/media/tv/Show/Season 2/Show - S02E01.mkv",
		"/media/tv/Hidden Show/.ignore",
		"/media/tv/Hidden Show/Hidden Show - S01E01.mkv",
		"/media/tv/Specials/Show - S00E01.mkv",
	)

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SeriesAdded)
	assert.Equal(t, 1, res.EpisodesAdded)

	series := h.series(t, lib)
	require.Len(t, series, 1)
	assert.Equal(t, "Show", series[0].Name)
	eps := h.episodes(t, series[0].ID)
	require.Len(t, eps, 1)
	assert.Equal(t, "/media/tv/Show/Show - S01E01.mkv", eps[0].Path)
	assert.Equal(t, "Episode 1", eps[0].Name)
	assert.Zero(t, h.resolver.callsFor("Hidden Show"))
}

func TestScan_IgnoredRoot(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.touch(t, "/media/tv/.ignore", "/media/tv/Show/Show - S01E01.mkv")

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.Zero(t, res.SeriesAdded)
	assert.Zero(t, res.EpisodesAdded)
}

func TestScan_RootFilesGroupedByShowName(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.touch(t,
		"/media/tv/Loose Show - S01E01.mkv",
		"/media/tv/Loose Show - S01E02.mkv",
	)

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SeriesAdded)
	assert.Equal(t, 2, res.EpisodesAdded)
	assert.Equal(t, 1, h.resolver.callsFor("Loose Show"))
}

func TestScan_MissingRoot(t *testing.T) {
	h := newHarness(t)
	lib := &library.Library{Name: "Gone", Path: "/media/gone", Kind: library.KindEpisodic}
	require.NoError(t, h.store.UpsertLibrary(lib))

	_, err := h.scanner.Scan(context.Background(), lib)
	assert.ErrorContains(t, err, "read library root")
}

func TestScan_FailedProbeLeavesRuntimeUnknown(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	bad := "/media/tv/Show/Show - S01E02.mkv"
	h.prober.fail = map[string]bool{bad: true}
	h.touch(t, "/media/tv/Show/Show - S01E01.mkv", bad)

	_, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)

	series := h.series(t, lib)
	require.Len(t, series, 1)
	for _, e := range h.episodes(t, series[0].ID) {
		if e.Path == bad {
			assert.Nil(t, e.RuntimeTicks)
		} else {
			assert.NotNil(t, e.RuntimeTicks)
		}
	}
}

func TestScan_EpisodeMetadata(t *testing.T) {
	h := newHarness(t, WithEpisodeMetadata(true))
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.resolver.set("Breaking Bad", &metadata.Record{Name: "Breaking Bad", TMDBID: 1396, Provider: metadata.ProviderTMDB})
	h.resolver.episodes[[2]int{1, 1}] = &metadata.EpisodeRecord{Name: "Pilot", Overview: "A chemistry teacher.", PremiereDate: "2008-01-20"}
	h.touch(t,
		"/media/tv/Breaking Bad (2008)/Breaking.Bad.S01E01.720p.mkv",
		"/media/tv/Breaking Bad (2008)/Breaking.Bad.S01E02.720p.mkv",
	)

	_, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)

	series := h.series(t, lib)
	require.Len(t, series, 1)
	byNumber := map[int]*library.Episode{}
	for _, e := range h.episodes(t, series[0].ID) {
		byNumber[e.Number] = e
	}
	require.Len(t, byNumber, 2)
	assert.Equal(t, "Pilot", byNumber[1].Name)
	assert.Equal(t, "A chemistry teacher.", byNumber[1].Overview)
	assert.Equal(t, "Episode 2", byNumber[2].Name)
}

func TestScan_Movies(t *testing.T) {
	h := newHarness(t)
	lib := h.library(t, "Movies", "/media/movies", library.KindMovie)
	h.resolver.set("Arrival", &metadata.Record{
		Name:      "Arrival",
		TMDBID:    329865,
		Overview:  "Linguist meets heptapods.",
		Year:      2016,
		PosterURL: "https://img.example/arrival.jpg",
		Provider:  metadata.ProviderTMDB,
	})
	h.touch(t,
		"/media/movies/Arrival (2016)/Arrival (2016).mkv",
		"/media/movies/Unknown Film.mkv",
		"/media/movies/Arrival (2016)/Sample/arrival-sample.mkv",
	)

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)
	assert.Equal(t, 2, res.MoviesAdded)

	paths, err := h.store.ItemPaths(lib.ID)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	arrival, err := h.store.GetMovie(paths["/media/movies/Arrival (2016)/Arrival (2016).mkv"])
	require.NoError(t, err)
	assert.Equal(t, "Arrival", arrival.Name)
	assert.Equal(t, 2016, arrival.Year)
	assert.Equal(t, int64(329865), arrival.TMDBID)
	require.NotNil(t, arrival.RuntimeTicks)

	unknown, err := h.store.GetMovie(paths["/media/movies/Unknown Film.mkv"])
	require.NoError(t, err)
	assert.Equal(t, "Unknown Film", unknown.Name)
	assert.Zero(t, unknown.TMDBID)

	images, err := h.queues.ImageCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, images.Pending)
	thumbs, err := h.queues.ThumbnailCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, thumbs.Pending)
}

func TestScan_PublishesLifecycleEvents(t *testing.T) {
	h := newHarness(t)
	all := h.bus.SubscribeAll(8)
	lib := h.library(t, "TV", "/media/tv", library.KindEpisodic)
	h.resolver.set("Show", &metadata.Record{Name: "Show", TMDBID: 1})
	h.touch(t, "/media/tv/Show/Show - S01E01.mkv")

	res, err := h.scanner.Scan(context.Background(), lib)
	require.NoError(t, err)

	var got []events.Event
	for len(all) > 0 {
		got = append(got, <-all)
	}
	require.Len(t, got, 2)
	started, ok := got[0].(*events.ScanStarted)
	require.True(t, ok)
	assert.Equal(t, "full", started.Mode)
	assert.Equal(t, res.RunID, started.RunID)

	done, ok := got[1].(*events.ScanCompleted)
	require.True(t, ok)
	assert.Equal(t, res.RunID, done.RunID)
	assert.Equal(t, 1, done.SeriesAdded)
	assert.Equal(t, 1, done.EpisodesAdded)
	assert.Empty(t, done.Error)
}

func TestIsExtraFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Show - S01E01.mkv", false},
		{"[Group] Show - NCOP1 [1080p].mkv", true},
		{"Show NCED 02.mkv", true},
		{"Show - Creditless Opening.mkv", true},
		{"Show Textless ED.mkv", true},
		{"Syncopation - 01.mkv", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isExtraFile(tt.name))
		})
	}
}
