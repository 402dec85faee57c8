package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"tvshows": KindEpisodic, "tvshow": KindEpisodic, "Series": KindEpisodic,
		"movies": KindMovie, "movie": KindMovie,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("music")
	assert.Error(t, err)
}

func TestSortName(t *testing.T) {
	assert.Equal(t, "office", SortName("The Office"))
	assert.Equal(t, "a", SortName("A"))
	assert.Equal(t, "frieren", SortName("  Frieren "))
}

func TestStore_UpsertLibrary(t *testing.T) {
	store := NewStore(setupTestDB(t))

	lib := seedLibrary(t, store, "Anime", KindEpisodic)
	require.NotZero(t, lib.ID)

	again := &Library{Name: "Anime", Path: "/mnt/anime", Kind: KindEpisodic}
	require.NoError(t, store.UpsertLibrary(again))
	assert.Equal(t, lib.ID, again.ID, "upsert keys on name")

	got, err := store.GetLibrary(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/anime", got.Path)

	seedLibrary(t, store, "Movies", KindMovie)
	libs, err := store.ListLibraries()
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, KindMovie, libs[1].Kind)

	_, err = store.GetLibrary(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SeriesLifecycle(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "Anime", KindEpisodic)

	s := &Series{
		LibraryID: lib.ID,
		Name:      "Frieren: Beyond Journey's End",
		Path:      "/media/Anime/Frieren",
		Metadata:  Metadata{AniListID: 154587, Year: 2023},
	}
	require.NoError(t, store.AddSeries(s))
	require.NotZero(t, s.ID)
	assert.Equal(t, "frieren: beyond journey's end", s.SortName)

	got, err := store.GetSeries(s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(154587), got.AniListID)
	assert.Zero(t, got.TMDBID)
	assert.Empty(t, got.Overview)

	found, err := store.FindSeriesByProviderID(lib.ID, ProviderAniList, 154587)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.ID, found.ID)

	found, err = store.FindSeriesByProviderID(lib.ID, ProviderTMDB, 1)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = store.FindSeriesByProviderID(lib.ID, ProviderKey("tvdb"), 1)
	assert.Error(t, err)

	_, err = store.GetSeries(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateSeriesMetadata_Coalesces(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "Anime", KindEpisodic)

	s := &Series{LibraryID: lib.ID, Name: "Beck", Metadata: Metadata{Overview: "A band.", MALID: 57}}
	require.NoError(t, store.AddSeries(s))

	require.NoError(t, store.UpdateSeriesMetadata(s.ID, Metadata{AniListID: 57, CommunityRating: 8.2}))

	got, err := store.GetSeries(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "A band.", got.Overview, "empty fields keep stored values")
	assert.Equal(t, int64(57), got.MALID)
	assert.Equal(t, int64(57), got.AniListID)
	assert.InDelta(t, 8.2, got.CommunityRating, 0.001)

	err = store.UpdateSeriesMetadata(999, Metadata{Overview: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListSeries(t *testing.T) {
	store := NewStore(setupTestDB(t))
	anime := seedLibrary(t, store, "Anime", KindEpisodic)
	tv := seedLibrary(t, store, "TV", KindEpisodic)

	for _, name := range []string{"The Wire", "Beck", "Akira"} {
		require.NoError(t, store.AddSeries(&Series{LibraryID: anime.ID, Name: name}))
	}
	require.NoError(t, store.AddSeries(&Series{LibraryID: tv.ID, Name: "Lost"}))

	results, total, err := store.ListSeries(SeriesFilter{LibraryID: &anime.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Akira", "Beck", "The Wire"}, []string{results[0].Name, results[1].Name, results[2].Name})

	results, total, err = store.ListSeries(SeriesFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, results, 2)
}

func TestStore_EpisodesAndPaths(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "TV", KindEpisodic)
	s := &Series{LibraryID: lib.ID, Name: "Breaking Bad", Path: "/tv/Breaking Bad"}
	require.NoError(t, store.AddSeries(s))

	for _, e := range []*Episode{
		{LibraryID: lib.ID, SeriesID: s.ID, Name: "Episode 2", Path: "/tv/Breaking Bad/S01E02.mkv", Season: 1, Number: 2},
		{LibraryID: lib.ID, SeriesID: s.ID, Name: "Pilot", Path: "/tv/Breaking Bad/S01E01.mkv", Season: 1, Number: 1, RuntimeTicks: ptr(int64(58 * 60 * TicksPerSecond))},
		{LibraryID: lib.ID, SeriesID: s.ID, Name: "Seven Thirty-Seven", Path: "/tv/Breaking Bad/S02E01.mkv", Season: 2, Number: 1},
	} {
		require.NoError(t, store.AddEpisode(e))
	}

	eps, total, err := store.ListEpisodes(EpisodeFilter{SeriesID: &s.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Pilot", eps[0].Name)
	require.NotNil(t, eps[0].RuntimeTicks)
	assert.Nil(t, eps[1].RuntimeTicks)

	eps, _, err = store.ListEpisodes(EpisodeFilter{SeriesID: &s.ID, Season: ptr(2)})
	require.NoError(t, err)
	require.Len(t, eps, 1)

	ok, err := store.PathExists(lib.ID, "/tv/Breaking Bad/S01E01.mkv")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.PathExists(lib.ID, "/tv/Breaking Bad/S09E09.mkv")
	require.NoError(t, err)
	assert.False(t, ok)

	paths, err := store.ItemPaths(lib.ID)
	require.NoError(t, err)
	assert.Len(t, paths, 3, "series folders are not item paths")

	missing, err := store.ItemsMissingRuntime(0)
	require.NoError(t, err)
	assert.Len(t, missing, 2)
	require.NoError(t, store.SetRuntime(missing[0].ID, 42*TicksPerSecond))
	missing, err = store.ItemsMissingRuntime(10)
	require.NoError(t, err)
	assert.Len(t, missing, 1)

	n, err := store.CountItems(lib.ID, ItemEpisode)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_EpisodeRequiresSeries(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "TV", KindEpisodic)

	err := store.AddEpisode(&Episode{LibraryID: lib.ID, SeriesID: 999, Name: "Orphan", Path: "/x.mkv", Season: 1, Number: 1})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestStore_Movies(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "Movies", KindMovie)

	m := &Movie{LibraryID: lib.ID, Name: "Dune", Path: "/movies/Dune (2021).mkv", Metadata: Metadata{Year: 2021}}
	require.NoError(t, store.AddMovie(m))

	missing, err := store.MoviesMissingMetadata(lib.ID)
	require.NoError(t, err)
	require.Len(t, missing, 1)

	require.NoError(t, store.UpdateMovieMetadata(m.ID, Metadata{Overview: "Paul Atreides.", TMDBID: 438631, IMDBID: "tt1160419"}))
	missing, err = store.MoviesMissingMetadata(lib.ID)
	require.NoError(t, err)
	assert.Len(t, missing, 1, "still missing a Primary image")

	require.NoError(t, store.SetImage(m.ID, ImagePrimary, "/cache/images/1/Primary.jpg"))
	missing, err = store.MoviesMissingMetadata(lib.ID)
	require.NoError(t, err)
	assert.Empty(t, missing)

	got, err := store.GetMovie(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2021, got.Year)
	assert.Equal(t, int64(438631), got.TMDBID)
	assert.Equal(t, "tt1160419", got.IMDBID)
}

func TestStore_Images(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "Movies", KindMovie)
	m := &Movie{LibraryID: lib.ID, Name: "Akira", Path: "/movies/Akira.mkv"}
	require.NoError(t, store.AddMovie(m))

	has, err := store.HasImage(m.ID, ImageBackdrop)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.SetImage(m.ID, ImageBackdrop, "/a.jpg"))
	require.NoError(t, store.SetImage(m.ID, ImageBackdrop, "/b.jpg"))
	has, err = store.HasImage(m.ID, ImageBackdrop)
	require.NoError(t, err)
	assert.True(t, has)

	var n int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM images WHERE item_id = ?", m.ID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_DeleteLibraryItemsCascades(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "TV", KindEpisodic)
	s := &Series{LibraryID: lib.ID, Name: "Lost"}
	require.NoError(t, store.AddSeries(s))
	e := &Episode{LibraryID: lib.ID, SeriesID: s.ID, Name: "Pilot", Path: "/tv/Lost/S01E01.mkv", Season: 1, Number: 1}
	require.NoError(t, store.AddEpisode(e))
	require.NoError(t, store.SetImage(s.ID, ImagePrimary, "/p.jpg"))
	require.NoError(t, store.LinkGenres(s.ID, []string{"Drama"}))

	n, err := store.DeleteLibraryItems(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var images, links int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM images").Scan(&images))
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM item_genres").Scan(&links))
	assert.Zero(t, images)
	assert.Zero(t, links)
}

func TestStore_DeleteItem(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "Movies", KindMovie)
	m := &Movie{LibraryID: lib.ID, Name: "Akira", Path: "/movies/Akira.mkv"}
	require.NoError(t, store.AddMovie(m))

	require.NoError(t, store.DeleteItem(m.ID))
	_, err := store.GetMovie(m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTx_CommitAndRollback(t *testing.T) {
	store := NewStore(setupTestDB(t))
	lib := seedLibrary(t, store, "TV", KindEpisodic)

	tx, err := store.Begin()
	require.NoError(t, err)
	kept := &Series{LibraryID: lib.ID, Name: "Kept"}
	require.NoError(t, tx.AddSeries(kept))
	require.NoError(t, tx.LinkGenres(kept.ID, []string{"Drama"}))
	require.NoError(t, tx.Commit())

	tx, err = store.Begin()
	require.NoError(t, err)
	dropped := &Series{LibraryID: lib.ID, Name: "Dropped"}
	require.NoError(t, tx.AddSeries(dropped))
	require.NoError(t, tx.Rollback())

	_, err = store.GetSeries(kept.ID)
	assert.NoError(t, err)
	_, err = store.GetSeries(dropped.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
