package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/migrations"
	"github.com/vmunix/mediarr/internal/probe"
	"github.com/vmunix/mediarr/internal/queue"
	"github.com/vmunix/mediarr/pkg/release"
)

// fakeResolver answers lookups from a fixed title table.
type fakeResolver struct {
	mu       sync.Mutex
	records  map[string]*metadata.Record
	episodes map[[2]int]*metadata.EpisodeRecord
	calls    map[string]int
	unloads  int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		records:  make(map[string]*metadata.Record),
		episodes: make(map[[2]int]*metadata.EpisodeRecord),
		calls:    make(map[string]int),
	}
}

func (f *fakeResolver) set(name string, rec *metadata.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[name] = rec
}

func (f *fakeResolver) callsFor(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeResolver) Resolve(_ context.Context, name string, _ int, _ release.Class) (*metadata.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	rec, ok := f.records[name]
	if !ok {
		return nil, metadata.ErrNoMatch
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeResolver) Episode(_ context.Context, _ *metadata.Record, season, episode int) (*metadata.EpisodeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.episodes[[2]int{season, episode}], nil
}

func (f *fakeResolver) UnloadCatalog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
}

// fakeProber reports a fixed runtime for every file except those in fail.
type fakeProber struct {
	duration time.Duration
	fail     map[string]bool
}

func (p *fakeProber) Probe(_ context.Context, path string) (*probe.Info, error) {
	if p.fail[path] {
		return nil, errors.New("invalid data found when processing input")
	}
	return &probe.Info{Duration: p.duration, RuntimeTicks: int64(p.duration / 100)}, nil
}

func (p *fakeProber) Thumbnail(context.Context, string, string, time.Duration, int) error {
	return nil
}

type harness struct {
	fs       afero.Fs
	store    *library.Store
	queues   *queue.Store
	resolver *fakeResolver
	prober   *fakeProber
	bus      *events.Bus
	scanner  *Scanner
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	db, err := migrations.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Up(context.Background(), db)
	require.NoError(t, err)

	h := &harness{
		fs:       afero.NewMemMapFs(),
		store:    library.NewStore(db),
		queues:   queue.NewStore(db),
		resolver: newFakeResolver(),
		prober:   &fakeProber{duration: 24 * time.Minute},
		bus:      events.NewBus(nil, nil),
	}
	t.Cleanup(func() { _ = h.bus.Close() })
	opts = append([]Option{WithFs(h.fs), WithBus(h.bus)}, opts...)
	h.scanner = New(h.store, h.resolver, h.queues, h.prober, opts...)
	return h
}

func (h *harness) library(t *testing.T, name, path string, kind library.Kind) *library.Library {
	t.Helper()
	require.NoError(t, h.fs.MkdirAll(path, 0o755))
	lib := &library.Library{Name: name, Path: path, Kind: kind}
	require.NoError(t, h.store.UpsertLibrary(lib))
	return lib
}

func (h *harness) touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(h.fs, p, []byte("video"), 0o644))
	}
}

func (h *harness) series(t *testing.T, lib *library.Library) []*library.Series {
	t.Helper()
	all, _, err := h.store.ListSeries(library.SeriesFilter{LibraryID: &lib.ID})
	require.NoError(t, err)
	return all
}

func (h *harness) episodes(t *testing.T, seriesID int64) []*library.Episode {
	t.Helper()
	eps, _, err := h.store.ListEpisodes(library.EpisodeFilter{SeriesID: &seriesID})
	require.NoError(t, err)
	return eps
}

func frieren() *metadata.Record {
	return &metadata.Record{
		AniListID:   154587,
		MALID:       52991,
		Name:        "Frieren: Beyond Journey's End",
		Overview:    "An elf mage outlives her party.",
		Year:        2023,
		PosterURL:   "https://img.example/frieren.jpg",
		BackdropURL: "https://img.example/frieren-bg.jpg",
		Genres:      []string{"Adventure", "Fantasy"},
		Studio:      "Madhouse",
		Provider:    metadata.ProviderAniList,
	}
}
