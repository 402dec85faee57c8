package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/queue"
)

type runnerFixture struct {
	lib     *library.Store
	queues  *queue.Store
	scanner *fakeScanner
	images  atomic.Int32
	thumbs  atomic.Int32
	deps    Deps
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &runnerFixture{
		lib:     library.NewStore(db),
		queues:  queue.NewStore(db),
		scanner: newFakeScanner(0),
	}
	bus := events.NewBus(nil, nil)
	t.Cleanup(func() { _ = bus.Close() })
	f.deps = Deps{
		Coordinator: NewCoordinator(f.scanner, f.lib, nil),
		Queues:      f.queues,
		Images: func(context.Context, queue.ImageJob) error {
			f.images.Add(1)
			return nil
		},
		Thumbnails: func(context.Context, queue.ThumbnailJob) error {
			f.thumbs.Add(1)
			return nil
		},
		Bus:      bus,
		EventLog: events.NewEventLog(db),
	}
	return f
}

func seedMovie(t *testing.T, store *library.Store) int64 {
	t.Helper()
	lib := &library.Library{Name: "movies", Path: "/media/movies", Kind: library.KindMovie}
	require.NoError(t, store.UpsertLibrary(lib))
	m := &library.Movie{LibraryID: lib.ID, Name: "Arrival", Path: "/media/movies/Arrival (2016).mkv"}
	require.NoError(t, store.AddMovie(m))
	return m.ID
}

func TestRunner_DrainsQueuesAndStops(t *testing.T) {
	f := newRunnerFixture(t)
	id := seedMovie(t, f.lib)
	require.NoError(t, f.queues.EnqueueImage(id, library.ImagePrimary, "https://img.example/p.jpg"))
	require.NoError(t, f.queues.EnqueueThumbnail(id, "/media/movies/Arrival (2016).mkv"))

	r := NewRunner(f.deps, Config{ImageIdle: 10 * time.Millisecond, ThumbnailIdle: 10 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return f.images.Load() == 1 && f.thumbs.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	counts, err := f.queues.ImageCounts()
	require.NoError(t, err)
	assert.Zero(t, counts.Pending)
}

func TestRunner_StartupScan(t *testing.T) {
	f := newRunnerFixture(t)
	r := NewRunner(f.deps, Config{ScanEnabled: true, ScanOnStartup: true, ImageIdle: time.Second, ThumbnailIdle: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool { return f.scanner.quickAll.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunner_ScheduledJobs(t *testing.T) {
	f := newRunnerFixture(t)
	r := NewRunner(f.deps, Config{
		ScanEnabled:    true,
		UnmatchedRetry: "@every 1s",
		ImageIdle:      time.Second,
		ThumbnailIdle:  time.Second,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool { return f.scanner.retries.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Zero(t, f.scanner.quickAll.Load(), "no quick scan without an interval")
}

func TestRunner_BadSchedule(t *testing.T) {
	f := newRunnerFixture(t)
	r := NewRunner(f.deps, Config{ScanEnabled: true, UnmatchedRetry: "whenever"}, nil)
	err := r.Run(context.Background())
	assert.ErrorContains(t, err, "unmatched retry")
}

func TestRunner_MissingThumbnails(t *testing.T) {
	f := newRunnerFixture(t)
	seedMovie(t, f.lib)
	r := NewRunner(f.deps, Config{RetryFailedThumbnails: true}, nil)

	r.missingThumbnails(context.Background())
	counts, err := f.queues.ThumbnailCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Pending)

	for i := 0; i < queue.MaxAttempts; i++ {
		jobs, err := f.queues.PendingThumbnails(1)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		_, err = f.queues.FailThumbnail(jobs[0].ID)
		require.NoError(t, err)
	}
	counts, err = f.queues.ThumbnailCounts()
	require.NoError(t, err)
	require.Equal(t, 1, counts.Failed)

	r.missingThumbnails(context.Background())
	counts, err = f.queues.ThumbnailCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Pending)
	assert.Zero(t, counts.Failed)
}
