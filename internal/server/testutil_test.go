package server

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/migrations"
	"github.com/vmunix/mediarr/internal/scanner"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := migrations.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Up(context.Background(), db)
	require.NoError(t, err)
	return db
}

func seedLibraries(t *testing.T, store *library.Store, names ...string) []*library.Library {
	t.Helper()
	libs := make([]*library.Library, 0, len(names))
	for _, name := range names {
		lib := &library.Library{Name: name, Path: "/media/" + name, Kind: library.KindEpisodic}
		require.NoError(t, store.UpsertLibrary(lib))
		libs = append(libs, lib)
	}
	return libs
}

// fakeScanner records calls and tracks how many scans overlap per library.
type fakeScanner struct {
	hold time.Duration

	mu      sync.Mutex
	active  map[int64]int
	overlap bool

	quickAll  atomic.Int32
	retries   atomic.Int32
	mediaInfo atomic.Int32
}

func newFakeScanner(hold time.Duration) *fakeScanner {
	return &fakeScanner{hold: hold, active: make(map[int64]int)}
}

func (f *fakeScanner) enter(id int64) {
	f.mu.Lock()
	f.active[id]++
	if f.active[id] > 1 {
		f.overlap = true
	}
	f.mu.Unlock()
	time.Sleep(f.hold)
	f.mu.Lock()
	f.active[id]--
	f.mu.Unlock()
}

func (f *fakeScanner) Scan(_ context.Context, lib *library.Library) (*scanner.Result, error) {
	f.enter(lib.ID)
	return &scanner.Result{SeriesAdded: 1}, nil
}

func (f *fakeScanner) QuickScan(_ context.Context, lib *library.Library) (*scanner.QuickResult, error) {
	f.enter(lib.ID)
	return &scanner.QuickResult{FilesAdded: 1}, nil
}

func (f *fakeScanner) Refresh(_ context.Context, lib *library.Library) (*scanner.Result, error) {
	f.enter(lib.ID)
	return &scanner.Result{}, nil
}

func (f *fakeScanner) ScanMissingMetadata(_ context.Context, lib *library.Library) (*scanner.MissingResult, error) {
	f.enter(lib.ID)
	return &scanner.MissingResult{}, nil
}

func (f *fakeScanner) QuickScanAll(context.Context) (*scanner.QuickResult, error) {
	f.quickAll.Add(1)
	return &scanner.QuickResult{}, nil
}

func (f *fakeScanner) RefreshAll(context.Context) (*scanner.Result, error) {
	return &scanner.Result{}, nil
}

func (f *fakeScanner) RetryUnmatched(context.Context) (*scanner.RetryResult, error) {
	f.retries.Add(1)
	return &scanner.RetryResult{}, nil
}

func (f *fakeScanner) UpdateMissingMediaInfo(context.Context) (int, error) {
	f.mediaInfo.Add(1)
	return 0, nil
}
