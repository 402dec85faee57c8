package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/scanner"
)

// Scanner is the part of scanner.Scanner the coordinator drives.
type Scanner interface {
	Scan(ctx context.Context, lib *library.Library) (*scanner.Result, error)
	QuickScan(ctx context.Context, lib *library.Library) (*scanner.QuickResult, error)
	Refresh(ctx context.Context, lib *library.Library) (*scanner.Result, error)
	ScanMissingMetadata(ctx context.Context, lib *library.Library) (*scanner.MissingResult, error)
	QuickScanAll(ctx context.Context) (*scanner.QuickResult, error)
	RefreshAll(ctx context.Context) (*scanner.Result, error)
	RetryUnmatched(ctx context.Context) (*scanner.RetryResult, error)
	UpdateMissingMediaInfo(ctx context.Context) (int, error)
}

// Coordinator serializes scans of the same library. The API and the
// scheduler both go through it.
type Coordinator struct {
	scanner Scanner
	store   *library.Store
	log     *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewCoordinator creates a coordinator.
func NewCoordinator(sc Scanner, store *library.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		scanner: sc,
		store:   store,
		log:     logger.With("component", "coordinator"),
		locks:   make(map[int64]*sync.Mutex),
	}
}

func (c *Coordinator) lockFor(id int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// lockOne holds the lock of library id until the returned func is called.
func (c *Coordinator) lockOne(id int64) func() {
	l := c.lockFor(id)
	l.Lock()
	return l.Unlock
}

// lockAll takes every library lock in ID order, so it never deadlocks
// against lockOne or another lockAll.
func (c *Coordinator) lockAll() (func(), error) {
	libs, err := c.store.ListLibraries()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(libs))
	for _, lib := range libs {
		ids = append(ids, lib.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		l := c.lockFor(id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}, nil
}

func (c *Coordinator) library(id int64) (*library.Library, error) {
	lib, err := c.store.GetLibrary(id)
	if err != nil {
		return nil, fmt.Errorf("library %d: %w", id, err)
	}
	return lib, nil
}

// Scan runs a full scan of one library.
func (c *Coordinator) Scan(ctx context.Context, id int64) (*scanner.Result, error) {
	lib, err := c.library(id)
	if err != nil {
		return nil, err
	}
	defer c.lockOne(id)()
	return c.scanner.Scan(ctx, lib)
}

// QuickScan runs an incremental scan of one library.
func (c *Coordinator) QuickScan(ctx context.Context, id int64) (*scanner.QuickResult, error) {
	lib, err := c.library(id)
	if err != nil {
		return nil, err
	}
	defer c.lockOne(id)()
	return c.scanner.QuickScan(ctx, lib)
}

// ScanMissing re-resolves the items of one library that lack metadata.
func (c *Coordinator) ScanMissing(ctx context.Context, id int64) (*scanner.MissingResult, error) {
	lib, err := c.library(id)
	if err != nil {
		return nil, err
	}
	defer c.lockOne(id)()
	return c.scanner.ScanMissingMetadata(ctx, lib)
}

// Refresh rebuilds one library from scratch.
func (c *Coordinator) Refresh(ctx context.Context, id int64) (*scanner.Result, error) {
	lib, err := c.library(id)
	if err != nil {
		return nil, err
	}
	defer c.lockOne(id)()
	return c.scanner.Refresh(ctx, lib)
}

// QuickScanAll quick-scans every library and then probes items still
// missing a runtime.
func (c *Coordinator) QuickScanAll(ctx context.Context) (*scanner.QuickResult, error) {
	unlock, err := c.lockAll()
	if err != nil {
		return nil, err
	}
	defer unlock()
	res, err := c.scanner.QuickScanAll(ctx)
	if ctx.Err() == nil {
		if _, mErr := c.scanner.UpdateMissingMediaInfo(ctx); mErr != nil {
			c.log.Warn("update media info", "error", mErr)
		}
	}
	return res, err
}

// RefreshAll rebuilds every library.
func (c *Coordinator) RefreshAll(ctx context.Context) (*scanner.Result, error) {
	unlock, err := c.lockAll()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.scanner.RefreshAll(ctx)
}

// RetryUnmatched re-resolves unmatched series across all libraries.
func (c *Coordinator) RetryUnmatched(ctx context.Context) (*scanner.RetryResult, error) {
	unlock, err := c.lockAll()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.scanner.RetryUnmatched(ctx)
}
