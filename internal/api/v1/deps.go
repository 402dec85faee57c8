package v1

import (
	"context"
	"errors"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/queue"
	"github.com/vmunix/mediarr/internal/scanner"
)

// Scanner runs scans. server.Coordinator implements it, serializing
// scans of the same library.
type Scanner interface {
	Scan(ctx context.Context, libraryID int64) (*scanner.Result, error)
	QuickScan(ctx context.Context, libraryID int64) (*scanner.QuickResult, error)
	ScanMissing(ctx context.Context, libraryID int64) (*scanner.MissingResult, error)
	QuickScanAll(ctx context.Context) (*scanner.QuickResult, error)
	RefreshAll(ctx context.Context) (*scanner.Result, error)
}

// Catalog reports the state of the offline anime catalog.
type Catalog interface {
	Loaded() bool
	Len() int
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Library *library.Store
	Queues  *queue.Store
	Scanner Scanner

	// Optional dependencies (nil if not configured)
	EventLog *events.EventLog
	Catalog  Catalog
	Version  string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Library == nil {
		return errors.New("library store is required")
	}
	if d.Queues == nil {
		return errors.New("queue store is required")
	}
	if d.Scanner == nil {
		return errors.New("scanner is required")
	}
	return nil
}
