// Package scanner walks library roots, identifies series, episodes and
// movies from their folder and file names, resolves their metadata and
// persists them, queueing artwork and thumbnails for the background
// workers.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/probe"
	"github.com/vmunix/mediarr/pkg/release"
)

// probeWorkers bounds concurrent media probes within one folder.
const probeWorkers = 4

// Resolver looks up metadata for scanned names.
type Resolver interface {
	Resolve(ctx context.Context, name string, year int, class release.Class) (*metadata.Record, error)
	Episode(ctx context.Context, series *metadata.Record, season, episode int) (*metadata.EpisodeRecord, error)
	UnloadCatalog()
}

// Queues accepts background work produced by a scan.
type Queues interface {
	EnqueueImage(itemID int64, imageType library.ImageType, url string) error
	EnqueueThumbnail(itemID int64, videoPath string) error
}

// Phase is a step of a scan pass.
type Phase string

const (
	PhaseInitializing Phase = "Initializing"
	PhaseWalking      Phase = "Walking"
	PhaseDraining     Phase = "Draining"
	PhaseDone         Phase = "Done"
)

// Result counts what a full scan changed.
type Result struct {
	RunID                      string `json:"run_id"`
	SeriesAdded                int    `json:"series_added"`
	SeriesReused               int    `json:"series_reused"`
	EpisodesAdded              int    `json:"episodes_added"`
	EpisodesFromExistingSeries int    `json:"episodes_from_existing_series"`
	MoviesAdded                int    `json:"movies_added"`
}

func (r *Result) add(o *Result) {
	r.SeriesAdded += o.SeriesAdded
	r.SeriesReused += o.SeriesReused
	r.EpisodesAdded += o.EpisodesAdded
	r.EpisodesFromExistingSeries += o.EpisodesFromExistingSeries
	r.MoviesAdded += o.MoviesAdded
}

// QuickResult counts what an incremental scan changed.
type QuickResult struct {
	RunID        string `json:"run_id"`
	FilesAdded   int    `json:"files_added"`
	FilesRemoved int    `json:"files_removed"`
}

// Scanner scans libraries into the store.
type Scanner struct {
	store           *library.Store
	resolver        Resolver
	queues          Queues
	prober          probe.Prober
	fs              afero.Fs
	bus             *events.Bus
	extensions      []string
	episodeMetadata bool
	log             *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs replaces the OS filesystem, for tests.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) { s.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.log = l.With("component", "scanner") }
}

// WithBus publishes scan events on b.
func WithBus(b *events.Bus) Option {
	return func(s *Scanner) { s.bus = b }
}

// WithExtensions sets the video file extensions, without dots.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) { s.extensions = exts }
}

// WithEpisodeMetadata enables per-episode lookups during full scans.
func WithEpisodeMetadata(enabled bool) Option {
	return func(s *Scanner) { s.episodeMetadata = enabled }
}

// New creates a scanner. resolver and prober may be nil, in which case
// no metadata is fetched and no runtimes are probed.
func New(store *library.Store, resolver Resolver, queues Queues, prober probe.Prober, opts ...Option) *Scanner {
	s := &Scanner{
		store:      store,
		resolver:   resolver,
		queues:     queues,
		prober:     prober,
		fs:         afero.NewOsFs(),
		extensions: release.DefaultVideoExtensions,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// session is the state of one scan invocation.
type session struct {
	runID string
	lib   *library.Library
	log   *slog.Logger

	// paths maps stored episode and movie files to their item IDs.
	paths map[string]int64
	// byProvider is the SeriesCache: "anilist:154587" and friends.
	byProvider map[string]*seriesEntry
	// byName maps normalized folder names to series, for quick scans.
	byName map[string]*seriesEntry

	episodeMetadata bool
	result          Result
}

type seriesEntry struct {
	series *library.Series
	rec    *metadata.Record
	reused bool
}

func (s *Scanner) newSession(lib *library.Library, episodeMetadata bool) (*session, error) {
	paths, err := s.store.ItemPaths(lib.ID)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &session{
		runID:           runID,
		lib:             lib,
		log:             s.log.With("run_id", runID, "library", lib.Name),
		paths:           paths,
		byProvider:      make(map[string]*seriesEntry),
		byName:          make(map[string]*seriesEntry),
		episodeMetadata: episodeMetadata,
		result:          Result{RunID: runID},
	}, nil
}

func (sess *session) phase(p Phase) {
	sess.log.Debug("scan phase", "phase", string(p))
}

// Scan walks the whole library and adds everything not yet stored.
func (s *Scanner) Scan(ctx context.Context, lib *library.Library) (*Result, error) {
	return s.fullScan(ctx, lib, "full")
}

func (s *Scanner) fullScan(ctx context.Context, lib *library.Library, mode string) (*Result, error) {
	start := time.Now()
	sess, err := s.newSession(lib, s.episodeMetadata)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", lib.Name, err)
	}
	sess.phase(PhaseInitializing)
	s.publishStarted(ctx, sess, mode)

	sess.phase(PhaseWalking)
	switch lib.Kind {
	case library.KindMovie:
		err = s.scanMovies(ctx, sess, lib.Path)
	default:
		err = s.scanShows(ctx, sess)
	}

	sess.phase(PhaseDraining)
	if s.resolver != nil {
		s.resolver.UnloadCatalog()
	}
	sess.phase(PhaseDone)

	res := sess.result
	s.publishCompleted(ctx, sess, mode, &events.ScanCompleted{
		SeriesAdded:   res.SeriesAdded,
		SeriesReused:  res.SeriesReused,
		EpisodesAdded: res.EpisodesAdded,
		MoviesAdded:   res.MoviesAdded,
	}, start, err)
	if err != nil {
		return &res, fmt.Errorf("scan %s: %w", lib.Name, err)
	}

	sess.log.Info("scan complete",
		"series_added", res.SeriesAdded,
		"series_reused", res.SeriesReused,
		"episodes_added", res.EpisodesAdded,
		"movies_added", res.MoviesAdded,
		"duration_ms", time.Since(start).Milliseconds())
	return &res, nil
}

func (s *Scanner) publish(ctx context.Context, e events.Event) {
	if s.bus != nil {
		_ = s.bus.Publish(ctx, e)
	}
}

func (s *Scanner) publishStarted(ctx context.Context, sess *session, mode string) {
	s.publish(ctx, &events.ScanStarted{
		BaseEvent: events.NewBaseEvent(events.EventScanStarted, events.EntityLibrary, sess.lib.ID),
		RunID:     sess.runID,
		Library:   sess.lib.Name,
		Mode:      mode,
	})
}

func (s *Scanner) publishCompleted(ctx context.Context, sess *session, mode string, e *events.ScanCompleted, start time.Time, err error) {
	e.BaseEvent = events.NewBaseEvent(events.EventScanCompleted, events.EntityLibrary, sess.lib.ID)
	e.RunID = sess.runID
	e.Library = sess.lib.Name
	e.Mode = mode
	e.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.Error = err.Error()
	}
	s.publish(ctx, e)
}

// resolve runs the resolver, reporting a miss or a failure as nil. Only
// cancellation is returned as an error.
func (s *Scanner) resolve(ctx context.Context, log *slog.Logger, name string, year int, class release.Class) (*metadata.Record, string, error) {
	if s.resolver == nil {
		return nil, "metadata disabled", nil
	}
	rec, err := s.resolver.Resolve(ctx, name, year, class)
	if err == nil {
		return rec, "", nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", ctxErr
	}
	if errors.Is(err, metadata.ErrNoMatch) {
		log.Debug("no metadata match", "name", name, "year", year, "class", class.String())
		return nil, "No metadata match found", nil
	}
	log.Warn("metadata lookup failed", "name", name, "year", year, "error", err)
	return nil, err.Error(), nil
}
