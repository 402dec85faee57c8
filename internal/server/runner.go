// Package server runs the daemon's background components: the queue
// workers, the scan scheduler and the event logger.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/queue"
)

// eventRetention is how long the event log keeps entries.
const eventRetention = 30 * 24 * time.Hour

// Config for the background components.
type Config struct {
	ScanEnabled              bool
	QuickScanInterval        time.Duration
	FullScanInterval         time.Duration
	MissingThumbnailInterval time.Duration
	RetryFailedThumbnails    bool
	UnmatchedRetry           string // cron expression
	ScanOnStartup            bool
	StartupDelay             time.Duration

	ImageDelay     time.Duration
	ImageIdle      time.Duration
	ThumbnailDelay time.Duration
	ThumbnailIdle  time.Duration
}

// Deps are the collaborators the runner drives.
type Deps struct {
	Coordinator *Coordinator
	Queues      *queue.Store
	Images      queue.Handler[queue.ImageJob]
	Thumbnails  queue.Handler[queue.ThumbnailJob]
	Bus         *events.Bus
	EventLog    *events.EventLog // may be nil
}

// Runner manages the background components.
type Runner struct {
	deps   Deps
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(deps Deps, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		deps:   deps,
		config: cfg,
		logger: logger,
	}
}

// Run starts all components. It blocks until ctx is cancelled, then
// waits for in-flight queue entries and scheduled jobs to finish.
func (r *Runner) Run(ctx context.Context) error {
	sched, err := r.schedule(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	images := queue.NewWorker(queue.KindImage, r.deps.Queues.Images(), r.deps.Images,
		queue.WorkerConfig{Delay: r.config.ImageDelay, Idle: r.config.ImageIdle}, r.deps.Bus, r.logger)
	thumbs := queue.NewWorker(queue.KindThumbnail, r.deps.Queues.Thumbnails(), r.deps.Thumbnails,
		queue.WorkerConfig{Delay: r.config.ThumbnailDelay, Idle: r.config.ThumbnailIdle}, r.deps.Bus, r.logger)
	g.Go(func() error { return images.Run(ctx) })
	g.Go(func() error { return thumbs.Run(ctx) })

	if r.deps.Bus != nil {
		g.Go(func() error {
			r.logEvents(ctx)
			return nil
		})
	}

	sched.Start()
	r.logger.Info("scheduler started", "jobs", len(sched.Entries()))
	g.Go(func() error {
		<-ctx.Done()
		<-sched.Stop().Done()
		r.logger.Info("scheduler stopped")
		return nil
	})

	if r.config.ScanEnabled && r.config.ScanOnStartup {
		g.Go(func() error {
			if !wait(ctx, r.config.StartupDelay) {
				return nil
			}
			r.quickScan(ctx)
			return nil
		})
	}

	return g.Wait()
}

// schedule registers the periodic jobs. Jobs run under ctx so a
// shutdown cancels them between items.
func (r *Runner) schedule(ctx context.Context) (*cron.Cron, error) {
	cl := cronLogger{r.logger.With("component", "scheduler")}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	add := func(spec, name string, job func(context.Context)) error {
		if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
			return fmt.Errorf("schedule %s %q: %w", name, spec, err)
		}
		r.logger.Debug("job scheduled", "job", name, "spec", spec)
		return nil
	}
	every := func(d time.Duration) string { return "@every " + d.String() }

	if r.config.ScanEnabled {
		if r.config.QuickScanInterval > 0 {
			if err := add(every(r.config.QuickScanInterval), "quick scan", r.quickScan); err != nil {
				return nil, err
			}
		}
		if r.config.FullScanInterval > 0 {
			if err := add(every(r.config.FullScanInterval), "full refresh", r.refresh); err != nil {
				return nil, err
			}
		}
		if r.config.UnmatchedRetry != "" {
			if err := add(r.config.UnmatchedRetry, "unmatched retry", r.retryUnmatched); err != nil {
				return nil, err
			}
		}
	}
	if r.config.MissingThumbnailInterval > 0 {
		if err := add(every(r.config.MissingThumbnailInterval), "missing thumbnails", r.missingThumbnails); err != nil {
			return nil, err
		}
	}
	if r.deps.EventLog != nil {
		if err := add("@daily", "event prune", r.pruneEvents); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *Runner) quickScan(ctx context.Context) {
	start := time.Now()
	res, err := r.deps.Coordinator.QuickScanAll(ctx)
	if err != nil {
		r.logger.Error("scheduled quick scan", "error", err)
	}
	if res != nil {
		r.logger.Info("scheduled quick scan done",
			"files_added", res.FilesAdded,
			"files_removed", res.FilesRemoved,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (r *Runner) refresh(ctx context.Context) {
	start := time.Now()
	res, err := r.deps.Coordinator.RefreshAll(ctx)
	if err != nil {
		r.logger.Error("scheduled refresh", "error", err)
	}
	if res != nil {
		r.logger.Info("scheduled refresh done",
			"series_added", res.SeriesAdded,
			"episodes_added", res.EpisodesAdded,
			"movies_added", res.MoviesAdded,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (r *Runner) retryUnmatched(ctx context.Context) {
	res, err := r.deps.Coordinator.RetryUnmatched(ctx)
	if err != nil {
		r.logger.Error("unmatched retry", "error", err)
		return
	}
	r.logger.Debug("unmatched retry done", "attempted", res.Attempted, "matched", res.Matched)
}

func (r *Runner) missingThumbnails(context.Context) {
	q := r.deps.Queues
	if r.config.RetryFailedThumbnails {
		n, err := q.ResetFailedThumbnails()
		if err != nil {
			r.logger.Error("reset failed thumbnails", "error", err)
		} else if n > 0 {
			r.logger.Info("failed thumbnails re-queued", "count", n)
		}
	}
	n, err := q.QueueMissingThumbnails()
	if err != nil {
		r.logger.Error("queue missing thumbnails", "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("missing thumbnails queued", "count", n)
	}
}

func (r *Runner) pruneEvents(context.Context) {
	n, err := r.deps.EventLog.Prune(eventRetention)
	if err != nil {
		r.logger.Error("prune events", "error", err)
		return
	}
	r.logger.Debug("events pruned", "count", n)
}

// logEvents writes every bus event to the debug log.
func (r *Runner) logEvents(ctx context.Context) {
	ch := r.deps.Bus.SubscribeAll(64)
	defer r.deps.Bus.Unsubscribe(ch)
	log := r.logger.With("component", "events")
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			log.Debug("event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
