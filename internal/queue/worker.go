package queue

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/vmunix/mediarr/internal/events"
)

// Kind names a queue.
type Kind string

const (
	KindImage     Kind = "image"
	KindThumbnail Kind = "thumbnail"
)

// BatchSize is the number of entries a worker pulls per round, scaled
// by the CPU count.
func BatchSize(kind Kind) int {
	cpus := runtime.NumCPU()
	if kind == KindThumbnail {
		return clamp(cpus*2, 10, 40)
	}
	return clamp(cpus*3, 15, 60)
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

// Job is an entry of a queue.
type Job interface {
	QueueID() int64
}

// Source hands out pending entries and records their outcome.
type Source[T Job] interface {
	Pending(n int) ([]T, error)
	Complete(id int64) error
	Fail(id int64) (terminal bool, err error)
}

// Handler processes one entry.
type Handler[T Job] func(ctx context.Context, job T) error

// WorkerConfig controls the pacing of a worker.
type WorkerConfig struct {
	Batch int           // entries per round; BatchSize(kind) when zero
	Delay time.Duration // pause between entries
	Idle  time.Duration // pause when the queue is empty
}

// Worker drains one queue: it pulls a batch, handles the entries one by
// one and records each outcome before moving on.
type Worker[T Job] struct {
	kind   Kind
	source Source[T]
	handle Handler[T]
	cfg    WorkerConfig
	bus    *events.Bus
	log    *slog.Logger
}

// NewWorker creates a worker. bus and logger may be nil.
func NewWorker[T Job](kind Kind, source Source[T], handle Handler[T], cfg WorkerConfig, bus *events.Bus, logger *slog.Logger) *Worker[T] {
	if cfg.Batch <= 0 {
		cfg.Batch = BatchSize(kind)
	}
	if cfg.Idle <= 0 {
		cfg.Idle = 5 * time.Second
	}
	w := &Worker[T]{kind: kind, source: source, handle: handle, cfg: cfg, bus: bus}
	if logger != nil {
		w.log = logger.With("component", "queue", "queue", string(kind))
	}
	return w
}

// Run drains the queue until ctx is cancelled. Cancellation is observed
// between entries only; an entry being handled runs to completion.
func (w *Worker[T]) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := w.RunOnce(ctx)
		if err != nil && w.log != nil {
			w.log.Error("list pending entries", "error", err)
		}
		if n == 0 || err != nil {
			if !sleep(ctx, w.cfg.Idle) {
				return nil
			}
		}
	}
}

// RunOnce processes a single batch and returns how many entries it
// handled.
func (w *Worker[T]) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.source.Pending(w.cfg.Batch)
	if err != nil {
		return 0, err
	}
	handled := 0
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && w.cfg.Delay > 0 {
			time.Sleep(w.cfg.Delay)
		}
		w.process(context.WithoutCancel(ctx), job)
		handled++
	}
	if handled > 0 && w.log != nil {
		w.log.Debug("batch processed", "entries", handled)
	}
	return handled, nil
}

func (w *Worker[T]) process(ctx context.Context, job T) {
	start := time.Now()
	herr := w.handle(ctx, job)
	if herr == nil {
		if err := w.source.Complete(job.QueueID()); err != nil && w.log != nil {
			w.log.Error("complete entry", "id", job.QueueID(), "error", err)
		}
		if w.log != nil {
			w.log.Debug("entry done", "id", job.QueueID(), "duration_ms", time.Since(start).Milliseconds())
		}
		return
	}

	terminal, err := w.source.Fail(job.QueueID())
	if err != nil {
		if w.log != nil {
			w.log.Error("record failure", "id", job.QueueID(), "error", err)
		}
		return
	}
	if w.log != nil {
		w.log.Warn("entry failed", "id", job.QueueID(), "terminal", terminal, "error", herr)
	}
	if terminal && w.bus != nil {
		_ = w.bus.Publish(ctx, &events.QueueItemFailed{
			BaseEvent: events.NewBaseEvent(events.EventQueueItemFailed, events.EntityItem, job.QueueID()),
			Queue:     string(w.kind),
			JobID:     job.QueueID(),
			Attempts:  MaxAttempts,
			Error:     herr.Error(),
		})
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Images adapts the image queue to Source.
func (s *Store) Images() Source[ImageJob] { return imageSource{s} }

// Thumbnails adapts the thumbnail queue to Source.
func (s *Store) Thumbnails() Source[ThumbnailJob] { return thumbnailSource{s} }

type imageSource struct{ s *Store }

func (q imageSource) Pending(n int) ([]ImageJob, error) { return q.s.PendingImages(n) }
func (q imageSource) Complete(id int64) error           { return q.s.CompleteImage(id) }
func (q imageSource) Fail(id int64) (bool, error)       { return q.s.FailImage(id) }

type thumbnailSource struct{ s *Store }

func (q thumbnailSource) Pending(n int) ([]ThumbnailJob, error) { return q.s.PendingThumbnails(n) }
func (q thumbnailSource) Complete(id int64) error               { return q.s.CompleteThumbnail(id) }
func (q thumbnailSource) Fail(id int64) (bool, error)           { return q.s.FailThumbnail(id) }
