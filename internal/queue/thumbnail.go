package queue

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/probe"
)

// ThumbnailRecorder is the image store used by ThumbnailGenerator.
type ThumbnailRecorder interface {
	ImageRecorder
	HasImage(itemID int64, typ library.ImageType) (bool, error)
}

// ThumbnailGenerator extracts a frame as the Primary image of an item
// that has no artwork of its own.
type ThumbnailGenerator struct {
	dir      string
	prober   probe.Prober
	recorder ThumbnailRecorder
	width    int
	log      *slog.Logger
}

// NewThumbnailGenerator writes thumbnails under <cacheDir>/images.
// logger may be nil.
func NewThumbnailGenerator(cacheDir string, prober probe.Prober, recorder ThumbnailRecorder, logger *slog.Logger) *ThumbnailGenerator {
	g := &ThumbnailGenerator{
		dir:      filepath.Join(cacheDir, "images"),
		prober:   prober,
		recorder: recorder,
		width:    probe.DefaultThumbnailWidth,
	}
	if logger != nil {
		g.log = logger.With("component", "thumbnails")
	}
	return g
}

// Handle implements Handler for the thumbnail queue.
func (g *ThumbnailGenerator) Handle(ctx context.Context, job ThumbnailJob) error {
	start := time.Now()

	// A downloaded poster wins over a generated frame.
	has, err := g.recorder.HasImage(job.ItemID, library.ImagePrimary)
	if err != nil {
		return fmt.Errorf("check primary image: %w", err)
	}
	if has {
		return nil
	}

	// An unknown duration still yields a frame at the default offset.
	var duration time.Duration
	if info, err := g.prober.Probe(ctx, job.VideoPath); err == nil {
		duration = info.Duration
	} else if g.log != nil {
		g.log.Debug("probe failed, using default offset", "item_id", job.ItemID, "error", err)
	}
	at := probe.ThumbnailTimestamp(duration)

	out := filepath.Join(g.dir, strconv.FormatInt(job.ItemID, 10), "thumb.jpg")
	if err := g.prober.Thumbnail(ctx, job.VideoPath, out, at, g.width); err != nil {
		return fmt.Errorf("generate thumbnail for item %d: %w", job.ItemID, err)
	}
	if err := g.recorder.SetImage(job.ItemID, library.ImagePrimary, out); err != nil {
		return fmt.Errorf("record thumbnail: %w", err)
	}

	if g.log != nil {
		g.log.Debug("thumbnail saved",
			"item_id", job.ItemID,
			"at", at.String(),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}
