// Package probe reads media information from video files and extracts
// thumbnail frames using the ffprobe and ffmpeg binaries.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

const ticksPerSecond = 10_000_000

// DefaultThumbnailWidth is the width thumbnails are scaled to.
const DefaultThumbnailWidth = 480

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("no duration")

// Info is the subset of probe output the library stores.
type Info struct {
	Duration     time.Duration
	RuntimeTicks int64
	VideoCodec   string
	AudioCodec   string
	Width        int
	Height       int
}

// Prober inspects video files.
type Prober interface {
	Probe(ctx context.Context, path string) (*Info, error)
	Thumbnail(ctx context.Context, video, out string, at time.Duration, width int) error
}

type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpeg implements Prober with the ffprobe and ffmpeg binaries.
type FFmpeg struct {
	ffmpegPath string
	timeout    time.Duration
	probe      probeFunc
	run        runFunc
}

// Option configures an FFmpeg prober.
type Option func(*FFmpeg)

// WithFFprobePath overrides the ffprobe binary looked up on PATH.
func WithFFprobePath(path string) Option {
	return func(f *FFmpeg) {
		if path != "" {
			ffprobe.SetFFProbeBinPath(path)
		}
	}
}

// WithFFmpegPath overrides the ffmpeg binary looked up on PATH.
func WithFFmpegPath(path string) Option {
	return func(f *FFmpeg) {
		if path != "" {
			f.ffmpegPath = path
		}
	}
}

// WithTimeout bounds a single probe or thumbnail invocation.
func WithTimeout(d time.Duration) Option {
	return func(f *FFmpeg) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// New returns an FFmpeg prober.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpegPath: "ffmpeg",
		timeout:    60 * time.Second,
		probe:      ffprobe.ProbeURL,
		run:        runCommand,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Probe reports duration, codecs and dimensions of the file at path.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := f.probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}
	return infoFrom(data)
}

func infoFrom(data *ffprobe.ProbeData) (*Info, error) {
	info := &Info{}
	if data.Format != nil && data.Format.DurationSeconds > 0 {
		info.Duration = data.Format.Duration()
		info.RuntimeTicks = int64(data.Format.DurationSeconds * ticksPerSecond)
	}
	if v := data.FirstVideoStream(); v != nil {
		info.VideoCodec = codecName(v)
		info.Width = v.Width
		info.Height = v.Height
		if info.RuntimeTicks == 0 {
			if secs, err := strconv.ParseFloat(v.Duration, 64); err == nil && secs > 0 {
				info.Duration = time.Duration(secs * float64(time.Second))
				info.RuntimeTicks = int64(secs * ticksPerSecond)
			}
		}
	}
	if a := data.FirstAudioStream(); a != nil {
		info.AudioCodec = codecName(a)
	}
	if info.RuntimeTicks == 0 {
		return info, ErrNoDuration
	}
	return info, nil
}

func codecName(s *ffprobe.Stream) string {
	if s.CodecName != "" {
		return s.CodecName
	}
	return s.CodecLongName
}

// Thumbnail writes a single JPEG frame taken at the given offset to out,
// scaled to width with the aspect ratio kept.
func (f *FFmpeg) Thumbnail(ctx context.Context, video, out string, at time.Duration, width int) error {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	output, err := f.run(ctx, f.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", video,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", width),
		"-q:v", "3",
		"-y",
		out,
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("thumbnail %s: timed out after %s", filepath.Base(video), f.timeout)
		}
		return fmt.Errorf("thumbnail %s: %w: %s", filepath.Base(video), err, truncate(output, 512))
	}
	if st, err := os.Stat(out); err != nil || st.Size() == 0 {
		return fmt.Errorf("thumbnail %s: ffmpeg produced no output", filepath.Base(video))
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

// ThumbnailTimestamp picks the frame offset for a video of the given
// duration: 10% in, clamped to [5s, 5m]. Unknown durations use 30s.
func ThumbnailTimestamp(duration time.Duration) time.Duration {
	if duration <= 0 {
		return 30 * time.Second
	}
	ts := duration / 10
	if ts < 5*time.Second {
		ts = 5 * time.Second
	}
	if ts > 5*time.Minute {
		ts = 5 * time.Minute
	}
	return ts
}
