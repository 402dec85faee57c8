package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/vmunix/mediarr/internal/library"
)

const maxImageBytes = 20 << 20

// ErrNotImage is returned when a download is not an image.
var ErrNotImage = errors.New("response is not an image")

// ImageRecorder stores the local path of fetched artwork.
type ImageRecorder interface {
	SetImage(itemID int64, typ library.ImageType, path string) error
}

// ImageFetcher downloads queued artwork into the cache directory.
type ImageFetcher struct {
	dir        string
	recorder   ImageRecorder
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	log        *slog.Logger
}

// ImageOption configures an ImageFetcher.
type ImageOption func(*ImageFetcher)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) ImageOption {
	return func(f *ImageFetcher) { f.httpClient = c }
}

// WithRetry sets the number of download attempts and the base delay.
func WithRetry(attempts uint, delay time.Duration) ImageOption {
	return func(f *ImageFetcher) {
		f.attempts = attempts
		f.delay = delay
	}
}

// WithImageLogger sets the logger.
func WithImageLogger(l *slog.Logger) ImageOption {
	return func(f *ImageFetcher) { f.log = l.With("component", "images") }
}

// NewImageFetcher writes images under <cacheDir>/images.
func NewImageFetcher(cacheDir string, recorder ImageRecorder, opts ...ImageOption) *ImageFetcher {
	f := &ImageFetcher{
		dir:        filepath.Join(cacheDir, "images"),
		recorder:   recorder,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		delay:      time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handle implements Handler for the image queue.
func (f *ImageFetcher) Handle(ctx context.Context, job ImageJob) error {
	start := time.Now()
	body, err := retry.DoWithData(
		func() ([]byte, error) { return f.download(ctx, job.URL) },
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
	if err != nil {
		return fmt.Errorf("download %s image for item %d: %w", job.Type, job.ItemID, err)
	}

	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: %s from %s", ErrNotImage, mt.String(), job.URL)
	}

	path := f.Path(job.ItemID, job.Type, mt.Extension())
	if err := writeFile(path, body); err != nil {
		return err
	}
	if err := f.recorder.SetImage(job.ItemID, job.Type, path); err != nil {
		return fmt.Errorf("record image: %w", err)
	}

	if f.log != nil {
		f.log.Debug("image saved",
			"item_id", job.ItemID,
			"type", job.Type,
			"mime", mt.String(),
			"bytes", len(body),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

// Path is where an image of the given type and extension is stored.
func (f *ImageFetcher) Path(itemID int64, typ library.ImageType, ext string) string {
	return filepath.Join(f.dir, strconv.FormatInt(itemID, 10), strings.ToLower(string(typ))+ext)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (f *ImageFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxImageBytes {
		return nil, retry.Unrecoverable(fmt.Errorf("image larger than %d bytes", maxImageBytes))
	}
	return body, nil
}

// isRetryable accepts 429, 5xx and network errors.
func isRetryable(err error) bool {
	if !retry.IsRecoverable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, io.ErrUnexpectedEOF)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
