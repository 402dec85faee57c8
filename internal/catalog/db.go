package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

const (
	// DefaultURL is the minified release of the anime-offline-database.
	DefaultURL = "https://github.com/manami-project/anime-offline-database/releases/latest/download/anime-offline-database-minified.json"

	// FileName is the cached dataset's name inside the cache directory.
	FileName = "anime-offline-database.json"

	defaultMaxAge      = 7 * 24 * time.Hour
	defaultHTTPTimeout = 120 * time.Second
	resultCacheSize    = 512
)

// ErrNoDataset is returned when the dataset can be neither downloaded
// nor read from the cache.
var ErrNoDataset = errors.New("catalog dataset unavailable")

// snapshot is an immutable view of a loaded dataset. Readers hold a
// pointer to one; reload and unload swap the pointer, never mutate.
type snapshot struct {
	entries   []Entry
	index     map[string][]int
	byAniList map[int64]int
	byAniDB   map[int64]int
	byMAL     map[int64]int

	// results memoizes searches against this snapshot only.
	results *lru.Cache[string, []Match]
}

func newSnapshot(entries []Entry) *snapshot {
	s := &snapshot{
		entries:   entries,
		index:     make(map[string][]int, len(entries)*2),
		byAniList: make(map[int64]int),
		byAniDB:   make(map[int64]int),
		byMAL:     make(map[int64]int),
	}
	// Only fails for a non-positive size.
	s.results, _ = lru.New[string, []Match](resultCacheSize)
	for i := range entries {
		e := &entries[i]
		s.add(strings.ToLower(e.Title), i)
		for _, syn := range e.Synonyms {
			s.add(strings.ToLower(syn), i)
		}

		ids := e.ProviderIDs()
		if ids.AniList != 0 {
			if _, ok := s.byAniList[ids.AniList]; !ok {
				s.byAniList[ids.AniList] = i
			}
		}
		if ids.AniDB != 0 {
			if _, ok := s.byAniDB[ids.AniDB]; !ok {
				s.byAniDB[ids.AniDB] = i
			}
		}
		if ids.MAL != 0 {
			if _, ok := s.byMAL[ids.MAL]; !ok {
				s.byMAL[ids.MAL] = i
			}
		}
	}
	return s
}

func (s *snapshot) add(key string, i int) {
	idx := s.index[key]
	if len(idx) > 0 && idx[len(idx)-1] == i {
		return
	}
	s.index[key] = append(idx, i)
}

// DB is the lazily loaded offline catalog. It is safe for concurrent use.
type DB struct {
	fs     afero.Fs
	dir    string
	url    string
	maxAge time.Duration
	client *http.Client
	log    *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// Option configures a DB.
type Option func(*DB)

// WithURL overrides the dataset download URL.
func WithURL(url string) Option {
	return func(d *DB) { d.url = url }
}

// WithHTTPClient sets the HTTP client used to download the dataset.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DB) { d.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) { d.log = l }
}

// WithMaxAge sets how old the cached file may get before a re-download.
func WithMaxAge(age time.Duration) Option {
	return func(d *DB) { d.maxAge = age }
}

// WithFs sets the filesystem holding the cache directory.
func WithFs(fs afero.Fs) Option {
	return func(d *DB) { d.fs = fs }
}

// New creates a catalog that caches its dataset under dir. Nothing is
// loaded until the first lookup or an explicit EnsureLoaded.
func New(dir string, opts ...Option) *DB {
	d := &DB{
		fs:     afero.NewOsFs(),
		dir:    dir,
		url:    DefaultURL,
		maxAge: defaultMaxAge,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Loaded reports whether a dataset is currently held in memory.
func (d *DB) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap != nil
}

// Len returns the number of loaded entries, 0 when unloaded.
func (d *DB) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return 0
	}
	return len(d.snap.entries)
}

// EnsureLoaded loads the dataset if it is not already in memory.
func (d *DB) EnsureLoaded(ctx context.Context) error {
	_, err := d.current(ctx)
	return err
}

// Unload drops the dataset and index. The next lookup reloads it.
// Lookups already running keep the snapshot they started with.
func (d *DB) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap == nil {
		return
	}
	d.snap = nil
	if d.log != nil {
		d.log.Info("catalog unloaded")
	}
}

// current returns the loaded snapshot, loading it first if needed.
func (d *DB) current(ctx context.Context) (*snapshot, error) {
	d.mu.RLock()
	s := d.snap
	d.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap != nil {
		return d.snap, nil
	}

	start := time.Now()
	entries, err := d.loadOrDownload(ctx)
	if err != nil {
		return nil, err
	}
	d.snap = newSnapshot(entries)

	if d.log != nil {
		d.log.Info("catalog loaded",
			"entries", len(entries),
			"keys", len(d.snap.index),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return d.snap, nil
}

func (d *DB) path() string {
	return filepath.Join(d.dir, FileName)
}

func (d *DB) loadOrDownload(ctx context.Context) ([]Entry, error) {
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	info, statErr := d.fs.Stat(d.path())
	exists := statErr == nil
	if !exists || time.Since(info.ModTime()) > d.maxAge {
		entries, err := d.download(ctx)
		if err == nil {
			return entries, nil
		}
		if !exists {
			return nil, fmt.Errorf("%w: %w", ErrNoDataset, err)
		}
		if d.log != nil {
			d.log.Warn("catalog download failed, using cached copy", "error", err)
		}
	}

	data, err := afero.ReadFile(d.fs, d.path())
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decode(data)
}

// Refresh re-downloads the dataset regardless of the cached file's age
// and swaps it in.
func (d *DB) Refresh(ctx context.Context) error {
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	entries, err := d.download(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.snap = newSnapshot(entries)
	d.mu.Unlock()
	return nil
}

func (d *DB) download(ctx context.Context) ([]Entry, error) {
	if d.log != nil {
		d.log.Info("downloading catalog", "url", d.url)
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download catalog: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	entries, err := decode(data)
	if err != nil {
		return nil, err
	}

	// Only a dataset that parsed replaces the cached file.
	tmp := d.path() + ".tmp"
	if err := afero.WriteFile(d.fs, tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	if err := d.fs.Rename(tmp, d.path()); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}

	if d.log != nil {
		d.log.Info("catalog downloaded",
			"entries", len(entries),
			"bytes", len(data),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return entries, nil
}

func decode(data []byte) ([]Entry, error) {
	var root struct {
		Data []Entry `json:"data"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return root.Data, nil
}

func cacheKey(query string, year int) string {
	return query + "\x00" + strconv.Itoa(year)
}
