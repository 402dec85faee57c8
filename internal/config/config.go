// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/mediarr/pkg/release"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Database  DatabaseConfig  `toml:"database"`
	Paths     PathsConfig     `toml:"paths"`
	Metadata  MetadataConfig  `toml:"metadata"`
	Tools     ToolsConfig     `toml:"tools"`
	Scanner   ScannerConfig   `toml:"scanner"`
	Queues    QueuesConfig    `toml:"queues"`
	Libraries []LibraryConfig `toml:"libraries"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// LogConfig tees daemon output to a rotating file when File is set.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type PathsConfig struct {
	CacheDir string `toml:"cache_dir"`
}

// ImageDir is where downloaded artwork and thumbnails are stored.
func (p PathsConfig) ImageDir() string {
	return filepath.Join(p.CacheDir, "images")
}

type MetadataConfig struct {
	TMDBAPIKey           string        `toml:"tmdb_api_key"`
	Language             string        `toml:"language"`
	EnableAnimeDB        *bool         `toml:"enable_anime_db"`
	FetchEpisodeMetadata bool          `toml:"fetch_episode_metadata"`
	ProviderTimeout      time.Duration `toml:"provider_timeout"`
}

// AnimeDBEnabled reports whether the offline catalog tier is used.
func (m MetadataConfig) AnimeDBEnabled() bool {
	return m.EnableAnimeDB == nil || *m.EnableAnimeDB
}

type ToolsConfig struct {
	FFprobePath string `toml:"ffprobe_path"`
	FFmpegPath  string `toml:"ffmpeg_path"`
}

type ScannerConfig struct {
	Enabled                  *bool         `toml:"enabled"`
	QuickScanInterval        time.Duration `toml:"quick_scan_interval"`
	FullScanInterval         time.Duration `toml:"full_scan_interval"`
	ScanOnStartup            bool          `toml:"scan_on_startup"`
	VideoExtensions          []string      `toml:"video_extensions"`
	MissingThumbnailInterval time.Duration `toml:"missing_thumbnail_interval"`
	RetryFailedThumbnails    *bool         `toml:"retry_failed_thumbnails"`
	UnmatchedRetry           string        `toml:"unmatched_retry"`
}

// IsEnabled reports whether scheduled scanning runs. Unset means true.
func (s ScannerConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// RetryThumbnails reports whether failed thumbnails are re-queued by the
// missing-thumbnail check. Unset means true.
func (s ScannerConfig) RetryThumbnails() bool {
	return s.RetryFailedThumbnails == nil || *s.RetryFailedThumbnails
}

type QueuesConfig struct {
	ImageItemDelay     time.Duration `toml:"image_item_delay"`
	ThumbnailItemDelay time.Duration `toml:"thumbnail_item_delay"`
	ImageIdle          time.Duration `toml:"image_idle"`
	ThumbnailIdle      time.Duration `toml:"thumbnail_idle"`
	StartupDelay       time.Duration `toml:"startup_delay"`
}

type LibraryConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
	Type string `toml:"type"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads, substitutes, decodes and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation is Load minus Validate, for commands that only
// need part of the file.
func LoadWithoutValidation(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, "0.0.0.0")
	setDefault(&c.Server.Port, 8585)
	setDefault(&c.Server.LogLevel, "info")

	setDefault(&c.Log.MaxSizeMB, 50)
	setDefault(&c.Log.MaxBackups, 3)
	setDefault(&c.Log.MaxAgeDays, 28)

	setDefault(&c.Database.Path, "./data/mediarr.db")
	setDefault(&c.Paths.CacheDir, "./cache")

	setDefault(&c.Metadata.Language, "en-US")
	setDefault(&c.Metadata.ProviderTimeout, 30*time.Second)

	setDefault(&c.Scanner.QuickScanInterval, 15*time.Minute)
	setDefault(&c.Scanner.FullScanInterval, 24*time.Hour)
	setDefault(&c.Scanner.MissingThumbnailInterval, 60*time.Minute)
	setDefault(&c.Scanner.UnmatchedRetry, "@every 6h")
	if len(c.Scanner.VideoExtensions) == 0 {
		c.Scanner.VideoExtensions = slices.Clone(release.DefaultVideoExtensions)
	}
	for i, ext := range c.Scanner.VideoExtensions {
		c.Scanner.VideoExtensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	setDefault(&c.Queues.ImageItemDelay, 100*time.Millisecond)
	setDefault(&c.Queues.ThumbnailItemDelay, 200*time.Millisecond)
	setDefault(&c.Queues.ImageIdle, 5*time.Second)
	setDefault(&c.Queues.ThumbnailIdle, 10*time.Second)
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} with its value. With a default, an
// unset or empty variable takes the default; without one, the reference
// is left in place and reported as missing. Comment lines are kept as is.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)
	expand := func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := m[1], m[2] != "", m[3]
		value, ok := os.LookupEnv(name)
		switch {
		case hasDefault && value == "":
			return def
		case ok:
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	}

	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, expand)
	}
	return strings.Join(lines, ""), missing
}
