package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vmunix/mediarr/internal/library"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}
	if c.Metadata.ProviderTimeout < 0 {
		errs = append(errs, "metadata.provider_timeout: must not be negative")
	}

	if c.Scanner.UnmatchedRetry != "" {
		if _, err := cron.ParseStandard(c.Scanner.UnmatchedRetry); err != nil {
			errs = append(errs, fmt.Sprintf("scanner.unmatched_retry: %v", err))
		}
	}
	for key, d := range map[string]time.Duration{
		"scanner.quick_scan_interval":        c.Scanner.QuickScanInterval,
		"scanner.full_scan_interval":         c.Scanner.FullScanInterval,
		"scanner.missing_thumbnail_interval": c.Scanner.MissingThumbnailInterval,
	} {
		if d < 0 {
			errs = append(errs, key+": must not be negative")
		}
	}

	names := make(map[string]bool)
	for i, lib := range c.Libraries {
		prefix := fmt.Sprintf("libraries[%d]", i)
		if lib.Name == "" {
			errs = append(errs, prefix+".name: required")
		} else if names[lib.Name] {
			errs = append(errs, fmt.Sprintf("%s.name: duplicate library %q", prefix, lib.Name))
		}
		names[lib.Name] = true
		if lib.Path == "" {
			errs = append(errs, prefix+".path: required")
		}
		if _, err := library.ParseKind(lib.Type); err != nil {
			errs = append(errs, fmt.Sprintf("%s.type: %v", prefix, err))
		}
	}

	return errs
}

// LibraryDefs converts the configured libraries for upserting. Call
// after Validate.
func (c *Config) LibraryDefs() []*library.Library {
	libs := make([]*library.Library, 0, len(c.Libraries))
	for _, l := range c.Libraries {
		kind, err := library.ParseKind(l.Type)
		if err != nil {
			continue
		}
		libs = append(libs, &library.Library{Name: l.Name, Path: l.Path, Kind: kind})
	}
	return libs
}
