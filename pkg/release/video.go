package release

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultVideoExtensions are used when no extensions are configured.
var DefaultVideoExtensions = []string{
	"mkv", "mp4", "avi", "mov", "wmv", "flv", "webm", "m4v", "mpg", "mpeg",
	"ts", "m2ts", "mts", "vob", "ogm", "ogv", "divx", "xvid", "rmvb", "rm",
	"asf", "3gp", "3g2", "f4v",
}

// IsVideoFile reports whether path has one of exts (without dots,
// lowercase). An empty exts falls back to DefaultVideoExtensions.
func IsVideoFile(path string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	if len(exts) == 0 {
		exts = DefaultVideoExtensions
	}
	return slices.Contains(exts, ext)
}
