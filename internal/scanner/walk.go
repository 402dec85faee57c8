package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/vmunix/mediarr/pkg/release"
)

// ignoreMarker excludes a directory and everything below it.
const ignoreMarker = ".ignore"

// ignored reports whether dir carries the marker.
func (s *Scanner) ignored(dir string) bool {
	ok, _ := afero.Exists(s.fs, filepath.Join(dir, ignoreMarker))
	return ok
}

// ignoredUpTo reports whether dir or any ancestor up to root carries
// the marker.
func (s *Scanner) ignoredUpTo(dir, root string) bool {
	root = filepath.Clean(root)
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if s.ignored(d) {
			return true
		}
		if d == root || d == filepath.Dir(d) || !strings.HasPrefix(d, root) {
			return false
		}
	}
}

// skipDir reports whether a directory must not be descended into.
func (s *Scanner) skipDir(path string) bool {
	return release.IsSpecialFolder(filepath.Base(path)) || s.ignored(path)
}

// isExtraFile matches credit-less openings and endings shipped next to
// episodes.
func isExtraFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "creditless") || strings.Contains(lower, "textless") {
		return true
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if strings.HasPrefix(tok, "ncop") || strings.HasPrefix(tok, "nced") {
			return true
		}
	}
	return false
}

// readDir lists dir, following symlinks to report their targets.
func (s *Scanner) readDir(dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	for i, fi := range entries {
		if fi.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if target, err := s.fs.Stat(filepath.Join(dir, fi.Name())); err == nil {
			entries[i] = renamed{FileInfo: target, name: fi.Name()}
		}
	}
	return entries, nil
}

type renamed struct {
	os.FileInfo
	name string
}

func (r renamed) Name() string { return r.name }

// canonical resolves symlinks on the OS filesystem. Other filesystems
// have none, so the cleaned path is already canonical.
func (s *Scanner) canonical(path string) string {
	if _, ok := s.fs.(*afero.OsFs); ok {
		if p, err := filepath.EvalSymlinks(path); err == nil {
			return p
		}
	}
	return filepath.Clean(path)
}

// collectVideos returns the video files below dir, skipping special and
// ignored directories. Unreadable subdirectories are logged and skipped;
// visited breaks symlink loops.
func (s *Scanner) collectVideos(sess *session, dir string, visited map[string]bool) []string {
	canon := s.canonical(dir)
	if visited[canon] {
		sess.log.Warn("symlink loop, skipping", "path", dir)
		return nil
	}
	visited[canon] = true

	entries, err := s.readDir(dir)
	if err != nil {
		sess.log.Warn("cannot read directory", "path", dir, "error", err)
		return nil
	}

	var files []string
	for _, fi := range entries {
		path := filepath.Join(dir, fi.Name())
		switch {
		case fi.IsDir():
			if s.skipDir(path) {
				sess.log.Debug("skipping folder", "path", path)
				continue
			}
			files = append(files, s.collectVideos(sess, path, visited)...)
		case s.isVideo(fi.Name()):
			files = append(files, path)
		}
	}
	return files
}

func (s *Scanner) isVideo(name string) bool {
	return release.IsVideoFile(name, s.extensions) && !isExtraFile(name)
}
