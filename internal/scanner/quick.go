package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/pkg/release"
)

// QuickScan drops stored items whose file is gone and adds files that
// are not stored yet. Series are matched by folder name first, and no
// episode metadata is fetched.
func (s *Scanner) QuickScan(ctx context.Context, lib *library.Library) (*QuickResult, error) {
	start := time.Now()

	// A missing root usually means an unmounted share; never treat it
	// as every file having been deleted.
	if ok, err := afero.DirExists(s.fs, lib.Path); err != nil || !ok {
		return nil, fmt.Errorf("quick scan %s: library root %s is not accessible", lib.Name, lib.Path)
	}

	sess, err := s.newSession(lib, false)
	if err != nil {
		return nil, fmt.Errorf("quick scan %s: %w", lib.Name, err)
	}
	sess.phase(PhaseInitializing)
	s.publishStarted(ctx, sess, "quick")
	res := &QuickResult{RunID: sess.runID}

	for path, id := range sess.paths {
		if ok, _ := afero.Exists(s.fs, path); ok {
			continue
		}
		if err := s.store.DeleteItem(id); err != nil {
			return res, fmt.Errorf("quick scan %s: %w", lib.Name, err)
		}
		delete(sess.paths, path)
		res.FilesRemoved++
		sess.log.Info("removed missing file", "path", path)
	}

	sess.phase(PhaseWalking)
	if lib.Kind == library.KindMovie {
		err = s.scanMovies(ctx, sess, lib.Path)
	} else {
		err = s.quickShows(ctx, sess)
	}
	res.FilesAdded = sess.result.EpisodesAdded + sess.result.MoviesAdded
	sess.phase(PhaseDraining)
	sess.phase(PhaseDone)

	s.publishCompleted(ctx, sess, "quick", &events.ScanCompleted{
		FilesAdded:   res.FilesAdded,
		FilesRemoved: res.FilesRemoved,
	}, start, err)
	if err != nil {
		return res, fmt.Errorf("quick scan %s: %w", lib.Name, err)
	}

	if res.FilesAdded > 0 || res.FilesRemoved > 0 {
		sess.log.Info("quick scan complete",
			"files_added", res.FilesAdded,
			"files_removed", res.FilesRemoved,
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		sess.log.Debug("quick scan complete, no changes")
	}
	return res, nil
}

// quickShows adds new episode files, resolving a series only for
// folders that have new files and no stored series of the same name.
func (s *Scanner) quickShows(ctx context.Context, sess *session) error {
	lib := sess.lib
	stored, _, err := s.store.ListSeries(library.SeriesFilter{LibraryID: &lib.ID})
	if err != nil {
		return err
	}
	for _, sr := range stored {
		e := &seriesEntry{series: sr, rec: recordFrom(sr), reused: true}
		if sr.Path != "" {
			sess.byName[release.NormalizeName(filepath.Base(sr.Path))] = e
		}
		if key := release.NormalizeName(sr.Name); key != "" {
			if _, ok := sess.byName[key]; !ok {
				sess.byName[key] = e
			}
		}
	}

	entries, err := s.readDir(lib.Path)
	if err != nil {
		return fmt.Errorf("read library root: %w", err)
	}
	if s.ignored(lib.Path) {
		return nil
	}
	for _, fi := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(lib.Path, fi.Name())
		if !fi.IsDir() {
			if _, ok := sess.paths[path]; ok || !s.isVideo(fi.Name()) {
				continue
			}
			parsed, ok := release.ParseEpisode(fi.Name())
			if !ok || parsed.ShowName == "" {
				continue
			}
			if err := s.quickFolder(ctx, sess, parsed.ShowName, "", []string{path}); err != nil {
				return err
			}
			continue
		}
		if s.skipDir(path) {
			continue
		}
		var fresh []string
		for _, f := range s.collectVideos(sess, path, map[string]bool{}) {
			if _, ok := sess.paths[f]; !ok {
				fresh = append(fresh, f)
			}
		}
		if len(fresh) == 0 {
			continue
		}
		if err := s.quickFolder(ctx, sess, fi.Name(), path, fresh); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) quickFolder(ctx context.Context, sess *session, folder, path string, files []string) error {
	entry, ok := sess.byName[release.NormalizeName(folder)]
	if !ok {
		var err error
		if entry, err = s.seriesFor(ctx, sess, folder, path); err != nil {
			return err
		}
	}
	return s.addEpisodes(ctx, sess, entry, files)
}
