package scanner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/pkg/release"
)

// scanMovies stores every new video file below dir as its own movie.
func (s *Scanner) scanMovies(ctx context.Context, sess *session, dir string) error {
	if _, err := s.readDir(dir); err != nil {
		return fmt.Errorf("read library root: %w", err)
	}
	if s.ignoredUpTo(dir, sess.lib.Path) {
		sess.log.Info("folder is ignored", "path", dir)
		return nil
	}

	var fresh []probed
	for _, path := range s.collectVideos(sess, dir, map[string]bool{}) {
		if id, ok := sess.paths[path]; ok {
			s.ensureThumbnail(sess, id, path)
			continue
		}
		fresh = append(fresh, probed{path: path})
	}
	s.probeAll(ctx, sess, fresh)

	for _, f := range fresh {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.addMovie(ctx, sess, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) addMovie(ctx context.Context, sess *session, f probed) error {
	parsed := release.ParseMovie(filepath.Base(f.path))
	title := parsed.Title
	if title == "" {
		title = filepath.Base(f.path)
	}

	rec, _, err := s.resolve(ctx, sess.log, title, parsed.Year, release.ClassMovie)
	if err != nil {
		return err
	}

	m := &library.Movie{
		LibraryID:    sess.lib.ID,
		Name:         title,
		Path:         f.path,
		RuntimeTicks: f.ticks,
		Metadata:     library.Metadata{Year: parsed.Year},
	}
	if rec != nil {
		if rec.Name != "" {
			m.Name = rec.Name
		}
		m.Metadata = metadataFrom(rec, parsed.Year)
	}
	if err := s.store.AddMovie(m); err != nil {
		return err
	}
	sess.paths[f.path] = m.ID
	sess.result.MoviesAdded++

	if rec != nil {
		s.attach(sess.log, m.ID, rec)
	}
	s.queueThumbnail(sess, m.ID, f.path)
	sess.log.Debug("movie created", "movie_id", m.ID, "name", m.Name, "year", m.Year, "provider", providerOf(rec))
	return nil
}
