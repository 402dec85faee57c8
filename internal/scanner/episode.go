package scanner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/pkg/release"
)

// scanShows treats every top-level folder of the library as one series.
// Video files directly in the root are grouped by their parsed show name.
func (s *Scanner) scanShows(ctx context.Context, sess *session) error {
	root := sess.lib.Path
	entries, err := s.readDir(root)
	if err != nil {
		return fmt.Errorf("read library root: %w", err)
	}
	if s.ignored(root) {
		sess.log.Info("library root is ignored", "path", root)
		return nil
	}

	for _, fi := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(root, fi.Name())

		if fi.IsDir() {
			if s.skipDir(path) {
				sess.log.Debug("skipping folder", "path", path)
				continue
			}
			files := s.collectVideos(sess, path, map[string]bool{})
			if len(files) == 0 {
				continue
			}
			sess.log.Info("scanning show folder", "folder", fi.Name(), "files", len(files))
			entry, err := s.seriesFor(ctx, sess, fi.Name(), path)
			if err != nil {
				return err
			}
			if err := s.addEpisodes(ctx, sess, entry, files); err != nil {
				return err
			}
			continue
		}

		if !s.isVideo(fi.Name()) {
			continue
		}
		parsed, ok := release.ParseEpisode(fi.Name())
		if !ok || parsed.ShowName == "" {
			sess.log.Debug("unparseable file in library root", "file", fi.Name())
			continue
		}
		sess.log.Warn("episode file in library root", "file", fi.Name())
		entry, ok := sess.byName[release.NormalizeName(parsed.ShowName)]
		if !ok {
			if entry, err = s.seriesFor(ctx, sess, parsed.ShowName, ""); err != nil {
				return err
			}
		}
		if err := s.addEpisodes(ctx, sess, entry, []string{path}); err != nil {
			return err
		}
	}
	return nil
}

// probed is a parsed episode file with its probed runtime.
type probed struct {
	path    string
	episode *release.Episode
	ticks   *int64
}

// probeAll fills in runtimes, running up to probeWorkers probes at once.
// A failed probe leaves the runtime unknown.
func (s *Scanner) probeAll(ctx context.Context, sess *session, items []probed) {
	if s.prober == nil || len(items) == 0 {
		return
	}
	p := pool.New().WithMaxGoroutines(probeWorkers)
	for i := range items {
		p.Go(func() {
			info, err := s.prober.Probe(ctx, items[i].path)
			if err != nil {
				sess.log.Debug("probe failed", "path", items[i].path, "error", err)
				return
			}
			ticks := info.RuntimeTicks
			items[i].ticks = &ticks
		})
	}
	p.Wait()
}

// addEpisodes stores the new files of a series. Files already stored are
// skipped, but get a thumbnail queued if they still have no image.
func (s *Scanner) addEpisodes(ctx context.Context, sess *session, entry *seriesEntry, files []string) error {
	var fresh []probed
	for _, path := range files {
		if id, ok := sess.paths[path]; ok {
			s.ensureThumbnail(sess, id, path)
			continue
		}
		ep, ok := release.ParseEpisode(filepath.Base(path))
		if !ok {
			sess.log.Debug("no episode number", "path", path)
			continue
		}
		fresh = append(fresh, probed{path: path, episode: ep})
	}
	if len(fresh) == 0 {
		return nil
	}

	s.probeAll(ctx, sess, fresh)

	for _, f := range fresh {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := &library.Episode{
			LibraryID:    sess.lib.ID,
			SeriesID:     entry.series.ID,
			Name:         episodeName(f.episode.Episode),
			Path:         f.path,
			Season:       f.episode.Season,
			Number:       f.episode.Episode,
			RuntimeTicks: f.ticks,
		}
		if sess.episodeMetadata && s.resolver != nil && entry.rec != nil && entry.rec.TMDBID != 0 {
			meta, err := s.resolver.Episode(ctx, entry.rec, f.episode.Season, f.episode.Episode)
			switch {
			case err != nil:
				sess.log.Debug("episode metadata failed", "path", f.path, "error", err)
			case meta != nil:
				if meta.Name != "" {
					e.Name = meta.Name
				}
				e.Overview = meta.Overview
				e.PremiereDate = meta.PremiereDate
				e.CommunityRating = meta.CommunityRating
			}
		}

		if err := s.store.AddEpisode(e); err != nil {
			return err
		}
		sess.paths[f.path] = e.ID
		sess.result.EpisodesAdded++
		if entry.reused {
			sess.result.EpisodesFromExistingSeries++
		}
		s.queueThumbnail(sess, e.ID, f.path)
	}
	return nil
}

func (s *Scanner) queueThumbnail(sess *session, itemID int64, path string) {
	if s.queues == nil {
		return
	}
	if err := s.queues.EnqueueThumbnail(itemID, path); err != nil {
		sess.log.Warn("queue thumbnail", "item_id", itemID, "error", err)
	}
}

func (s *Scanner) ensureThumbnail(sess *session, itemID int64, path string) {
	has, err := s.store.HasImage(itemID, library.ImagePrimary)
	if err != nil {
		sess.log.Warn("check image", "item_id", itemID, "error", err)
		return
	}
	if !has {
		s.queueThumbnail(sess, itemID, path)
	}
}
