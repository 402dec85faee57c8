package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/pkg/release"
)

// providerOrder is the order provider IDs are tried when looking for an
// existing series.
var providerOrder = []library.ProviderKey{
	library.ProviderAniList,
	library.ProviderTMDB,
	library.ProviderMAL,
	library.ProviderAniDB,
}

func recordID(rec *metadata.Record, key library.ProviderKey) int64 {
	switch key {
	case library.ProviderAniList:
		return rec.AniListID
	case library.ProviderTMDB:
		return rec.TMDBID
	case library.ProviderMAL:
		return rec.MALID
	case library.ProviderAniDB:
		return rec.AniDBID
	}
	return 0
}

func cacheKeys(rec *metadata.Record) []string {
	if rec == nil {
		return nil
	}
	var keys []string
	for _, p := range providerOrder {
		if id := recordID(rec, p); id != 0 {
			keys = append(keys, string(p)+":"+strconv.FormatInt(id, 10))
		}
	}
	return keys
}

func (sess *session) remember(e *seriesEntry, folder string) {
	for _, k := range cacheKeys(e.rec) {
		if _, ok := sess.byProvider[k]; !ok {
			sess.byProvider[k] = e
		}
	}
	if folder != "" {
		sess.byName[release.NormalizeName(folder)] = e
	}
}

// seriesFor returns the series a show folder belongs to, reusing an
// existing one when any provider ID or the normalized name matches.
// Lookup order: session cache, stored provider IDs, stored names.
func (s *Scanner) seriesFor(ctx context.Context, sess *session, folder, path string) (*seriesEntry, error) {
	name, year := release.ExtractYear(folder)
	if name == "" {
		name = folder
	}
	class := release.Classify(folder, false)

	rec, reason, err := s.resolve(ctx, sess.log, name, year, class)
	if err != nil {
		return nil, err
	}

	if rec != nil {
		for _, k := range cacheKeys(rec) {
			if e, ok := sess.byProvider[k]; ok {
				sess.log.Info("reusing series from this scan", "folder", folder, "series_id", e.series.ID, "key", k)
				return s.reuse(sess, e.series, rec, folder)
			}
		}
		for _, p := range providerOrder {
			id := recordID(rec, p)
			if id == 0 {
				continue
			}
			existing, err := s.store.FindSeriesByProviderID(sess.lib.ID, p, id)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				sess.log.Info("reusing stored series", "folder", folder, "series_id", existing.ID, "provider", string(p))
				return s.reuse(sess, existing, rec, folder)
			}
		}
	}

	existing, err := s.findByName(sess.lib.ID, folder)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		sess.log.Info("reusing series by name", "folder", folder, "series_id", existing.ID, "name", existing.Name)
		return s.reuse(sess, existing, rec, folder)
	}

	series := &library.Series{
		LibraryID: sess.lib.ID,
		Name:      name,
		Path:      path,
		Metadata:  library.Metadata{Year: year},
	}
	if rec != nil {
		if rec.Name != "" {
			series.Name = rec.Name
		}
		series.Metadata = metadataFrom(rec, year)
	}
	if err := s.store.AddSeries(series); err != nil {
		return nil, err
	}
	sess.result.SeriesAdded++

	e := &seriesEntry{series: series, rec: rec}
	if rec == nil {
		s.markUnmatched(ctx, sess, series, folder, name, year, reason)
	} else {
		s.attach(sess.log, series.ID, rec)
	}
	sess.remember(e, folder)
	sess.log.Debug("series created", "folder", folder, "series_id", series.ID, "name", series.Name, "provider", providerOf(rec))
	return e, nil
}

// reuse merges rec into an existing series and records the outcome.
func (s *Scanner) reuse(sess *session, series *library.Series, rec *metadata.Record, folder string) (*seriesEntry, error) {
	sess.result.SeriesReused++
	if rec != nil {
		if err := s.store.UpdateSeriesMetadata(series.ID, metadataFrom(rec, 0)); err != nil {
			return nil, err
		}
		s.attach(sess.log, series.ID, rec)
		if err := s.store.ClearUnmatched(series.ID); err != nil {
			sess.log.Warn("clear unmatched record", "series_id", series.ID, "error", err)
		}
	} else {
		rec = recordFrom(series)
	}
	e := &seriesEntry{series: series, rec: rec, reused: true}
	sess.remember(e, folder)
	return e, nil
}

// findByName returns the oldest series of the library whose name or
// folder normalizes to the same string as folder.
func (s *Scanner) findByName(libraryID int64, folder string) (*library.Series, error) {
	want := release.NormalizeName(folder)
	if want == "" {
		return nil, nil
	}
	all, _, err := s.store.ListSeries(library.SeriesFilter{LibraryID: &libraryID})
	if err != nil {
		return nil, err
	}
	var best *library.Series
	for _, sr := range all {
		if release.NormalizeName(sr.Name) != want && release.NormalizeName(filepath.Base(sr.Path)) != want {
			continue
		}
		if best == nil || sr.ID < best.ID {
			best = sr
		}
	}
	return best, nil
}

func (s *Scanner) markUnmatched(ctx context.Context, sess *session, series *library.Series, folder, title string, year int, reason string) {
	u := &library.Unmatched{
		LibraryID:      sess.lib.ID,
		SeriesID:       series.ID,
		FolderName:     folder,
		AttemptedTitle: title,
		AttemptedYear:  year,
		FailureReason:  reason,
	}
	if err := s.store.MarkUnmatched(u); err != nil {
		sess.log.Warn("track unmatched series", "series_id", series.ID, "error", err)
		return
	}
	s.publish(ctx, &events.SeriesUnmatched{
		BaseEvent:    events.NewBaseEvent(events.EventSeriesUnmatched, events.EntitySeries, series.ID),
		LibraryID:    sess.lib.ID,
		Folder:       folder,
		Title:        title,
		Year:         year,
		AttemptCount: u.AttemptCount,
		Reason:       reason,
	})
}

// attach queues artwork and links reference data of rec to an item.
// Failures are logged; the item itself is already stored.
func (s *Scanner) attach(log *slog.Logger, itemID int64, rec *metadata.Record) {
	if s.queues != nil {
		if rec.PosterURL != "" {
			if err := s.queues.EnqueueImage(itemID, library.ImagePrimary, rec.PosterURL); err != nil {
				log.Warn("queue poster", "item_id", itemID, "error", err)
			}
		}
		if rec.BackdropURL != "" {
			if err := s.queues.EnqueueImage(itemID, library.ImageBackdrop, rec.BackdropURL); err != nil {
				log.Warn("queue backdrop", "item_id", itemID, "error", err)
			}
		}
	}
	if err := s.store.LinkGenres(itemID, rec.Genres); err != nil {
		log.Warn("link genres", "item_id", itemID, "error", err)
	}
	if rec.Studio != "" {
		if err := s.store.LinkStudio(itemID, rec.Studio); err != nil {
			log.Warn("link studio", "item_id", itemID, "error", err)
		}
	}
	if len(rec.Cast) > 0 {
		if err := s.store.LinkCast(itemID, castFrom(rec.Cast)); err != nil {
			log.Warn("link cast", "item_id", itemID, "error", err)
		}
	}
}

// metadataFrom converts a resolved record. fallbackYear is used when the
// record has none.
func metadataFrom(rec *metadata.Record, fallbackYear int) library.Metadata {
	year := rec.Year
	if year == 0 {
		year = fallbackYear
	}
	return library.Metadata{
		OriginalName:    rec.OriginalName,
		Overview:        rec.Overview,
		Year:            year,
		PremiereDate:    rec.PremiereDate,
		CommunityRating: rec.CommunityRating,
		AniListID:       rec.AniListID,
		AniDBID:         rec.AniDBID,
		MALID:           rec.MALID,
		KitsuID:         rec.KitsuID,
		TMDBID:          rec.TMDBID,
		IMDBID:          rec.IMDBID,
	}
}

// recordFrom rebuilds the provider IDs of a stored series so episode
// lookups work for series reused without a fresh match.
func recordFrom(series *library.Series) *metadata.Record {
	m := series.Metadata
	if m.AniListID == 0 && m.AniDBID == 0 && m.MALID == 0 && m.TMDBID == 0 {
		return nil
	}
	return &metadata.Record{
		Name:      series.Name,
		Year:      m.Year,
		AniListID: m.AniListID,
		AniDBID:   m.AniDBID,
		MALID:     m.MALID,
		KitsuID:   m.KitsuID,
		TMDBID:    m.TMDBID,
		IMDBID:    m.IMDBID,
	}
}

func castFrom(cast []metadata.CastMember) []library.Person {
	people := make([]library.Person, 0, len(cast))
	for _, c := range cast {
		key := c.PersonID
		if key == "" {
			continue
		}
		people = append(people, library.Person{
			ProviderKey: key,
			Name:        c.Name,
			Role:        c.Role,
			Character:   c.Character,
			ImageURL:    c.ImageURL,
		})
	}
	return people
}

func providerOf(rec *metadata.Record) string {
	if rec == nil {
		return metadata.ProviderNone.String()
	}
	return rec.Provider.String()
}

func episodeName(n int) string {
	return fmt.Sprintf("Episode %d", n)
}
