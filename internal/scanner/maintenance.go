package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/pkg/release"
)

// Refresh deletes every item of the library and scans it from scratch.
//
// Deleting a series cascades to its episodes, images, credits, queue
// entries and unmatched records. Anything else keyed on item IDs is lost
// as well.
func (s *Scanner) Refresh(ctx context.Context, lib *library.Library) (*Result, error) {
	n, err := s.store.DeleteLibraryItems(lib.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", lib.Name, err)
	}
	s.log.Info("library cleared for refresh", "library", lib.Name, "items_deleted", n)
	return s.fullScan(ctx, lib, "refresh")
}

// QuickScanAll quick-scans every library. A failing library does not
// stop the others; all failures are returned together.
func (s *Scanner) QuickScanAll(ctx context.Context) (*QuickResult, error) {
	libs, err := s.store.ListLibraries()
	if err != nil {
		return nil, err
	}
	total := &QuickResult{}
	var errs *multierror.Error
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := s.QuickScan(ctx, lib)
		if res != nil {
			total.FilesAdded += res.FilesAdded
			total.FilesRemoved += res.FilesRemoved
		}
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return total, errs.ErrorOrNil()
}

// RefreshAll refreshes every library, continuing past failures.
func (s *Scanner) RefreshAll(ctx context.Context) (*Result, error) {
	libs, err := s.store.ListLibraries()
	if err != nil {
		return nil, err
	}
	total := &Result{}
	var errs *multierror.Error
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := s.Refresh(ctx, lib)
		if res != nil {
			total.add(res)
		}
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return total, errs.ErrorOrNil()
}

// MissingResult counts a missing-metadata pass.
type MissingResult struct {
	SeriesScanned int `json:"series_scanned"`
	SeriesUpdated int `json:"series_updated"`
	MoviesScanned int `json:"movies_scanned"`
	MoviesUpdated int `json:"movies_updated"`
}

// ScanMissingMetadata re-resolves series and movies of a library that
// have no overview or no Primary image, merging whatever is found.
func (s *Scanner) ScanMissingMetadata(ctx context.Context, lib *library.Library) (*MissingResult, error) {
	start := time.Now()
	log := s.log.With("library", lib.Name)
	res := &MissingResult{}
	defer func() {
		if s.resolver != nil {
			s.resolver.UnloadCatalog()
		}
	}()

	series, err := s.store.SeriesMissingMetadata(lib.ID)
	if err != nil {
		return nil, fmt.Errorf("missing metadata %s: %w", lib.Name, err)
	}
	for _, sr := range series {
		res.SeriesScanned++
		folder := sr.Name
		if sr.Path != "" {
			folder = filepath.Base(sr.Path)
		}
		rec, _, err := s.resolve(ctx, log, sr.Name, sr.Year, release.Classify(folder, false))
		if err != nil {
			return res, err
		}
		if rec == nil {
			continue
		}
		if err := s.store.UpdateSeriesMetadata(sr.ID, metadataFrom(rec, 0)); err != nil {
			log.Warn("update series", "series_id", sr.ID, "error", err)
			continue
		}
		s.attach(log, sr.ID, rec)
		_ = s.store.ClearUnmatched(sr.ID)
		res.SeriesUpdated++
	}

	movies, err := s.store.MoviesMissingMetadata(lib.ID)
	if err != nil {
		return res, fmt.Errorf("missing metadata %s: %w", lib.Name, err)
	}
	for _, m := range movies {
		res.MoviesScanned++
		rec, _, err := s.resolve(ctx, log, m.Name, m.Year, release.ClassMovie)
		if err != nil {
			return res, err
		}
		if rec == nil {
			continue
		}
		if err := s.store.UpdateMovieMetadata(m.ID, metadataFrom(rec, 0)); err != nil {
			log.Warn("update movie", "movie_id", m.ID, "error", err)
			continue
		}
		s.attach(log, m.ID, rec)
		res.MoviesUpdated++
	}

	log.Info("missing metadata pass complete",
		"series_updated", res.SeriesUpdated,
		"series_scanned", res.SeriesScanned,
		"movies_updated", res.MoviesUpdated,
		"movies_scanned", res.MoviesScanned,
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// UpdateMissingMediaInfo probes episodes and movies with no runtime and
// returns how many were updated.
func (s *Scanner) UpdateMissingMediaInfo(ctx context.Context) (int, error) {
	if s.prober == nil {
		return 0, nil
	}
	items, err := s.store.ItemsMissingRuntime(0)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		info, err := s.prober.Probe(ctx, it.Path)
		if err != nil {
			s.log.Debug("probe failed", "path", it.Path, "error", err)
			continue
		}
		if err := s.store.SetRuntime(it.ID, info.RuntimeTicks); err != nil {
			return updated, err
		}
		updated++
	}
	s.log.Info("media info updated", "items", updated, "candidates", len(items))
	return updated, nil
}

// RetryResult counts an unmatched-series retry pass.
type RetryResult struct {
	Attempted int `json:"attempted"`
	Matched   int `json:"matched"`
}

// RetryUnmatched re-resolves series recorded as unmatched. A match
// updates the series and clears the record; another miss counts as one
// more attempt, so each series is retried a bounded number of times.
func (s *Scanner) RetryUnmatched(ctx context.Context) (*RetryResult, error) {
	if s.resolver == nil {
		return &RetryResult{}, nil
	}
	pending, err := s.store.UnmatchedForRetry(library.DefaultRetryBatch)
	if err != nil {
		return nil, err
	}
	defer s.resolver.UnloadCatalog()

	res := &RetryResult{}
	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		series, err := s.store.GetSeries(u.SeriesID)
		if errors.Is(err, library.ErrNotFound) {
			_ = s.store.ClearUnmatched(u.SeriesID)
			continue
		}
		if err != nil {
			return res, err
		}
		res.Attempted++

		log := s.log.With("series_id", series.ID, "folder", u.FolderName)
		rec, reason, err := s.resolve(ctx, log, u.AttemptedTitle, u.AttemptedYear, release.Classify(u.FolderName, false))
		if err != nil {
			return res, err
		}
		if rec == nil {
			u.FailureReason = reason
			if err := s.store.MarkUnmatched(u); err != nil {
				return res, err
			}
			continue
		}
		if err := s.matched(log, series, rec); err != nil {
			return res, err
		}
		res.Matched++
	}

	if res.Attempted > 0 {
		s.log.Info("unmatched retry complete", "attempted", res.Attempted, "matched", res.Matched, "remaining", res.Attempted-res.Matched)
	}
	return res, nil
}

func (s *Scanner) matched(log *slog.Logger, series *library.Series, rec *metadata.Record) error {
	if err := s.store.UpdateSeriesMetadata(series.ID, metadataFrom(rec, 0)); err != nil {
		return err
	}
	s.attach(log, series.ID, rec)
	if err := s.store.ClearUnmatched(series.ID); err != nil {
		return err
	}
	log.Info("unmatched series resolved", "title", rec.Name, "provider", rec.Provider.String())
	return nil
}
