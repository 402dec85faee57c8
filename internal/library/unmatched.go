package library

import (
	"database/sql"
	"fmt"
	"time"
)

// MaxUnmatchedAttempts is the attempt count after which a series is no
// longer retried.
const MaxUnmatchedAttempts = 3

// DefaultRetryBatch caps UnmatchedForRetry when no limit is given.
const DefaultRetryBatch = 50

// MarkUnmatched records a failed lookup. A repeat failure for the same
// series increments attempt_count and refreshes the attempt details.
func (s *Store) MarkUnmatched(u *Unmatched) error {
	now := time.Now()
	err := s.db.QueryRow(`
		INSERT INTO unmatched_series (library_id, series_id, folder_name, attempted_title, attempted_year,
			failure_reason, attempt_count, last_attempt_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(library_id, series_id) DO UPDATE SET
			folder_name = excluded.folder_name,
			attempted_title = excluded.attempted_title,
			attempted_year = excluded.attempted_year,
			failure_reason = excluded.failure_reason,
			attempt_count = unmatched_series.attempt_count + 1,
			last_attempt_at = excluded.last_attempt_at
		RETURNING id, attempt_count`,
		u.LibraryID, u.SeriesID, u.FolderName, u.AttemptedTitle, nullInt(u.AttemptedYear),
		u.FailureReason, now, now,
	).Scan(&u.ID, &u.AttemptCount)
	if err != nil {
		return fmt.Errorf("mark unmatched series %d: %w", u.SeriesID, mapSQLiteError(err))
	}
	u.LastAttemptAt = now
	return nil
}

// ClearUnmatched drops the unmatched record of a series, if any.
func (s *Store) ClearUnmatched(seriesID int64) error {
	if _, err := s.db.Exec("DELETE FROM unmatched_series WHERE series_id = ?", seriesID); err != nil {
		return fmt.Errorf("clear unmatched series %d: %w", seriesID, err)
	}
	return nil
}

// UnmatchedForRetry returns records still under MaxUnmatchedAttempts,
// least recently attempted first. limit <= 0 means DefaultRetryBatch.
func (s *Store) UnmatchedForRetry(limit int) ([]*Unmatched, error) {
	if limit <= 0 {
		limit = DefaultRetryBatch
	}
	return s.queryUnmatched(`
		SELECT `+unmatchedColumns+` FROM unmatched_series
		WHERE attempt_count < ? ORDER BY last_attempt_at, id LIMIT ?`,
		MaxUnmatchedAttempts, limit)
}

// ListUnmatched returns the unmatched records of a library, or of every
// library when libraryID is 0.
func (s *Store) ListUnmatched(libraryID int64) ([]*Unmatched, error) {
	if libraryID == 0 {
		return s.queryUnmatched("SELECT " + unmatchedColumns + " FROM unmatched_series ORDER BY library_id, folder_name")
	}
	return s.queryUnmatched("SELECT "+unmatchedColumns+" FROM unmatched_series WHERE library_id = ? ORDER BY folder_name", libraryID)
}

const unmatchedColumns = `id, library_id, series_id, folder_name, attempted_title, attempted_year,
	failure_reason, attempt_count, last_attempt_at`

func (s *Store) queryUnmatched(query string, args ...any) ([]*Unmatched, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unmatched: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Unmatched
	for rows.Next() {
		u := &Unmatched{}
		var year sql.NullInt64
		if err := rows.Scan(&u.ID, &u.LibraryID, &u.SeriesID, &u.FolderName, &u.AttemptedTitle, &year,
			&u.FailureReason, &u.AttemptCount, &u.LastAttemptAt); err != nil {
			return nil, fmt.Errorf("scan unmatched: %w", err)
		}
		u.AttemptedYear = int(year.Int64)
		results = append(results, u)
	}
	return results, rows.Err()
}
