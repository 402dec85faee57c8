// Package queue holds the durable image and thumbnail work queues and
// the workers that drain them.
package queue

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/mediarr/internal/library"
)

// MaxAttempts is the number of failures after which an entry stops
// being handed out until it is enqueued again.
const MaxAttempts = 3

// Status is the state of a queue entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// ErrNotFound indicates the entry does not exist.
var ErrNotFound = errors.New("queue entry not found")

// ImageJob downloads one artwork slot of an item.
type ImageJob struct {
	ID        int64
	ItemID    int64
	Type      library.ImageType
	URL       string
	Attempts  int
	CreatedAt time.Time
}

// QueueID implements Job.
func (j ImageJob) QueueID() int64 { return j.ID }

// ThumbnailJob extracts a frame from an item's video file.
type ThumbnailJob struct {
	ID        int64
	ItemID    int64
	VideoPath string
	Attempts  int
	CreatedAt time.Time
}

// QueueID implements Job.
func (j ThumbnailJob) QueueID() int64 { return j.ID }

// Counts is the number of entries per status.
type Counts struct {
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

// Store persists both queues in the application database.
type Store struct {
	db *sql.DB
}

// NewStore creates a queue store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnqueueImage adds or replaces the download of one image slot. Existing
// entries get the new URL and start over as pending with no attempts.
func (s *Store) EnqueueImage(itemID int64, imageType library.ImageType, url string) error {
	_, err := s.db.Exec(`
		INSERT INTO image_queue (item_id, image_type, url)
		VALUES (?, ?, ?)
		ON CONFLICT(item_id, image_type) DO UPDATE SET
			url = excluded.url,
			status = 'pending',
			attempts = 0`,
		itemID, imageType, url)
	if err != nil {
		return fmt.Errorf("enqueue image for item %d: %w", itemID, err)
	}
	return nil
}

// PendingImages returns up to n pending entries, oldest first.
func (s *Store) PendingImages(n int) ([]ImageJob, error) {
	rows, err := s.db.Query(`
		SELECT id, item_id, image_type, url, attempts, created_at
		FROM image_queue
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list pending images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []ImageJob
	for rows.Next() {
		var j ImageJob
		if err := rows.Scan(&j.ID, &j.ItemID, &j.Type, &j.URL, &j.Attempts, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CompleteImage removes a finished entry.
func (s *Store) CompleteImage(id int64) error {
	return complete(s.db, "image_queue", id)
}

// FailImage records a failed attempt and reports whether the entry is
// now terminal.
func (s *Store) FailImage(id int64) (bool, error) {
	return fail(s.db, "image_queue", id)
}

// ImageCounts returns the image queue size per status.
func (s *Store) ImageCounts() (Counts, error) {
	return counts(s.db, "image_queue")
}

// EnqueueThumbnail adds or resets the thumbnail job of an item.
func (s *Store) EnqueueThumbnail(itemID int64, videoPath string) error {
	_, err := s.db.Exec(`
		INSERT INTO thumbnail_queue (item_id, video_path)
		VALUES (?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			video_path = excluded.video_path,
			status = 'pending',
			attempts = 0`,
		itemID, videoPath)
	if err != nil {
		return fmt.Errorf("enqueue thumbnail for item %d: %w", itemID, err)
	}
	return nil
}

// PendingThumbnails returns up to n pending entries, oldest first.
func (s *Store) PendingThumbnails(n int) ([]ThumbnailJob, error) {
	rows, err := s.db.Query(`
		SELECT id, item_id, video_path, attempts, created_at
		FROM thumbnail_queue
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list pending thumbnails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []ThumbnailJob
	for rows.Next() {
		var j ThumbnailJob
		if err := rows.Scan(&j.ID, &j.ItemID, &j.VideoPath, &j.Attempts, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thumbnail job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CompleteThumbnail removes a finished entry.
func (s *Store) CompleteThumbnail(id int64) error {
	return complete(s.db, "thumbnail_queue", id)
}

// FailThumbnail records a failed attempt and reports whether the entry
// is now terminal.
func (s *Store) FailThumbnail(id int64) (bool, error) {
	return fail(s.db, "thumbnail_queue", id)
}

// ThumbnailCounts returns the thumbnail queue size per status.
func (s *Store) ThumbnailCounts() (Counts, error) {
	return counts(s.db, "thumbnail_queue")
}

// ResetFailedThumbnails makes every failed thumbnail entry pending again.
func (s *Store) ResetFailedThumbnails() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE thumbnail_queue SET status = 'pending', attempts = 0 WHERE status = 'failed'")
	if err != nil {
		return 0, fmt.Errorf("reset failed thumbnails: %w", err)
	}
	return result.RowsAffected()
}

// QueueMissingThumbnails queues every episode and movie that has a file
// but no Primary image. Items already queued are left as they are.
func (s *Store) QueueMissingThumbnails() (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO thumbnail_queue (item_id, video_path)
		SELECT i.id, i.path
		FROM items i
		WHERE i.kind IN (?, ?)
			AND i.path IS NOT NULL AND i.path != ''
			AND NOT EXISTS (
				SELECT 1 FROM images img
				WHERE img.item_id = i.id AND img.image_type = ?
			)
		ON CONFLICT(item_id) DO NOTHING`,
		library.ItemEpisode, library.ItemMovie, library.ImagePrimary)
	if err != nil {
		return 0, fmt.Errorf("queue missing thumbnails: %w", err)
	}
	return result.RowsAffected()
}

// table is always one of the two queue tables named in this file.
func complete(db *sql.DB, table string, id int64) error {
	if _, err := db.Exec("DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("complete %s entry %d: %w", table, id, err)
	}
	return nil
}

func fail(db *sql.DB, table string, id int64) (bool, error) {
	var status Status
	err := db.QueryRow(fmt.Sprintf(`
		UPDATE %s SET
			attempts = attempts + 1,
			status = CASE WHEN attempts + 1 >= %d THEN 'failed' ELSE 'pending' END
		WHERE id = ?
		RETURNING status`, table, MaxAttempts), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("fail %s entry %d: %w", table, id, err)
	}
	return status == StatusFailed, nil
}

func counts(db *sql.DB, table string) (Counts, error) {
	var c Counts
	rows, err := db.Query("SELECT status, COUNT(*) FROM " + table + " GROUP BY status")
	if err != nil {
		return c, fmt.Errorf("count %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return c, fmt.Errorf("scan %s count: %w", table, err)
		}
		switch status {
		case StatusPending:
			c.Pending = n
		case StatusFailed:
			c.Failed = n
		}
	}
	return c, rows.Err()
}
