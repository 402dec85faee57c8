package library

import (
	"database/sql"
	"fmt"
	"time"
)

// PathExists reports whether any item of the library has path.
func (s *Store) PathExists(libraryID int64, path string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM items WHERE library_id = ? AND path = ?)", libraryID, path,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check path: %w", err)
	}
	return exists, nil
}

// ItemPaths maps every episode and movie path of a library to its item ID.
func (s *Store) ItemPaths(libraryID int64) (map[string]int64, error) {
	rows, err := s.db.Query(
		"SELECT id, path FROM items WHERE library_id = ? AND kind IN (?, ?) AND path IS NOT NULL",
		libraryID, ItemEpisode, ItemMovie)
	if err != nil {
		return nil, fmt.Errorf("list item paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	paths := make(map[string]int64)
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("scan item path: %w", err)
		}
		paths[path] = id
	}
	return paths, rows.Err()
}

// DeleteItem removes one item. Children, images, credits and queue rows
// go with it through ON DELETE CASCADE.
func (s *Store) DeleteItem(id int64) error {
	if _, err := s.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteLibraryItems removes every item of a library and returns how
// many rows were deleted.
//
// Dependent rows (images, genre/studio/person links, queue entries,
// unmatched records) are only removed when the connection has
// foreign_keys enabled. On a connection without the pragma they are
// left orphaned.
func (s *Store) DeleteLibraryItems(libraryID int64) (int64, error) {
	var total int64
	// Episodes first so the count does not depend on cascade order.
	for _, query := range []string{
		"DELETE FROM items WHERE library_id = ? AND parent_id IS NOT NULL",
		"DELETE FROM items WHERE library_id = ?",
	} {
		result, err := s.db.Exec(query, libraryID)
		if err != nil {
			return total, fmt.Errorf("delete library %d items: %w", libraryID, mapSQLiteError(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// ItemsMissingRuntime returns playable items with a path and no runtime.
func (s *Store) ItemsMissingRuntime(limit int) ([]MediaItem, error) {
	query := "SELECT id, kind, path FROM items WHERE kind IN (?, ?) AND path IS NOT NULL AND runtime_ticks IS NULL ORDER BY id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(query, ItemEpisode, ItemMovie)
	if err != nil {
		return nil, fmt.Errorf("list items missing runtime: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []MediaItem
	for rows.Next() {
		var it MediaItem
		if err := rows.Scan(&it.ID, &it.Kind, &it.Path); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetRuntime stores the runtime of an item in ticks.
func (s *Store) SetRuntime(id, ticks int64) error {
	if _, err := s.db.Exec("UPDATE items SET runtime_ticks = ?, updated_at = ? WHERE id = ?", ticks, time.Now(), id); err != nil {
		return fmt.Errorf("set runtime %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// SetImage records the cached file for an item's image slot, replacing
// any earlier file.
func (s *Store) SetImage(itemID int64, typ ImageType, path string) error {
	_, err := s.db.Exec(`
		INSERT INTO images (item_id, image_type, path, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id, image_type) DO UPDATE SET path = excluded.path`,
		itemID, typ, path, time.Now())
	if err != nil {
		return fmt.Errorf("set image %d/%s: %w", itemID, typ, mapSQLiteError(err))
	}
	return nil
}

// HasImage reports whether an item's image slot is filled.
func (s *Store) HasImage(itemID int64, typ ImageType) (bool, error) {
	var path string
	err := s.db.QueryRow("SELECT path FROM images WHERE item_id = ? AND image_type = ?", itemID, typ).Scan(&path)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get image %d/%s: %w", itemID, typ, err)
	}
	return true, nil
}

// CountItems counts a library's items of one kind.
func (s *Store) CountItems(libraryID int64, kind ItemKind) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE library_id = ? AND kind = ?", libraryID, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}
