package library

import (
	"fmt"
	"time"
)

// UpsertLibrary inserts lib by name or updates the stored path and kind.
// Sets ID on the struct.
func (s *Store) UpsertLibrary(lib *Library) error {
	now := time.Now()
	err := s.db.QueryRow(`
		INSERT INTO libraries (name, path, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, kind = excluded.kind, updated_at = excluded.updated_at
		RETURNING id`,
		lib.Name, lib.Path, lib.Kind, now, now,
	).Scan(&lib.ID)
	if err != nil {
		return fmt.Errorf("upsert library %q: %w", lib.Name, mapSQLiteError(err))
	}
	return nil
}

// GetLibrary retrieves a library by ID.
// Returns ErrNotFound if the library does not exist.
func (s *Store) GetLibrary(id int64) (*Library, error) {
	lib := &Library{}
	err := s.db.QueryRow("SELECT id, name, path, kind FROM libraries WHERE id = ?", id).
		Scan(&lib.ID, &lib.Name, &lib.Path, &lib.Kind)
	if err != nil {
		return nil, fmt.Errorf("get library %d: %w", id, mapSQLiteError(err))
	}
	return lib, nil
}

// ListLibraries returns all libraries ordered by ID.
func (s *Store) ListLibraries() ([]*Library, error) {
	rows, err := s.db.Query("SELECT id, name, path, kind FROM libraries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var libs []*Library
	for rows.Next() {
		lib := &Library{}
		if err := rows.Scan(&lib.ID, &lib.Name, &lib.Path, &lib.Kind); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		libs = append(libs, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return libs, nil
}
