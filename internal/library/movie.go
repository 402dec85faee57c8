package library

import (
	"database/sql"
	"fmt"
	"time"
)

const movieColumns = "id, library_id, name, sort_name, path, runtime_ticks, " + metadataColumns + ", created_at, updated_at"

func scanMovie(scan func(...any) error) (*Movie, error) {
	m := &Movie{}
	var ticks sql.NullInt64
	var meta nullableMetadata
	targets := append([]any{&m.ID, &m.LibraryID, &m.Name, &m.SortName, &m.Path, &ticks}, meta.targets()...)
	targets = append(targets, &m.CreatedAt, &m.UpdatedAt)
	if err := scan(targets...); err != nil {
		return nil, err
	}
	if ticks.Valid {
		m.RuntimeTicks = &ticks.Int64
	}
	m.Metadata = meta.metadata()
	return m, nil
}

func addMovie(q querier, m *Movie) error {
	now := time.Now()
	if m.SortName == "" {
		m.SortName = SortName(m.Name)
	}
	args := append([]any{m.LibraryID, ItemMovie, m.Name, m.SortName, m.Path, m.RuntimeTicks}, metadataArgs(m.Metadata)...)
	args = append(args, now, now)
	result, err := q.Exec(`
		INSERT INTO items (library_id, kind, name, sort_name, path, runtime_ticks, `+metadataColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert movie: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// AddMovie inserts a movie. Sets ID, SortName when empty, CreatedAt and
// UpdatedAt on the struct.
func (s *Store) AddMovie(m *Movie) error { return addMovie(s.db, m) }

// AddMovie inserts a movie within a transaction.
func (t *Tx) AddMovie(m *Movie) error { return addMovie(t.tx, m) }

// GetMovie retrieves a movie by ID.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) GetMovie(id int64) (*Movie, error) {
	m, err := scanMovie(s.db.QueryRow(
		"SELECT "+movieColumns+" FROM items WHERE id = ? AND kind = ?", id, ItemMovie,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// UpdateMovieMetadata merges m into a stored movie with the same rules
// as UpdateSeriesMetadata.
func (s *Store) UpdateMovieMetadata(id int64, m Metadata) error {
	return updateMetadata(s.db, id, ItemMovie, m)
}

// MoviesMissingMetadata returns movies of a library lacking an overview
// or a Primary image.
func (s *Store) MoviesMissingMetadata(libraryID int64) ([]*Movie, error) {
	rows, err := s.db.Query(
		"SELECT "+movieColumns+" FROM items WHERE library_id = ? AND kind = ? AND "+missingMetadataWhere+" ORDER BY id",
		libraryID, ItemMovie)
	if err != nil {
		return nil, fmt.Errorf("list movies missing metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return results, nil
}
