package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ProviderKey selects a provider ID column for lookups.
type ProviderKey string

const (
	ProviderAniList ProviderKey = "anilist"
	ProviderTMDB    ProviderKey = "tmdb"
	ProviderMAL     ProviderKey = "mal"
	ProviderAniDB   ProviderKey = "anidb"
)

var providerColumns = map[ProviderKey]string{
	ProviderAniList: "anilist_id",
	ProviderTMDB:    "tmdb_id",
	ProviderMAL:     "mal_id",
	ProviderAniDB:   "anidb_id",
}

const seriesColumns = "id, library_id, name, sort_name, path, " + metadataColumns + ", created_at, updated_at"

func scanSeries(scan func(...any) error) (*Series, error) {
	s := &Series{}
	var path sql.NullString
	var m nullableMetadata
	targets := append([]any{&s.ID, &s.LibraryID, &s.Name, &s.SortName, &path}, m.targets()...)
	targets = append(targets, &s.CreatedAt, &s.UpdatedAt)
	if err := scan(targets...); err != nil {
		return nil, err
	}
	s.Path = path.String
	s.Metadata = m.metadata()
	return s, nil
}

func addSeries(q querier, s *Series) error {
	now := time.Now()
	if s.SortName == "" {
		s.SortName = SortName(s.Name)
	}
	args := append([]any{s.LibraryID, ItemSeries, s.Name, s.SortName, nullString(s.Path)}, metadataArgs(s.Metadata)...)
	args = append(args, now, now)
	result, err := q.Exec(`
		INSERT INTO items (library_id, kind, name, sort_name, path, `+metadataColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert series: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// AddSeries inserts a series. Sets ID, SortName when empty, CreatedAt
// and UpdatedAt on the struct.
func (s *Store) AddSeries(series *Series) error { return addSeries(s.db, series) }

// AddSeries inserts a series within a transaction.
func (t *Tx) AddSeries(series *Series) error { return addSeries(t.tx, series) }

// GetSeries retrieves a series by ID.
// Returns ErrNotFound if the series does not exist.
func (s *Store) GetSeries(id int64) (*Series, error) {
	series, err := scanSeries(s.db.QueryRow(
		"SELECT "+seriesColumns+" FROM items WHERE id = ? AND kind = ?", id, ItemSeries,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, mapSQLiteError(err))
	}
	return series, nil
}

// FindSeriesByProviderID finds a series in a library by one provider ID.
// Returns nil, nil if not found.
func (s *Store) FindSeriesByProviderID(libraryID int64, provider ProviderKey, id int64) (*Series, error) {
	col, ok := providerColumns[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	series, err := scanSeries(s.db.QueryRow(
		"SELECT "+seriesColumns+" FROM items WHERE library_id = ? AND kind = ? AND "+col+" = ? ORDER BY id LIMIT 1",
		libraryID, ItemSeries, id,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find series by %s %d: %w", provider, id, err)
	}
	return series, nil
}

// ListSeries returns series matching the filter ordered by sort name.
// Returns (results, totalCount, error).
func (s *Store) ListSeries(f SeriesFilter) ([]*Series, int, error) {
	conditions := []string{"kind = ?"}
	args := []any{ItemSeries}

	if f.LibraryID != nil {
		conditions = append(conditions, "library_id = ?")
		args = append(args, *f.LibraryID)
	}
	if f.Name != nil {
		conditions = append(conditions, "name = ?")
		args = append(args, *f.Name)
	}
	if f.TMDBID != nil {
		conditions = append(conditions, "tmdb_id = ?")
		args = append(args, *f.TMDBID)
	}
	if f.AniListID != nil {
		conditions = append(conditions, "anilist_id = ?")
		args = append(args, *f.AniListID)
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count series: %w", err)
	}

	query := "SELECT " + seriesColumns + " FROM items " + where + " ORDER BY sort_name, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	results, err := querySeries(s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func querySeries(q querier, query string, args ...any) ([]*Series, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Series
	for rows.Next() {
		series, err := scanSeries(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		results = append(results, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return results, nil
}

func updateMetadata(q querier, id int64, kind ItemKind, m Metadata) error {
	args := append(metadataArgs(m), time.Now(), id, kind)
	result, err := q.Exec(`UPDATE items SET `+metadataCoalesce+`, updated_at = ? WHERE id = ? AND kind = ?`, args...)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", strings.ToLower(string(kind)), id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update %s %d: %w", strings.ToLower(string(kind)), id, ErrNotFound)
	}
	return nil
}

// UpdateSeriesMetadata merges m into a stored series. Zero fields of m
// leave the stored values untouched.
// Returns ErrNotFound if the series does not exist.
func (s *Store) UpdateSeriesMetadata(id int64, m Metadata) error {
	return updateMetadata(s.db, id, ItemSeries, m)
}

// UpdateSeriesMetadata merges metadata within a transaction.
func (t *Tx) UpdateSeriesMetadata(id int64, m Metadata) error {
	return updateMetadata(t.tx, id, ItemSeries, m)
}

// missingMetadataWhere selects items with no overview or no Primary image.
const missingMetadataWhere = `(overview IS NULL OR overview = ''
	OR NOT EXISTS (SELECT 1 FROM images i WHERE i.item_id = items.id AND i.image_type = 'Primary'))`

// SeriesMissingMetadata returns series of a library lacking an overview
// or a Primary image.
func (s *Store) SeriesMissingMetadata(libraryID int64) ([]*Series, error) {
	return querySeries(s.db,
		"SELECT "+seriesColumns+" FROM items WHERE library_id = ? AND kind = ? AND "+missingMetadataWhere+" ORDER BY id",
		libraryID, ItemSeries)
}
