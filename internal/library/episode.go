package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const episodeColumns = `id, library_id, parent_id, name, path, season_number, episode_number,
	overview, premiere_date, community_rating, runtime_ticks, created_at`

func scanEpisode(scan func(...any) error) (*Episode, error) {
	e := &Episode{}
	var (
		overview, premiere sql.NullString
		rating             sql.NullFloat64
		ticks              sql.NullInt64
	)
	if err := scan(&e.ID, &e.LibraryID, &e.SeriesID, &e.Name, &e.Path, &e.Season, &e.Number,
		&overview, &premiere, &rating, &ticks, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Overview = overview.String
	e.PremiereDate = premiere.String
	e.CommunityRating = rating.Float64
	if ticks.Valid {
		e.RuntimeTicks = &ticks.Int64
	}
	return e, nil
}

func addEpisode(q querier, e *Episode) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO items (library_id, parent_id, kind, name, sort_name, path, season_number, episode_number,
			overview, premiere_date, community_rating, runtime_ticks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.LibraryID, e.SeriesID, ItemEpisode, e.Name, fmt.Sprintf("%03d%04d", e.Season, e.Number), e.Path,
		e.Season, e.Number, nullString(e.Overview), nullString(e.PremiereDate), nullFloat(e.CommunityRating),
		e.RuntimeTicks, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// AddEpisode inserts an episode under its series.
// Sets ID and CreatedAt on the struct.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts an episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

// ListEpisodes returns episodes matching the filter in season and episode
// order. Returns (results, totalCount, error).
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) {
	conditions := []string{"kind = ?"}
	args := []any{ItemEpisode}

	if f.SeriesID != nil {
		conditions = append(conditions, "parent_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.LibraryID != nil {
		conditions = append(conditions, "library_id = ?")
		args = append(args, *f.LibraryID)
	}
	if f.Season != nil {
		conditions = append(conditions, "season_number = ?")
		args = append(args, *f.Season)
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", err)
	}

	query := "SELECT " + episodeColumns + " FROM items " + where + " ORDER BY parent_id, season_number, episode_number, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate episodes: %w", err)
	}
	return results, total, nil
}
