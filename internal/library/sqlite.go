package library

import "database/sql"

// Nullable parameters: zero values are stored as NULL so COALESCE
// updates keep existing data.

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullInt64(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

// nullableMetadata holds the scan targets for the Metadata columns.
type nullableMetadata struct {
	originalName, overview, premiereDate, imdbID sql.NullString
	year                                         sql.NullInt64
	rating                                       sql.NullFloat64
	anilist, anidb, mal, kitsu, tmdb             sql.NullInt64
}

func (n *nullableMetadata) targets() []any {
	return []any{
		&n.originalName, &n.overview, &n.year, &n.premiereDate, &n.rating,
		&n.anilist, &n.anidb, &n.mal, &n.kitsu, &n.tmdb, &n.imdbID,
	}
}

func (n *nullableMetadata) metadata() Metadata {
	return Metadata{
		OriginalName:    n.originalName.String,
		Overview:        n.overview.String,
		Year:            int(n.year.Int64),
		PremiereDate:    n.premiereDate.String,
		CommunityRating: n.rating.Float64,
		AniListID:       n.anilist.Int64,
		AniDBID:         n.anidb.Int64,
		MALID:           n.mal.Int64,
		KitsuID:         n.kitsu.Int64,
		TMDBID:          n.tmdb.Int64,
		IMDBID:          n.imdbID.String,
	}
}

// metadataColumns matches nullableMetadata.targets.
const metadataColumns = `original_name, overview, year, premiere_date, community_rating,
	anilist_id, anidb_id, mal_id, kitsu_id, tmdb_id, imdb_id`

func metadataArgs(m Metadata) []any {
	return []any{
		nullString(m.OriginalName), nullString(m.Overview), nullInt(m.Year),
		nullString(m.PremiereDate), nullFloat(m.CommunityRating),
		nullInt64(m.AniListID), nullInt64(m.AniDBID), nullInt64(m.MALID),
		nullInt64(m.KitsuID), nullInt64(m.TMDBID), nullString(m.IMDBID),
	}
}

// metadataCoalesce is the SET clause that keeps stored values where the
// new value is NULL.
const metadataCoalesce = `original_name = COALESCE(?, original_name),
	overview = COALESCE(?, overview),
	year = COALESCE(?, year),
	premiere_date = COALESCE(?, premiere_date),
	community_rating = COALESCE(?, community_rating),
	anilist_id = COALESCE(?, anilist_id),
	anidb_id = COALESCE(?, anidb_id),
	mal_id = COALESCE(?, mal_id),
	kitsu_id = COALESCE(?, kitsu_id),
	tmdb_id = COALESCE(?, tmdb_id),
	imdb_id = COALESCE(?, imdb_id)`
