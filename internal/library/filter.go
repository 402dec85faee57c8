package library

// SeriesFilter specifies criteria for listing series.
type SeriesFilter struct {
	LibraryID *int64
	Name      *string
	TMDBID    *int64
	AniListID *int64
	Limit     int // 0 = no limit
	Offset    int
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	SeriesID  *int64
	LibraryID *int64
	Season    *int
	Limit     int
	Offset    int
}
