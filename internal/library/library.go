// Package library persists scanned libraries, their series, episodes and
// movies, and the reference data attached to them.
package library

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the content type of a library.
type Kind string

const (
	KindEpisodic Kind = "tvshows"
	KindMovie    Kind = "movies"
)

// ParseKind accepts the configured library type and its aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tvshows", "tvshow", "series", "tv":
		return KindEpisodic, nil
	case "movies", "movie":
		return KindMovie, nil
	}
	return "", fmt.Errorf("unknown library type %q", s)
}

// Library is a configured media root.
type Library struct {
	ID   int64
	Name string
	Path string
	Kind Kind
}

// ItemKind is the value of the items.kind column.
type ItemKind string

const (
	ItemSeries  ItemKind = "Series"
	ItemEpisode ItemKind = "Episode"
	ItemMovie   ItemKind = "Movie"
)

// ImageType names an artwork slot of an item.
type ImageType string

const (
	ImagePrimary  ImageType = "Primary"
	ImageBackdrop ImageType = "Backdrop"
)

// TicksPerSecond is the runtime_ticks resolution.
const TicksPerSecond = 10_000_000

// Metadata is the resolved descriptive data of a series or movie.
// Zero values are unknown and never overwrite stored values on update.
type Metadata struct {
	OriginalName    string
	Overview        string
	Year            int
	PremiereDate    string
	CommunityRating float64

	AniListID int64
	AniDBID   int64
	MALID     int64
	KitsuID   int64
	TMDBID    int64
	IMDBID    string
}

// Series is a show folder.
type Series struct {
	ID        int64
	LibraryID int64
	Name      string
	SortName  string
	Path      string
	Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Episode is a video file belonging to a series.
type Episode struct {
	ID              int64
	LibraryID       int64
	SeriesID        int64
	Name            string
	Path            string
	Season          int
	Number          int
	Overview        string
	PremiereDate    string
	CommunityRating float64
	RuntimeTicks    *int64
	CreatedAt       time.Time
}

// Movie is a single video file in a movie library.
type Movie struct {
	ID           int64
	LibraryID    int64
	Name         string
	SortName     string
	Path         string
	RuntimeTicks *int64
	Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Person is a cast or crew credit. ProviderKey identifies the person
// across items, e.g. "tmdb-person-17419".
type Person struct {
	ProviderKey string
	Name        string
	Role        string
	Character   string
	ImageURL    string
}

// MediaItem is a playable item awaiting media info or a thumbnail.
type MediaItem struct {
	ID   int64
	Kind ItemKind
	Path string
}

// Unmatched records a series whose metadata lookup failed.
type Unmatched struct {
	ID             int64
	LibraryID      int64
	SeriesID       int64
	FolderName     string
	AttemptedTitle string
	AttemptedYear  int
	FailureReason  string
	AttemptCount   int
	LastAttemptAt  time.Time
}

// SortName lowercases name and drops a leading English article.
func SortName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, article) && len(s) > len(article) {
			return s[len(article):]
		}
	}
	return s
}
