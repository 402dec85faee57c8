// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Image sizes used for each kind of artwork.
const (
	SizePoster   = "w500"
	SizeBackdrop = "w1280"
	SizeStill    = "w300"
	SizeProfile  = "w185"
)

// Series represents TMDB TV series metadata.
type Series struct {
	ID             int
	IMDBID         string // e.g., "tt0903747"
	Name           string
	OriginalName   string
	Overview       string
	FirstAirDate   string // "2008-01-20"
	PosterPath     string // "/abc123.jpg"
	BackdropPath   string
	VoteAverage    float64
	RuntimeMinutes int
	Genres         []string
	Networks       []string
	Cast           []CastMember
}

// Movie represents TMDB movie metadata.
type Movie struct {
	ID             int
	IMDBID         string
	Title          string
	OriginalTitle  string
	Overview       string
	ReleaseDate    string
	PosterPath     string
	BackdropPath   string
	VoteAverage    float64
	RuntimeMinutes int
	Genres         []string
	Studios        []string
	Cast           []CastMember
}

// Episode represents one TV episode.
type Episode struct {
	ID            int
	SeasonNumber  int
	EpisodeNumber int
	Name          string
	Overview      string
	AirDate       string
	VoteAverage   float64
	StillPath     string
}

// CastMember is an actor or key crew credit.
type CastMember struct {
	PersonID    int
	Name        string
	Character   string
	Role        string // "Actor", "Director", "Writer", "Screenplay"
	ProfilePath string
}

// Year extracts the year from FirstAirDate.
func (s *Series) Year() int {
	return yearOf(s.FirstAirDate)
}

// PosterURL returns the full poster image URL.
func (s *Series) PosterURL() string {
	return ImageURL(SizePoster, s.PosterPath)
}

// BackdropURL returns the full backdrop image URL.
func (s *Series) BackdropURL() string {
	return ImageURL(SizeBackdrop, s.BackdropPath)
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

// PosterURL returns the full poster image URL.
func (m *Movie) PosterURL() string {
	return ImageURL(SizePoster, m.PosterPath)
}

// BackdropURL returns the full backdrop image URL.
func (m *Movie) BackdropURL() string {
	return ImageURL(SizeBackdrop, m.BackdropPath)
}

// StillURL returns the full episode still URL.
func (e *Episode) StillURL() string {
	return ImageURL(SizeStill, e.StillPath)
}

// ProfileURL returns the full profile image URL.
func (c *CastMember) ProfileURL() string {
	return ImageURL(SizeProfile, c.ProfilePath)
}

// ImageURL joins an image path onto the TMDB image CDN.
// Size can be: w92, w154, w185, w300, w342, w500, w780, w1280, original
func ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
