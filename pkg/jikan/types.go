package jikan

import (
	"strconv"
	"strings"
)

type searchResponse struct {
	Data       []Anime     `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

type animeResponse struct {
	Data Anime `json:"data"`
}

// Pagination describes the page of a search response.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
}

// Anime is a MyAnimeList entry as served by Jikan.
type Anime struct {
	MalID         int64    `json:"mal_id"`
	URL           string   `json:"url"`
	Images        Images   `json:"images"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english"`
	TitleJapanese string   `json:"title_japanese"`
	TitleSynonyms []string `json:"title_synonyms"`
	Type          string   `json:"type"`
	Episodes      int      `json:"episodes"`
	Status        string   `json:"status"`
	Aired         Aired    `json:"aired"`
	Duration      string   `json:"duration"`
	Score         float64  `json:"score"`
	Synopsis      string   `json:"synopsis"`
	Season        string   `json:"season"`
	Year          int      `json:"year"`
	Studios       []Entity `json:"studios"`
	Genres        []Entity `json:"genres"`
	Themes        []Entity `json:"themes"`
}

// Images holds the jpg and webp image sets.
type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

// ImageSet is one format's image URLs.
type ImageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

func (s ImageSet) best() string {
	if s.LargeImageURL != "" {
		return s.LargeImageURL
	}
	return s.ImageURL
}

// Aired is the broadcast date range. From and To are RFC 3339 timestamps.
type Aired struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Entity is a named MAL reference such as a studio or genre.
type Entity struct {
	MalID int64  `json:"mal_id"`
	Name  string `json:"name"`
}

// OriginalName returns the Japanese title, falling back to English.
func (a *Anime) OriginalName() string {
	if a.TitleJapanese != "" {
		return a.TitleJapanese
	}
	return a.TitleEnglish
}

// PosterURL prefers the large jpg and falls back to webp.
func (a *Anime) PosterURL() string {
	if u := a.Images.JPG.best(); u != "" {
		return u
	}
	return a.Images.WebP.best()
}

// PremiereDate is the date part of Aired.From.
func (a *Anime) PremiereDate() string {
	date, _, _ := strings.Cut(a.Aired.From, "T")
	return date
}

// StartYear is the season year, or the year of the first air date.
func (a *Anime) StartYear() int {
	if a.Year > 0 {
		return a.Year
	}
	y, _, _ := strings.Cut(a.PremiereDate(), "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}

// GenreNames lists genres followed by themes.
func (a *Anime) GenreNames() []string {
	var out []string
	for _, g := range a.Genres {
		out = append(out, g.Name)
	}
	for _, g := range a.Themes {
		out = append(out, g.Name)
	}
	return out
}

// StudioName is the first listed studio.
func (a *Anime) StudioName() string {
	if len(a.Studios) == 0 {
		return ""
	}
	return a.Studios[0].Name
}
