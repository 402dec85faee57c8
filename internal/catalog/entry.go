// Package catalog provides fuzzy title search over the offline anime
// database (manami-project anime-offline-database).
package catalog

import (
	"strings"

	"github.com/spf13/cast"
)

// Entry is one title in the offline database.
type Entry struct {
	Sources   []string `json:"sources"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	Episodes  int      `json:"episodes"`
	Status    string   `json:"status"`
	Season    *Season  `json:"animeSeason,omitempty"`
	Picture   string   `json:"picture,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Synonyms  []string `json:"synonyms"`
	Tags      []string `json:"tags,omitempty"`
}

// Season is the airing season of an entry.
type Season struct {
	Season string `json:"season,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// Year returns the airing year, or 0 when unknown.
func (e *Entry) Year() int {
	if e.Season == nil {
		return 0
	}
	return e.Season.Year
}

// ProviderIDs are the cross-referenced IDs found in an entry's sources.
// Zero means the entry has no link to that provider.
type ProviderIDs struct {
	AniList int64
	AniDB   int64
	MAL     int64
	Kitsu   int64
}

var sourcePatterns = []struct {
	pattern string
	set     func(*ProviderIDs, int64)
}{
	{"anilist.co/anime/", func(p *ProviderIDs, id int64) { p.AniList = id }},
	{"anidb.net/anime/", func(p *ProviderIDs, id int64) { p.AniDB = id }},
	{"myanimelist.net/anime/", func(p *ProviderIDs, id int64) { p.MAL = id }},
	{"kitsu.app/anime/", func(p *ProviderIDs, id int64) { p.Kitsu = id }},
	{"kitsu.io/anime/", func(p *ProviderIDs, id int64) { p.Kitsu = id }},
}

// ProviderIDs extracts provider IDs from the entry's source URLs.
func (e *Entry) ProviderIDs() ProviderIDs {
	var ids ProviderIDs
	for _, src := range e.Sources {
		for _, sp := range sourcePatterns {
			if id, ok := idFromURL(src, sp.pattern); ok {
				sp.set(&ids, id)
				break
			}
		}
	}
	return ids
}

// idFromURL returns the run of digits following pattern in url.
func idFromURL(url, pattern string) (int64, bool) {
	i := strings.Index(url, pattern)
	if i < 0 {
		return 0, false
	}
	rest := url[i+len(pattern):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	// cast reads a leading zero as octal.
	digits := strings.TrimLeft(rest[:end], "0")
	if digits == "" {
		return 0, false
	}
	id, err := cast.ToInt64E(digits)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
