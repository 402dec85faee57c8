// Package metadata resolves media names to unified metadata records by
// walking ordered chains of remote and offline providers.
package metadata

import "github.com/vmunix/mediarr/pkg/release"

// Provider identifies where a record's metadata came from.
type Provider int

const (
	ProviderNone Provider = iota
	ProviderAniList
	ProviderAniDB
	ProviderJikan
	ProviderTMDB
)

func (p Provider) String() string {
	switch p {
	case ProviderAniList:
		return "AniList"
	case ProviderAniDB:
		return "AniDB"
	case ProviderJikan:
		return "Jikan/MAL"
	case ProviderTMDB:
		return "TMDB"
	default:
		return "None"
	}
}

// Record is the provider-independent metadata for a series or movie.
// Zero IDs are unknown.
type Record struct {
	AniListID int64
	AniDBID   int64
	MALID     int64
	KitsuID   int64
	TMDBID    int64
	IMDBID    string

	Name            string
	OriginalName    string
	Overview        string
	Year            int
	PremiereDate    string // YYYY-MM-DD
	CommunityRating float64
	PosterURL       string
	BackdropURL     string
	EpisodeCount    int
	RuntimeMinutes  int
	Genres          []string
	Studio          string
	Cast            []CastMember

	Provider Provider
}

// CastMember is a credited person. PersonID is a provider-scoped key
// such as "anilist-staff-95061" or "tmdb-person-17419".
type CastMember struct {
	PersonID  string
	Name      string
	Character string
	Role      string
	ImageURL  string
}

// EpisodeRecord is the metadata for a single episode.
type EpisodeRecord struct {
	Name            string
	Overview        string
	PremiereDate    string
	CommunityRating float64
	RuntimeMinutes  int
	StillURL        string
}

// HasProviderID reports whether any provider ID is known.
func (r *Record) HasProviderID() bool {
	return r.AniListID != 0 || r.AniDBID != 0 || r.MALID != 0 ||
		r.KitsuID != 0 || r.TMDBID != 0 || r.IMDBID != ""
}

// fillIDs copies IDs from ids into r where r has none.
func (r *Record) fillIDs(anilist, anidb, mal, kitsu int64) {
	if r.AniListID == 0 {
		r.AniListID = anilist
	}
	if r.AniDBID == 0 {
		r.AniDBID = anidb
	}
	if r.MALID == 0 {
		r.MALID = mal
	}
	if r.KitsuID == 0 {
		r.KitsuID = kitsu
	}
}

// IsBetter reports whether next should replace old. Replacement requires
// the same title, ignoring case, punctuation and a trailing "(year)", and
// that next fills an overview or poster that old lacks.
func IsBetter(old, next *Record) bool {
	if next == nil {
		return false
	}
	if old == nil {
		return true
	}
	if comparableTitle(old.Name) != comparableTitle(next.Name) {
		return false
	}
	if old.Overview == "" && next.Overview != "" {
		return true
	}
	return old.PosterURL == "" && next.PosterURL != ""
}

func comparableTitle(name string) string {
	return release.CleanTitle(release.TrimTrailingParen(name))
}
