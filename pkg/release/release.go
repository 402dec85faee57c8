// Package release turns media file and folder names into structured
// identities. Everything here is pure string processing with no I/O.
package release

// Episode is the identity parsed from an episodic filename.
type Episode struct {
	ShowName string
	Season   int
	Episode  int
}

// Movie is the identity parsed from a movie filename.
// Year is 0 when the name carried no usable year.
type Movie struct {
	Title string
	Year  int
}

// Class is the content classification used to pick a metadata provider chain.
type Class int

const (
	ClassSeries Class = iota
	ClassAnime
	ClassMovie
)

func (c Class) String() string {
	switch c {
	case ClassAnime:
		return "anime"
	case ClassMovie:
		return "movie"
	default:
		return "series"
	}
}

// Classify decides the classification of a raw name. Movie libraries are
// always ClassMovie; episodic names are anime when IsLikelyAnime says so.
func Classify(raw string, movie bool) Class {
	if movie {
		return ClassMovie
	}
	if IsLikelyAnime(raw) {
		return ClassAnime
	}
	return ClassSeries
}

// Year bounds accepted anywhere a year is parsed from a name.
const (
	MinYear = 1900
	MaxYear = 2100
)

func validYear(y int) bool {
	return y >= MinYear && y <= MaxYear
}
