package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Similarity scores how well candidate b matches query a on a 0-100
// scale. Both are expected lowercased. Tiers are checked in order: equal,
// prefix, containment, word overlap, and edit distance for short strings.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	la, lb := float64(len(a)), float64(len(b))

	if strings.HasPrefix(b, a) {
		return 90 + la/lb*10
	}
	if strings.HasPrefix(a, b) {
		return 75 + lb/la*15
	}

	if strings.Contains(b, a) {
		ratio := la / lb
		switch {
		case ratio > 0.5:
			return 80 + ratio*15
		case ratio > 0.3:
			return 60 + ratio*20
		default:
			return 30 + ratio*30
		}
	}
	if strings.Contains(a, b) {
		ratio := lb / la
		if ratio > 0.5 {
			return 70 + ratio*15
		}
		return 40 + ratio*20
	}

	aWords, bWords := strings.Fields(a), strings.Fields(b)
	if len(aWords) > 0 && len(bWords) > 0 {
		matching := 0
		for _, aw := range aWords {
			if wordMatches(aw, bWords) {
				matching++
			}
		}
		ratio := float64(matching) / float64(len(aWords))
		switch {
		case ratio > 0.8:
			return 70 + ratio*20
		case ratio > 0.5:
			return 50 + ratio*30
		}
	}

	if len(a) < 50 && len(b) < 50 {
		dist := edlib.LevenshteinDistance(a, b)
		maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
		return (1 - float64(dist)/float64(maxLen)) * 50
	}
	return 0
}

// wordMatches reports whether w equals one of words or, for words of at
// least three bytes, is contained in or contains one.
func wordMatches(w string, words []string) bool {
	for _, o := range words {
		if w == o || (len(w) >= 3 && strings.Contains(o, w)) || (len(o) >= 3 && strings.Contains(w, o)) {
			return true
		}
	}
	return false
}

// MatchScore scores an entry against a lowercased query. The best
// similarity over title and synonyms is adjusted by a full-word bonus, a
// year proximity bonus, and a penalty for very short queries matched
// against long titles. year 0 means no year was requested.
func MatchScore(e *Entry, query string, year int) float64 {
	best := Similarity(query, strings.ToLower(e.Title))
	matched := e.Title
	for _, syn := range e.Synonyms {
		if s := Similarity(query, strings.ToLower(syn)); s > best {
			best, matched = s, syn
		}
	}

	queryWords := strings.Fields(query)
	if len(queryWords) > 0 {
		titleWords := strings.Fields(strings.ToLower(matched))
		all := true
		for _, qw := range queryWords {
			if !containsEither(qw, titleWords) {
				all = false
				break
			}
		}
		if all {
			best += 20
		}
	}

	entryYear := e.Year()
	switch {
	case year != 0 && entryYear == year:
		best += 15
	case year != 0 && entryYear != 0:
		diff := abs(entryYear - year)
		if diff <= 1 {
			best += 10
		} else if diff <= 2 {
			best += 5
		}
	case year == 0 && entryYear != 0:
		best += 2
	}

	if len(query) <= 3 && len(matched) > 10 && best < 95 {
		best *= 0.3
	}
	return best
}

func containsEither(w string, words []string) bool {
	for _, o := range words {
		if strings.Contains(o, w) || strings.Contains(w, o) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
