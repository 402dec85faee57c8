package release

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanNumeral matches II through IX after a space. Lone "I" and "X" are
// left alone ("I Robot", "SPY x FAMILY").
var romanNumeral = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanDigits = map[string]string{
	"II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9",
}

var titlePunct = strings.NewReplacer("&", " and ", "-", " ", "'", "", ".", " ")

// NormalizeRomanNumerals rewrites space-prefixed Roman numerals II-IX as digits.
func NormalizeRomanNumerals(s string) string {
	return romanNumeral.ReplaceAllStringFunc(s, func(m string) string {
		return " " + romanDigits[strings.ToUpper(m[1:])]
	})
}

// CleanTitle reduces a title to the form used to compare provider titles:
// lowercase and unaccented, with Roman numerals as digits, punctuation
// dropped and a leading article removed from each colon-separated part.
func CleanTitle(title string) string {
	s := NormalizeRomanNumerals(strings.ToLower(title))
	// A transform chain carries state, so each call builds its own.
	s, _, _ = transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	s = titlePunct.Replace(s)

	parts := strings.Split(s, ":")
	for i, p := range parts {
		parts[i] = dropArticle(strings.TrimSpace(p))
	}
	return squash(strings.Join(parts, " "), func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	})
}

// NormalizeName is the key that matches a folder against stored series:
// release tags and year removed, transliterated to ASCII, lowercased, and
// every separator other than a hyphen turned into a single space.
func NormalizeName(name string) string {
	clean, _ := ExtractYear(name)
	return squash(strings.ToLower(unidecode.Unidecode(clean)), func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return ' '
	})
}

// TrimTrailingParen drops a trailing "(2019)" or "(TV)" style suffix.
func TrimTrailingParen(s string) string {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '(')
	if i <= 0 || !strings.HasSuffix(s, ")") {
		return s
	}
	return strings.TrimSpace(s[:i])
}

func dropArticle(s string) string {
	for _, art := range [...]string{"the ", "a ", "an "} {
		if rest, ok := strings.CutPrefix(s, art); ok {
			return rest
		}
	}
	return s
}

// squash maps s rune by rune (negative results drop the rune) and
// collapses runs of whitespace.
func squash(s string, mapping func(rune) rune) string {
	return strings.Join(strings.Fields(strings.Map(mapping, s)), " ")
}
