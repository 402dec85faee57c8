package release

import "strings"

// trimYearSuffix lowercases s and drops trailing digits, parentheses, and
// spaces, so "Show Name (2024)" compares as "show name".
func trimYearSuffix(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.ToLower(s), ")0123456789( "))
}

// TitleMatch reports whether a provider title plausibly names the same
// show as query. It accepts an exact match, a containment where the
// shorter side is over 40% of the longer, or enough shared words.
func TitleMatch(query, title string) bool {
	q, t := trimYearSuffix(query), trimYearSuffix(title)
	if q == "" || t == "" {
		return false
	}
	if q == t {
		return true
	}

	if strings.Contains(t, q) || strings.Contains(q, t) {
		shorter, longer := min(len(q), len(t)), max(len(q), len(t))
		if float64(shorter)/float64(longer) > 0.4 {
			return true
		}
	}

	qWords, tWords := wordSet(q), wordSet(t)
	if len(qWords) == 0 || len(tWords) == 0 {
		return false
	}
	common := 0
	for w := range qWords {
		if tWords[w] {
			common++
		}
	}
	ratio := float64(common) / float64(min(len(qWords), len(tWords)))
	return ratio >= 0.6 || (common >= 2 && ratio >= 0.4)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
