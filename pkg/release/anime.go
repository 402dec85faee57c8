package release

import (
	"strings"
	"unicode"
)

// animeMarkers are lowercase substrings that suggest a name is anime:
// honorifics, genre words, fansub groups, and encode tags common in
// fansub releases. Western titles hit some of these; the result is a hint
// for provider ordering, not a verdict.
var animeMarkers = []string{
	"-san", "-kun", "-chan", "-sama", "-sensei", "-senpai", "-dono", "-tachi",
	"shounen", "shonen", "shoujo", "shojo", "seinen", "josei",
	"isekai", "mahou", "mecha", "ecchi", "harem", "chibi",
	" no ", "monogatari", "densetsu", "bouken",
	"dual-audio", "multi-audio", "x265", "10-bit", "10bit", "hevc", "flac",
	"[bd]", "[bdrip]",
	"[subsplease]", "[erai-raws]", "[horriblesubs]", "[commie]", "[gg]",
	"[reaktor]", "[judas]", "[doki]", "nyaa",
	" 2nd season", " 3rd season", " ova", " ona", "[ova]", "[ona]",
	"reincarnated", "otherworld", "another world", "villainess",
	"demon lord", "demon king", "hero", "saint", "summoned", "guild",
	"adventurer", "dungeon", "kingdom", "noble", "prince", "princess",
	"fiancé", "fiance", "engagement", "magic", "sorcerer", "witch", "slime",
	"skill", "level", "cheat", "overpowered", "strongest", "weakest",
	"tossed aside", "kicked out", "banished", "exiled", "sold to",
	"reborn as", "became a", "turned into", "i was", "my life as",
}

// IsLikelyAnime is a best-effort classifier over a raw file or folder name.
func IsLikelyAnime(name string) bool {
	if strings.HasPrefix(name, "[") {
		return true
	}

	lower := strings.ToLower(name)
	for _, m := range animeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}

	for _, r := range name {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
