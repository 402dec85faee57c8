package release

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// " S01", " S01-S03", and everything after.
	seasonRangeRegex = regexp.MustCompile(`(?i)\s+S\d{1,2}(?:-S?\d{1,2})?(?:\s|$).*$`)

	folderReleaseRegex = regexp.MustCompile(`(?i)[\s\.](1080p|720p|480p|2160p|4k|bluray|blu-ray|webrip|web-dl|web|hdtv|dvdrip|bdrip|x264|x265|h\.?264|h\.?265|hevc|avc|aac|opus|flac|dts|atmos|10bit|10-bit|hdr|sdr|remux|proper|repack|multi|dual|dubbed|subbed|raw|nf|cr|amzn|dsnp|hmax|hulu|complete|batch).*$`)

	// "-smol", "-VARYG"
	groupSuffixRegex = regexp.MustCompile(`\s*-[A-Za-z0-9]+$`)

	// [BDRip], [1080p], [Dual Audio]
	bracketedRegex = regexp.MustCompile(`\s*\[[^\]]*\]\s*`)

	// (BD 720p), (1080p), (V2). Four-digit years are left alone.
	parenReleaseRegex = regexp.MustCompile(`\s*\((?:BD|DVD|BluRay|BDRip|WEB|HDTV|V\d+|\d{3,4}p)[^\)]*\)\s*`)
)

// CleanFolderName strips release noise from a folder name, leaving the
// title and an optional trailing "(YYYY)".
func CleanFolderName(name string) string {
	s := strings.ReplaceAll(name, ".", " ")

	// Brackets go first so the vocabulary below never matches inside them.
	s = bracketedRegex.ReplaceAllString(s, " ")
	s = parenReleaseRegex.ReplaceAllString(s, " ")
	s = seasonRangeRegex.ReplaceAllString(s, "")
	s = folderReleaseRegex.ReplaceAllString(s, "")
	s = groupSuffixRegex.ReplaceAllString(s, "")
	s = strings.TrimRight(s, "-_ ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractYear cleans name and splits off a trailing parenthesized year.
// The year is 0 when absent or outside 1900-2100.
func ExtractYear(name string) (string, int) {
	cleaned := CleanFolderName(name)

	i := strings.LastIndex(cleaned, "(")
	if i < 0 {
		return cleaned, 0
	}
	candidate := strings.Trim(cleaned[i:], "() ")
	if len(candidate) != 4 {
		return cleaned, 0
	}
	year, err := strconv.Atoi(candidate)
	if err != nil || !validYear(year) {
		return cleaned, 0
	}
	return strings.TrimSpace(cleaned[:i]), year
}

var skipFolderNames = map[string]bool{
	"nced": true, "ncop": true, "nc": true, "creditless": true,
	"extras": true, "extra": true, "bonus": true, "specials": true,
	"behind the scenes": true, "deleted scenes": true, "interviews": true,
	"scenes": true, "shorts": true, "trailers": true, "featurettes": true,
	"other": true, "sample": true, "samples": true, ".unwatched": true,
}

var skipFolderSuffixes = []string{
	" - nced", " - ncop", " - nc", " - ending", " - opening", " - op", " - ed",
	" nced", " ncop", "-nced", "-ncop", "_nced", "_ncop",
	" creditless", " textless",
	" - ova", " - special", " - specials", " - extra", " - extras",
	" battle stage", " extra stage",
}

// IsSpecialFolder reports whether a directory holds extras, openings,
// endings, samples, or other material that is never scanned.
func IsSpecialFolder(name string) bool {
	lower := strings.ToLower(name)

	if skipFolderNames[lower] {
		return true
	}
	if strings.HasPrefix(lower, "ncop") || strings.HasPrefix(lower, "nced") {
		return true
	}
	for _, suffix := range skipFolderSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	if strings.Contains(lower, "creditless") || strings.Contains(lower, "textless") {
		return true
	}

	// A bare "[SubGroup]" style folder has no show name to go on.
	return strings.HasPrefix(lower, "[") && !strings.Contains(lower, " - ") && len(lower) < 30
}
