package release

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// S01E05, s1e5
	seasonEpisodeRegex = regexp.MustCompile(`[Ss](\d{1,2})[Ee](\d{1,3})`)

	// 1E05, " 2e10 [". Range-checked after matching so resolution and
	// bitrate tokens don't parse as episodes.
	looseEpisodeRegex = regexp.MustCompile(`(?:^|[\s\-])[Ee]?(\d{1,2})[Ee](\d{1,3})(?:\s|[\[\(]|$)`)

	// "Show - 07 [1080p]", "Show E07". Season defaults to 1.
	bareEpisodeRegex = regexp.MustCompile(`[\s\-]+[Ee]?(\d{1,3})(?:\s*[\[\(]|$)`)

	groupPrefixRegex = regexp.MustCompile(`^\[.*?\]\s*[\-]?\s*`)

	releaseInfoRegex = regexp.MustCompile(`(?i)\s*(1080p|720p|480p|2160p|4k|bluray|blu-ray|webrip|web-dl|hdtv|dvdrip|bdrip|x264|x265|h\.?264|h\.?265|hevc|avc|aac|opus|flac|dts|atmos|10bit|hdr|sdr|remux|proper|repack|multi|dual|dubbed|subbed|raw|opus2|aac2|batch|dvd9|dvd5|complete).*$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)

	movieYearRegex = regexp.MustCompile(`^(.+?)[\s\.\-]*[\(\[]?(\d{4})[\)\]]?\s*$`)
)

// stem strips the final extension from a filename.
func stem(filename string) string {
	if ext := filepath.Ext(filename); ext != "" && ext != filename {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}

// ParseEpisode extracts show name, season, and episode from a filename.
// Patterns are tried in priority order and the first hit wins:
//   - Show Name S01E05.mkv
//   - Show Name - 1E05.mkv (season 1-20, episode 1-999)
//   - [Group] Show Name - 05 [1080p].mkv (season 1)
func ParseEpisode(filename string) (*Episode, bool) {
	name := stem(filename)

	if m := seasonEpisodeRegex.FindStringSubmatchIndex(name); m != nil {
		season, _ := strconv.Atoi(name[m[2]:m[3]])
		episode, _ := strconv.Atoi(name[m[4]:m[5]])
		return &Episode{ShowName: showName(name, m[0]), Season: season, Episode: episode}, true
	}

	if m := looseEpisodeRegex.FindStringSubmatchIndex(name); m != nil {
		season, _ := strconv.Atoi(name[m[2]:m[3]])
		episode, _ := strconv.Atoi(name[m[4]:m[5]])
		if season >= 1 && season <= 20 && episode >= 1 && episode <= 999 {
			return &Episode{ShowName: showName(name, m[0]), Season: season, Episode: episode}, true
		}
	}

	if m := bareEpisodeRegex.FindStringSubmatchIndex(name); m != nil {
		episode, _ := strconv.Atoi(name[m[2]:m[3]])
		if episode >= 1 && episode <= 999 {
			return &Episode{ShowName: showName(name, m[0]), Season: 1, Episode: episode}, true
		}
	}

	return nil, false
}

// showName cleans everything before the episode token into a show name.
func showName(name string, end int) string {
	s := groupPrefixRegex.ReplaceAllString(name[:end], "")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", " ")
	s = releaseInfoRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "- _")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// ParseMovie extracts title and year from a movie filename. It never fails:
// without a trailing year in range the whole stem is the title.
func ParseMovie(filename string) Movie {
	name := stem(filename)

	if m := movieYearRegex.FindStringSubmatch(name); m != nil {
		if year, err := strconv.Atoi(m[2]); err == nil && validYear(year) {
			title := strings.TrimRight(strings.TrimSpace(m[1]), "- .")
			return Movie{Title: undot(title), Year: year}
		}
	}

	return Movie{Title: undot(name)}
}

// undot turns scene-style "Title.Words" into spaced words. Names that
// already contain spaces keep their dots ("Mr. Nobody").
func undot(s string) string {
	if strings.Contains(s, " ") {
		return s
	}
	return strings.ReplaceAll(s, ".", " ")
}
