package anidb

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

const imageBaseURL = "https://cdn.anidb.net/images/main/"

// animeXML mirrors the response of request=anime. Numeric fields are kept
// as text because AniDB leaves them empty when unknown.
type animeXML struct {
	XMLName      xml.Name     `xml:"anime"`
	ID           string       `xml:"id,attr"`
	Type         string       `xml:"type"`
	EpisodeCount string       `xml:"episodecount"`
	StartDate    string       `xml:"startdate"`
	EndDate      string       `xml:"enddate"`
	Titles       []titleXML   `xml:"titles>title"`
	Description  string       `xml:"description"`
	Ratings      ratingsXML   `xml:"ratings"`
	Picture      string       `xml:"picture"`
	Episodes     []episodeXML `xml:"episodes>episode"`
}

type titleXML struct {
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type ratingsXML struct {
	Permanent string `xml:"permanent"`
	Temporary string `xml:"temporary"`
}

type episodeXML struct {
	ID      string     `xml:"id,attr"`
	EpNo    string     `xml:"epno"`
	Length  string     `xml:"length"`
	AirDate string     `xml:"airdate"`
	Rating  string     `xml:"rating"`
	Titles  []titleXML `xml:"title"`
}

// Anime is an AniDB anime entry.
type Anime struct {
	ID           int64
	Type         string
	Title        string
	TitleRomaji  string
	TitleKanji   string
	Description  string
	PictureURL   string
	StartDate    string
	EndDate      string
	EpisodeCount int
	Rating       float64
	Episodes     []Episode
}

// Episode is one entry of an anime's episode list. Number is AniDB's
// epno, which carries a letter prefix for specials ("S1", "C2").
type Episode struct {
	ID      int64
	Number  string
	Title   string
	AirDate string
	Length  int
	Rating  float64
}

// Year is the year of StartDate, or 0.
func (a *Anime) Year() int {
	y, _, _ := strings.Cut(a.StartDate, "-")
	return cast.ToInt(y)
}

// OriginalName returns the kanji title, falling back to romaji.
func (a *Anime) OriginalName() string {
	if a.TitleKanji != "" {
		return a.TitleKanji
	}
	return a.TitleRomaji
}

// linkMarkup matches AniDB's inline links, "http://anidb.net/ch123 [Name]".
var linkMarkup = regexp.MustCompile(`https?://anidb\.net/\S+ \[([^\]]+)\]`)

func (x *animeXML) toAnime() *Anime {
	a := &Anime{
		ID:           cast.ToInt64(x.ID),
		Type:         x.Type,
		Title:        pickTitle(x.Titles, "main", ""),
		Description:  strings.TrimSpace(linkMarkup.ReplaceAllString(x.Description, "$1")),
		StartDate:    x.StartDate,
		EndDate:      x.EndDate,
		EpisodeCount: cast.ToInt(x.EpisodeCount),
		Rating:       cast.ToFloat64(x.Ratings.Permanent),
	}
	if a.Title == "" {
		a.Title = pickTitle(x.Titles, "official", "")
	}
	a.TitleRomaji = pickTitle(x.Titles, "", "x-jat")
	a.TitleKanji = pickTitle(x.Titles, "official", "ja")
	if a.Rating == 0 {
		a.Rating = cast.ToFloat64(x.Ratings.Temporary)
	}
	if pic := strings.TrimSpace(x.Picture); pic != "" {
		a.PictureURL = imageBaseURL + pic
	}

	for _, e := range x.Episodes {
		ep := Episode{
			ID:      cast.ToInt64(e.ID),
			Number:  strings.TrimSpace(e.EpNo),
			Title:   pickTitle(e.Titles, "", "en"),
			AirDate: e.AirDate,
			Length:  cast.ToInt(e.Length),
			Rating:  cast.ToFloat64(e.Rating),
		}
		if ep.Title == "" && len(e.Titles) > 0 {
			ep.Title = strings.TrimSpace(e.Titles[0].Value)
		}
		if ep.Number != "" {
			a.Episodes = append(a.Episodes, ep)
		}
	}
	return a
}

// pickTitle returns the first title matching the given type and language.
// An empty filter matches anything.
func pickTitle(titles []titleXML, typ, lang string) string {
	for _, t := range titles {
		if (typ == "" || t.Type == typ) && (lang == "" || t.Lang == lang) {
			if v := strings.TrimSpace(t.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
