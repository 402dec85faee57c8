package anilist

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// graphqlRequest is the body of every AniList call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type searchResponse struct {
	Data struct {
		Page struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type mediaResponse struct {
	Data struct {
		Media *Media `json:"Media"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// Media is an AniList anime entry.
type Media struct {
	ID           int64       `json:"id"`
	IDMal        int64       `json:"idMal"`
	Title        Title       `json:"title"`
	Description  string      `json:"description"`
	StartDate    FuzzyDate   `json:"startDate"`
	EndDate      FuzzyDate   `json:"endDate"`
	CoverImage   CoverImage  `json:"coverImage"`
	BannerImage  string      `json:"bannerImage"`
	AverageScore int         `json:"averageScore"`
	Episodes     int         `json:"episodes"`
	Duration     int         `json:"duration"`
	Genres       []string    `json:"genres"`
	Studios      Studios     `json:"studios"`
	Format       string      `json:"format"`
	Status       string      `json:"status"`
	SeasonYear   int         `json:"seasonYear"`
	Characters   *Characters `json:"characters,omitempty"`
}

// Title holds the localized names of a Media.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// FuzzyDate is a date where any part may be missing.
type FuzzyDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// CoverImage holds the poster URLs in descending size.
type CoverImage struct {
	ExtraLarge string `json:"extraLarge"`
	Large      string `json:"large"`
	Medium     string `json:"medium"`
}

// Studios wraps the studio node list.
type Studios struct {
	Nodes []Studio `json:"nodes"`
}

// Studio is a production or animation studio.
type Studio struct {
	Name              string `json:"name"`
	IsAnimationStudio bool   `json:"isAnimationStudio"`
}

// Characters wraps the character edges returned by the detail query.
type Characters struct {
	Edges []CharacterEdge `json:"edges"`
}

// CharacterEdge links a character to the staff voicing it.
type CharacterEdge struct {
	Node        Character `json:"node"`
	Role        string    `json:"role"`
	VoiceActors []Staff   `json:"voiceActors"`
}

// Character is an anime character.
type Character struct {
	ID    int64       `json:"id"`
	Name  PersonName  `json:"name"`
	Image PersonImage `json:"image"`
}

// Staff is a voice actor or other credited person.
type Staff struct {
	ID       int64       `json:"id"`
	Name     PersonName  `json:"name"`
	Image    PersonImage `json:"image"`
	Language string      `json:"language"`
}

// PersonName is a full and native name pair.
type PersonName struct {
	Full   string `json:"full"`
	Native string `json:"native"`
}

// PersonImage holds profile image URLs.
type PersonImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

// VoiceActor is a Japanese voice actor credit flattened from the
// character edges.
type VoiceActor struct {
	PersonID  string
	Name      string
	Character string
	ImageURL  string
}

// PreferredName returns the English title, falling back to romaji.
func (m *Media) PreferredName() string {
	if m.Title.English != "" {
		return m.Title.English
	}
	return m.Title.Romaji
}

// OriginalName returns the native title, falling back to romaji.
func (m *Media) OriginalName() string {
	if m.Title.Native != "" {
		return m.Title.Native
	}
	return m.Title.Romaji
}

// Year is the season year, or the start year when AniList has no season.
func (m *Media) Year() int {
	if m.SeasonYear > 0 {
		return m.SeasonYear
	}
	return m.StartDate.Year
}

// PremiereDate formats the start date as YYYY-MM-DD, defaulting a missing
// month or day to 1. It returns "" when the year is unknown.
func (m *Media) PremiereDate() string {
	d := m.StartDate
	if d.Year == 0 {
		return ""
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, month, day)
}

// Rating converts the 0-100 average score to a 0-10 rating.
func (m *Media) Rating() float64 {
	return float64(m.AverageScore) / 10
}

// PosterURL returns the largest cover image available.
func (m *Media) PosterURL() string {
	if m.CoverImage.ExtraLarge != "" {
		return m.CoverImage.ExtraLarge
	}
	return m.CoverImage.Large
}

// StudioName prefers the first animation studio over other main studios.
func (m *Media) StudioName() string {
	for _, s := range m.Studios.Nodes {
		if s.IsAnimationStudio {
			return s.Name
		}
	}
	if len(m.Studios.Nodes) > 0 {
		return m.Studios.Nodes[0].Name
	}
	return ""
}

var lineBreaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n")

// Overview returns the description with markup removed.
func (m *Media) Overview() string {
	if m.Description == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lineBreaks.Replace(m.Description)))
	if err != nil {
		return m.Description
	}
	return strings.TrimSpace(doc.Text())
}

// VoiceActors lists the Japanese voice actors credited on the detail
// query, one per character edge.
func (m *Media) VoiceActors() []VoiceActor {
	if m.Characters == nil {
		return nil
	}
	var out []VoiceActor
	for _, edge := range m.Characters.Edges {
		for _, va := range edge.VoiceActors {
			if !strings.EqualFold(va.Language, "japanese") || va.Name.Full == "" {
				continue
			}
			img := va.Image.Large
			if img == "" {
				img = va.Image.Medium
			}
			out = append(out, VoiceActor{
				PersonID:  fmt.Sprintf("anilist-staff-%d", va.ID),
				Name:      va.Name.Full,
				Character: edge.Node.Name.Full,
				ImageURL:  img,
			})
			break
		}
	}
	return out
}
