package metadata

import (
	"fmt"

	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

func fromAniList(m *anilist.Media) *Record {
	r := &Record{
		AniListID:       m.ID,
		MALID:           m.IDMal,
		Name:            m.PreferredName(),
		OriginalName:    m.OriginalName(),
		Overview:        m.Overview(),
		Year:            m.Year(),
		PremiereDate:    m.PremiereDate(),
		CommunityRating: m.Rating(),
		PosterURL:       m.PosterURL(),
		BackdropURL:     m.BannerImage,
		EpisodeCount:    m.Episodes,
		RuntimeMinutes:  m.Duration,
		Genres:          m.Genres,
		Studio:          m.StudioName(),
		Provider:        ProviderAniList,
	}
	for _, va := range m.VoiceActors() {
		r.Cast = append(r.Cast, CastMember{
			PersonID:  va.PersonID,
			Name:      va.Name,
			Character: va.Character,
			Role:      "Voice Actor",
			ImageURL:  va.ImageURL,
		})
	}
	return r
}

func fromJikan(a *jikan.Anime) *Record {
	return &Record{
		MALID:           a.MalID,
		Name:            a.Title,
		OriginalName:    a.OriginalName(),
		Overview:        a.Synopsis,
		Year:            a.StartYear(),
		PremiereDate:    a.PremiereDate(),
		CommunityRating: a.Score,
		PosterURL:       a.PosterURL(),
		EpisodeCount:    a.Episodes,
		Genres:          a.GenreNames(),
		Studio:          a.StudioName(),
		Provider:        ProviderJikan,
	}
}

func fromAniDB(a *anidb.Anime) *Record {
	return &Record{
		AniDBID:         a.ID,
		Name:            a.Title,
		OriginalName:    a.OriginalName(),
		Overview:        a.Description,
		Year:            a.Year(),
		PremiereDate:    a.StartDate,
		CommunityRating: a.Rating,
		PosterURL:       a.PictureURL,
		EpisodeCount:    a.EpisodeCount,
		Provider:        ProviderAniDB,
	}
}

func fromTMDBSeries(s *tmdb.Series) *Record {
	r := &Record{
		TMDBID:          int64(s.ID),
		IMDBID:          s.IMDBID,
		Name:            s.Name,
		OriginalName:    s.OriginalName,
		Overview:        s.Overview,
		Year:            s.Year(),
		PremiereDate:    s.FirstAirDate,
		CommunityRating: s.VoteAverage,
		PosterURL:       s.PosterURL(),
		BackdropURL:     s.BackdropURL(),
		RuntimeMinutes:  s.RuntimeMinutes,
		Genres:          s.Genres,
		Cast:            fromTMDBCast(s.Cast),
		Provider:        ProviderTMDB,
	}
	if len(s.Networks) > 0 {
		r.Studio = s.Networks[0]
	}
	return r
}

func fromTMDBMovie(m *tmdb.Movie) *Record {
	r := &Record{
		TMDBID:          int64(m.ID),
		IMDBID:          m.IMDBID,
		Name:            m.Title,
		OriginalName:    m.OriginalTitle,
		Overview:        m.Overview,
		Year:            m.Year(),
		PremiereDate:    m.ReleaseDate,
		CommunityRating: m.VoteAverage,
		PosterURL:       m.PosterURL(),
		BackdropURL:     m.BackdropURL(),
		RuntimeMinutes:  m.RuntimeMinutes,
		Genres:          m.Genres,
		Cast:            fromTMDBCast(m.Cast),
		Provider:        ProviderTMDB,
	}
	if len(m.Studios) > 0 {
		r.Studio = m.Studios[0]
	}
	return r
}

func fromTMDBCast(cast []tmdb.CastMember) []CastMember {
	if len(cast) == 0 {
		return nil
	}
	out := make([]CastMember, 0, len(cast))
	for _, c := range cast {
		out = append(out, CastMember{
			PersonID:  fmt.Sprintf("tmdb-person-%d", c.PersonID),
			Name:      c.Name,
			Character: c.Character,
			Role:      c.Role,
			ImageURL:  c.ProfileURL(),
		})
	}
	return out
}

func fromTMDBEpisode(e *tmdb.Episode) *EpisodeRecord {
	return &EpisodeRecord{
		Name:            e.Name,
		Overview:        e.Overview,
		PremiereDate:    e.AirDate,
		CommunityRating: e.VoteAverage,
		StillURL:        e.StillURL(),
	}
}
