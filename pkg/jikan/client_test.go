package jikan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockJikan(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func frieren() Anime {
	return Anime{
		MalID:         52991,
		Title:         "Sousou no Frieren",
		TitleEnglish:  "Frieren: Beyond Journey's End",
		TitleJapanese: "葬送のフリーレン",
		TitleSynonyms: []string{"Frieren at the Funeral"},
		Type:          "TV",
		Episodes:      28,
		Aired:         Aired{From: "2023-09-29T00:00:00+00:00"},
		Score:         9.3,
		Synopsis:      "An elf mage outlives her party.",
		Year:          2023,
		Images: Images{
			JPG:  ImageSet{ImageURL: "https://cdn.myanimelist.net/f.jpg", LargeImageURL: "https://cdn.myanimelist.net/fl.jpg"},
			WebP: ImageSet{ImageURL: "https://cdn.myanimelist.net/f.webp"},
		},
		Studios: []Entity{{MalID: 11, Name: "Madhouse"}},
		Genres:  []Entity{{Name: "Adventure"}, {Name: "Drama"}},
		Themes:  []Entity{{Name: "Fantasy"}},
	}
}

func TestClient_Search(t *testing.T) {
	var query url.Values
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			writeJSON(w, searchResponse{Data: []Anime{frieren()}})
		},
	})

	results, err := New(WithBaseURL(srv.URL)).Search(context.Background(), "Frieren", 2023)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Frieren", query.Get("q"))
	assert.Equal(t, "true", query.Get("sfw"))
	assert.Equal(t, "10", query.Get("limit"))
	assert.Equal(t, "2023-01-01", query.Get("start_date"))
	assert.Equal(t, "2023-12-31", query.Get("end_date"))

	a := results[0]
	assert.Equal(t, "葬送のフリーレン", a.OriginalName())
	assert.Equal(t, "https://cdn.myanimelist.net/fl.jpg", a.PosterURL())
	assert.Equal(t, "2023-09-29", a.PremiereDate())
	assert.Equal(t, 2023, a.StartYear())
	assert.Equal(t, []string{"Adventure", "Drama", "Fantasy"}, a.GenreNames())
	assert.Equal(t, "Madhouse", a.StudioName())
}

func TestClient_Get(t *testing.T) {
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime/52991": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, animeResponse{Data: frieren()})
		},
	})
	c := New(WithBaseURL(srv.URL))

	a, err := c.Get(context.Background(), 52991)
	require.NoError(t, err)
	assert.Equal(t, "Sousou no Frieren", a.Title)

	_, err = c.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_BestMatch_RetriesWithoutYear(t *testing.T) {
	var calls atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Query().Get("start_date") != "" {
				writeJSON(w, searchResponse{})
				return
			}
			writeJSON(w, searchResponse{Data: []Anime{frieren()}})
		},
	})

	a, err := New(WithBaseURL(srv.URL)).BestMatch(context.Background(), "Sousou no Frieren", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(52991), a.MalID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_BestMatch_NoResults(t *testing.T) {
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, searchResponse{})
		},
	})
	_, err := New(WithBaseURL(srv.URL)).BestMatch(context.Background(), "Nothing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScore(t *testing.T) {
	a := frieren()

	// exact title, TV, score 9.3
	assert.Equal(t, 100+10+18, Score(&a, "Sousou no Frieren", 0))
	// exact title plus year
	assert.Equal(t, 100+50+10+18, Score(&a, "Sousou no Frieren", 2023))
	// english exact after cleaning, title contained in neither direction
	assert.Equal(t, 100+10+18, Score(&a, "Frieren Beyond Journeys End", 0))
	// synonym
	assert.Equal(t, 80+10+18, Score(&a, "Frieren at the Funeral", 0))

	a.Year = 0
	assert.Equal(t, 100+40+10+18, Score(&a, "Sousou no Frieren", 2023), "aired date counts when year is missing")
}

func TestBestMatch_PrefersHigherScore(t *testing.T) {
	movie := frieren()
	movie.MalID = 1
	movie.Type = "Movie"
	movie.Score = 0
	series := frieren()

	best := bestMatch([]Anime{movie, series}, "Sousou no Frieren", 0)
	require.NotNil(t, best)
	assert.Equal(t, int64(52991), best.MalID)

	assert.Nil(t, bestMatch([]Anime{{Title: "Other"}}, "Sousou no Frieren", 0))
}

func TestClient_RateLimitedIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime/52991": func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(w, animeResponse{Data: frieren()})
		},
	})

	a, err := New(WithBaseURL(srv.URL)).Get(context.Background(), 52991)
	require.NoError(t, err)
	assert.Equal(t, int64(52991), a.MalID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime/52991": func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})

	_, err := New(WithBaseURL(srv.URL), WithAttempts(2)).Get(context.Background(), 52991)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_PacerRunsBeforeEachRequest(t *testing.T) {
	var calls, turns atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Query().Get("start_date") != "" {
				writeJSON(w, searchResponse{})
				return
			}
			writeJSON(w, searchResponse{Data: []Anime{frieren()}})
		},
	})
	pacer := func(context.Context) error {
		turns.Add(1)
		return nil
	}

	_, err := New(WithBaseURL(srv.URL), WithPacer(pacer)).BestMatch(context.Background(), "Sousou no Frieren", 2024)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), turns.Load())
}

func TestClient_PacerErrorStopsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime/52991": func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(w, animeResponse{Data: frieren()})
		},
	})
	c := New(WithBaseURL(srv.URL))
	c.SetPacer(func(context.Context) error { return context.DeadlineExceeded })

	_, err := c.Get(context.Background(), 52991)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, calls.Load())
}

func TestClient_MalformedBodyNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := mockJikan(t, map[string]http.HandlerFunc{
		"/anime/52991": func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		},
	})

	_, err := New(WithBaseURL(srv.URL)).Get(context.Background(), 52991)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
