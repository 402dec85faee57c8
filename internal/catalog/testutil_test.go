package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func fixtureEntries() []Entry {
	return []Entry{
		{
			Title:    "Death Note",
			Synonyms: []string{"DN", "デスノート"},
			Sources: []string{
				"https://anilist.co/anime/1535",
				"https://anidb.net/anime/4563",
				"https://myanimelist.net/anime/1535",
				"https://kitsu.app/anime/1376",
			},
			Type: "TV", Episodes: 37, Status: "FINISHED",
			Season: &Season{Season: "FALL", Year: 2006},
		},
		{
			Title:    "Shingeki no Kyojin",
			Synonyms: []string{"Attack on Titan"},
			Sources: []string{
				"https://anilist.co/anime/16498",
				"https://anidb.net/anime/9541",
				"https://myanimelist.net/anime/16498",
			},
			Type: "TV", Episodes: 25,
			Season: &Season{Season: "SPRING", Year: 2013},
		},
		{
			Title:    "Shingeki no Kyojin Season 2",
			Synonyms: []string{"Attack on Titan Season 2"},
			Sources: []string{
				"https://anilist.co/anime/20958",
				"https://myanimelist.net/anime/25777",
			},
			Type: "TV", Episodes: 12,
			Season: &Season{Season: "SPRING", Year: 2017},
		},
		{
			Title:    "Beck",
			Synonyms: []string{"BECK: Mongolian Chop Squad"},
			Sources:  []string{"https://anilist.co/anime/57", "https://myanimelist.net/anime/57"},
			Type:     "TV", Episodes: 26,
			Season: &Season{Year: 2004},
		},
		{
			Title:   "Overlord",
			Sources: []string{"https://anilist.co/anime/20832"},
			Type:    "TV", Episodes: 13,
			Season: &Season{Year: 2015},
		},
	}
}

func fixtureJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"data": fixtureEntries()})
	require.NoError(t, err)
	return data
}

// datasetServer serves the fixture dataset and counts requests.
func datasetServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	body := fixtureJSON(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write(body)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// loadedDB returns a catalog backed by an in-memory filesystem that
// already holds a fresh copy of the fixture dataset.
func loadedDB(t *testing.T) *DB {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/"+FileName, fixtureJSON(t), 0o644))

	db := New("/cache", WithFs(fs), WithURL("http://127.0.0.1:0/unused"))
	require.NoError(t, db.EnsureLoaded(context.Background()))
	return db
}
