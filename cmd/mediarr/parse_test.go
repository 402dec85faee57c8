package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/pkg/release"
)

func TestParseName(t *testing.T) {
	r := parseName("[SubsPlease] Frieren - 07 [1080p].mkv", false)
	require.NotNil(t, r.Episode)
	assert.Equal(t, release.Episode{ShowName: "Frieren", Season: 1, Episode: 7}, *r.Episode)
	assert.Equal(t, "anime", r.Class)
	assert.Nil(t, r.Movie)

	r = parseName("/media/tv/Breaking Bad S01E05.mkv", false)
	require.NotNil(t, r.Episode)
	assert.Equal(t, "Breaking Bad", r.Episode.ShowName)
	assert.Equal(t, "series", r.Class)

	r = parseName("The Matrix (1999).mkv", true)
	require.NotNil(t, r.Movie)
	assert.Equal(t, release.Movie{Title: "The Matrix", Year: 1999}, *r.Movie)
	assert.Equal(t, "movie", r.Class)
}

func TestParseName_Folder(t *testing.T) {
	r := parseName("Frieren - Beyond Journey's End (2023)", false)
	assert.Equal(t, "Frieren - Beyond Journey's End", r.Folder)
	assert.Equal(t, 2023, r.FolderYear)

	assert.True(t, parseName("Extras", false).Special)
}

func TestReadNameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	content := "Breaking Bad S01E05.mkv\n# comment\n\n  The Matrix (1999).mkv  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	names, err := readNameFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breaking Bad S01E05.mkv", "The Matrix (1999).mkv"}, names)

	_, err = readNameFile("/nonexistent/names.txt")
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "Breaking Bad S01E05.mkv")
	require.NoError(t, err)
	assert.Contains(t, out, "Episode:  Breaking Bad S01E05")
	assert.Contains(t, out, "Class:    series")

	out, err = execute(t, "--json", "parse", "--movie", "The Matrix (1999).mkv")
	require.NoError(t, err)
	var results []ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Movie)
	assert.Equal(t, 1999, results[0].Movie.Year)

	_, err = execute(t, "parse")
	assert.Error(t, err)
}
