//go:build integration

package metadata_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
	"github.com/vmunix/mediarr/pkg/release"
)

func liveResolver(t *testing.T) *metadata.Resolver {
	t.Helper()
	src := metadata.Sources{
		AniList: anilist.New(),
		Jikan:   jikan.New(),
		AniDB:   anidb.New(),
	}
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		src.TMDB = tmdb.NewClient(key)
	}
	return metadata.NewResolver(src)
}

func TestResolver_Integration_Anime(t *testing.T) {
	rec, err := liveResolver(t).Resolve(context.Background(), "Sousou no Frieren", 2023, release.ClassAnime)
	require.NoError(t, err)
	require.NotZero(t, rec.AniListID)
	require.NotEmpty(t, rec.Overview)
	t.Logf("resolved %q via %s (anilist=%d mal=%d)", rec.Name, rec.Provider, rec.AniListID, rec.MALID)
}

func TestResolver_Integration_Series(t *testing.T) {
	if os.Getenv("TMDB_API_KEY") == "" {
		t.Skip("TMDB_API_KEY not set")
	}
	r := liveResolver(t)
	ctx := context.Background()

	rec, err := r.Resolve(ctx, "Breaking Bad", 2008, release.ClassSeries)
	require.NoError(t, err)
	t.Logf("resolved %q via %s", rec.Name, rec.Provider)
	if rec.TMDBID == 0 {
		t.Skip("resolved through an anime tier; no TMDB episode to check")
	}

	ep, err := r.Episode(ctx, rec, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, ep)
	require.Equal(t, "Pilot", ep.Name)
}
