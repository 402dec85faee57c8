package queue

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := migrations.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Up(context.Background(), db)
	require.NoError(t, err)
	return db
}

// seedMovies inserts n movies into a fresh library and returns their IDs.
func seedMovies(t *testing.T, lib *library.Store, n int) []int64 {
	t.Helper()
	l := &library.Library{Name: "Movies", Path: "/media/movies", Kind: library.KindMovie}
	require.NoError(t, lib.UpsertLibrary(l))

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		m := &library.Movie{
			LibraryID: l.ID,
			Name:      fmt.Sprintf("Movie %d", i+1),
			Path:      fmt.Sprintf("/media/movies/movie-%d.mkv", i+1),
		}
		require.NoError(t, lib.AddMovie(m))
		ids = append(ids, m.ID)
	}
	return ids
}
