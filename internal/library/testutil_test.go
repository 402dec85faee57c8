package library

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

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

// seedLibrary creates a library and returns it.
func seedLibrary(t *testing.T, store *Store, name string, kind Kind) *Library {
	t.Helper()
	lib := &Library{Name: name, Path: "/media/" + name, Kind: kind}
	require.NoError(t, store.UpsertLibrary(lib))
	return lib
}

func ptr[T any](v T) *T {
	return &v
}
