package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUp_AppliesAllAndIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "mediarr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	applied, err := Up(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, applied)

	applied, err = Up(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	v, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	for _, table := range []string{"libraries", "items", "images", "image_queue", "thumbnail_queue", "unmatched_series", "metadata_cache", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_EnablesForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var on int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)
}
