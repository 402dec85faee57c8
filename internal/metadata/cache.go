package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Cache TTLs for remote responses.
const (
	detailTTL = 7 * 24 * time.Hour
	searchTTL = time.Hour
)

// Cache is a SQLite-backed TTL store for remote provider responses.
// A nil *Cache is valid and never hits.
type Cache struct {
	db *sql.DB
}

// NewCache returns a cache over the metadata_cache table.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Get returns the unexpired value stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var (
		value     string
		expiresAt time.Time
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM metadata_cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if err != nil || !time.Now().Before(expiresAt) {
		return nil, false
	}
	return []byte(value), true
}

// Set stores value under key for ttl, replacing any previous value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), time.Now().UTC().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Prune drops expired rows and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM metadata_cache WHERE expires_at <= ?", time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return res.RowsAffected()
}

// cachedFetch serves key from c when present and decodable, otherwise
// calls fetch and stores its result. Cache failures are logged and never
// fail the lookup. Errors from fetch are not cached.
func cachedFetch[T any](ctx context.Context, c *Cache, log *slog.Logger, key string, ttl time.Duration, fetch func() (*T, error)) (*T, error) {
	if data, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			if log != nil {
				log.Debug("cache hit", "key", key)
			}
			return &v, nil
		}
		if log != nil {
			log.Warn("discarding undecodable cache entry", "key", key)
		}
	}

	v, err := fetch()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		if log != nil {
			log.Warn("failed to encode cache entry", "key", key, "error", err)
		}
		return v, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil && log != nil {
		log.Warn("failed to write cache entry", "key", key, "error", err)
	}
	return v, nil
}
