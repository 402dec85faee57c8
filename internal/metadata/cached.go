package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

// Cache key prefixes.
const (
	keyAniListMedia  = "anilist:media:"
	keyAniListSearch = "anilist:search:"
	keyJikanAnime    = "jikan:anime:"
	keyJikanSearch   = "jikan:search:"
	keyAniDBAnime    = "anidb:anime:"
)

func searchKey(prefix, query string, year int) string {
	return fmt.Sprintf("%s%s:%d", prefix, strings.ToLower(strings.TrimSpace(query)), year)
}

// cachedAniList serves AniList lookups through the response cache.
type cachedAniList struct {
	next  AniListSource
	cache *Cache
	log   *slog.Logger
}

func (c *cachedAniList) BestMatch(ctx context.Context, title string, year int) (*anilist.Media, error) {
	return cachedFetch(ctx, c.cache, c.log, searchKey(keyAniListSearch, title, year), searchTTL, func() (*anilist.Media, error) {
		return c.next.BestMatch(ctx, title, year)
	})
}

func (c *cachedAniList) Get(ctx context.Context, id int64) (*anilist.Media, error) {
	return cachedFetch(ctx, c.cache, c.log, fmt.Sprintf("%s%d", keyAniListMedia, id), detailTTL, func() (*anilist.Media, error) {
		return c.next.Get(ctx, id)
	})
}

// cachedJikan serves Jikan lookups through the response cache.
type cachedJikan struct {
	next  JikanSource
	cache *Cache
	log   *slog.Logger
}

func (c *cachedJikan) BestMatch(ctx context.Context, query string, year int) (*jikan.Anime, error) {
	return cachedFetch(ctx, c.cache, c.log, searchKey(keyJikanSearch, query, year), searchTTL, func() (*jikan.Anime, error) {
		return c.next.BestMatch(ctx, query, year)
	})
}

func (c *cachedJikan) Get(ctx context.Context, malID int64) (*jikan.Anime, error) {
	return cachedFetch(ctx, c.cache, c.log, fmt.Sprintf("%s%d", keyJikanAnime, malID), detailTTL, func() (*jikan.Anime, error) {
		return c.next.Get(ctx, malID)
	})
}

// cachedAniDB serves AniDB lookups through the response cache.
type cachedAniDB struct {
	next  AniDBSource
	cache *Cache
	log   *slog.Logger
}

func (c *cachedAniDB) Get(ctx context.Context, aid int64) (*anidb.Anime, error) {
	return cachedFetch(ctx, c.cache, c.log, fmt.Sprintf("%s%d", keyAniDBAnime, aid), detailTTL, func() (*anidb.Anime, error) {
		return c.next.Get(ctx, aid)
	})
}
