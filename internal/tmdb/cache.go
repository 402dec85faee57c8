package tmdb

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// responseCache holds mapped TMDB responses keyed by request.
type responseCache struct {
	store *cache.Cache
}

func newCache(ttl time.Duration) *responseCache {
	return &responseCache{store: cache.New(ttl, 2*ttl)}
}

func cacheKey(kind string, parts ...any) string {
	key := kind
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// lookup returns the cached value for key when it holds a T.
func lookup[T any](c *responseCache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (c *responseCache) set(key string, v any) {
	if c == nil {
		return
	}
	c.store.Set(key, v, cache.DefaultExpiration)
}

func (c *responseCache) count() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}
