package metadata

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Default minimum spacing between calls to each provider.
const (
	AniListInterval = 700 * time.Millisecond
	JikanInterval   = 350 * time.Millisecond
	AniDBInterval   = 2 * time.Second
	TMDBInterval    = 250 * time.Millisecond
)

// Gate spaces calls to one provider. Waiters are admitted one at a time,
// at most one per interval, across all goroutines sharing the gate.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate returns a gate admitting one call per interval.
// A non-positive interval disables spacing.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limiter: rate.NewLimiter(limit, 1), interval: interval}
}

// AwaitTurn blocks until the caller may contact the provider or ctx ends.
func (g *Gate) AwaitTurn(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}
