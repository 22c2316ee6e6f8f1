// internal/utils/rate_limiter.go
package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter wraps the golang.org/x/time/rate limiter
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until the rate limiter allows the next request
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// KeyedRateLimiter keeps one token bucket per key (usually a client IP).
// Buckets untouched for longer than idleTTL are dropped on the next sweep.
type KeyedRateLimiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter creates a per-key limiter.
func NewKeyedRateLimiter(requestsPerSecond float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	if burst < 1 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedRateLimiter{
		rps:     rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: idleTTL,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

// Allow reports whether key may proceed now.
func (k *KeyedRateLimiter) Allow(key string) bool {
	k.mu.Lock()
	now := k.now()
	if now.Sub(k.lastSweep) > k.idleTTL {
		k.sweepLocked(now)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.rps, k.burst)}
		k.entries[key] = entry
	}
	entry.lastSeen = now
	k.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedRateLimiter) sweepLocked(now time.Time) {
	for key, entry := range k.entries {
		if now.Sub(entry.lastSeen) > k.idleTTL {
			delete(k.entries, key)
		}
	}
	k.lastSweep = now
}
