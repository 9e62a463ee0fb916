// Package ratelimit provides per-key token bucket rate limiting, used by
// the notifier pool to cap outbound SES send rate.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter implements a per-key token bucket rate limiter by keeping an
// independent golang.org/x/time/rate.Limiter per key, so each key gets its
// own bucket with the configured rate and burst. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
	nowFunc func() time.Time // injectable clock for testing
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
// The burst size also serves as the initial number of tokens available.
func NewLimiter(r float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		rate:    rate.Limit(r),
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow checks if a request for the given key should be allowed.
// Returns true if allowed, false if rate limited.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.rate, l.burst)
		l.buckets[key] = b
	}

	return b.AllowN(l.nowFunc(), 1)
}

// CategoryLimiters maps notification categories ("matched", "expired") to
// their rate limiters, so a burst of expirations can never starve matched
// notifications of send capacity or vice versa.
type CategoryLimiters map[string]*Limiter

// NewNotifierLimiters builds the default per-category limiters for the
// notifier pool, both driven off the same configured rate/burst.
func NewNotifierLimiters(ratePerSecond float64, burst int) CategoryLimiters {
	return CategoryLimiters{
		"matched": NewLimiter(ratePerSecond, burst),
		"expired": NewLimiter(ratePerSecond, burst),
	}
}

// CheckLimit checks the rate limit for a given category.
// Returns nil if allowed, or an error if rate limited.
// Categories without a configured limiter are always allowed.
func CheckLimit(limiters CategoryLimiters, category string) error {
	limiter, ok := limiters[category]
	if !ok {
		return nil // No limiter configured = no limit
	}

	if !limiter.Allow(category) {
		return fmt.Errorf("rate limit exceeded for %s notifications, please try again shortly", category)
	}

	return nil
}
