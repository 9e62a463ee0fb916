// Package cache wraps the Redis-backed queue/edge cache and leadership
// lock primitive (spec §4.4, §6). Grounded on the corpus's FluxForge
// control-plane, which uses a Redis-backed store "for coordination AND
// durable epochs" — the same dual cache+lock role this package plays.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Client is the minimal cache surface the matching core depends on
// (spec §4.4). Production code talks to Redis; tests talk to an
// in-process fake implementing the same interface.
type Client interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value for key with no expiry.
	Set(ctx context.Context, key string, value []byte) error

	// Del deletes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Keys enumerates all keys matching pattern. Acceptable because queue
	// sizes are O(10^4) per spec §4.4.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// MGet performs a batched read of the given keys. A missing key's
	// slot is nil in the result slice, at the same index as the request.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// SetIfAbsentWithTTL sets key to value only if it does not already
	// exist, with the given expiry. Returns true if the set happened
	// (i.e. the caller now holds the lock).
	SetIfAbsentWithTTL(ctx context.Context, key string, value []byte, ttlSeconds int) (bool, error)

	// DelIfEqual atomically deletes key only if its current value equals
	// expected, via a script (spec §6 "compares GET==token then DEL").
	// Returns true if the delete happened.
	DelIfEqual(ctx context.Context, key string, expected []byte) (bool, error)
}
