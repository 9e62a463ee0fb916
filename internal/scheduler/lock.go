// Package scheduler implements the distributed-lock-guarded matching cycle
// (spec §4.2): snapshot, orphan GC, candidate selection, greedy pairing,
// transactional commit, eviction, notification, expiration, and aging.
package scheduler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/errs"
)

// Lock wraps the leadership lock primitive (spec §6): acquisition via
// SET NX EX, release via a compare-and-delete that only the holder can
// perform.
type Lock struct {
	cache cache.Client
	key   string
}

// NewLock returns a Lock bound to key on c.
func NewLock(c cache.Client, key string) *Lock {
	return &Lock{cache: c, key: key}
}

// Acquire attempts to become leader for ttlSeconds. Returns the random
// token on success, or ("", false) if another instance holds the lock.
func (l *Lock) Acquire(ctx context.Context, ttlSeconds int) (string, bool, error) {
	token, err := randomToken()
	if err != nil {
		return "", false, errs.E(errs.FatalConfig, "scheduler: generate lock token", err)
	}
	ok, err := l.cache.SetIfAbsentWithTTL(ctx, l.key, []byte(token), ttlSeconds)
	if err != nil {
		return "", false, errs.E(errs.TransientCache, "scheduler: acquire lock", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock iff token still matches the stored value, so a
// leader that outlived its own lease can never delete a newer leader's
// lock (spec §6).
func (l *Lock) Release(ctx context.Context, token string) error {
	_, err := l.cache.DelIfEqual(ctx, l.key, []byte(token))
	if err != nil {
		return errs.E(errs.TransientCache, "scheduler: release lock", err)
	}
	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
