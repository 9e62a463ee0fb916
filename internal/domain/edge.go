package domain

import (
	"fmt"
	"time"
)

// EdgePrefix is the cache key prefix for Edge records.
const EdgePrefix = "edge:"

// Edge is a cached, symmetric compatibility record between two candidates
// (spec §3). UserA is always the lexicographically smaller UserID so the
// key and the record agree on canonical ordering by construction.
type Edge struct {
	UserA     UserID    `json:"userA"`
	UserB     UserID    `json:"userB"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// EdgeKey returns the canonical cache key for the pair (a, b), independent
// of argument order. This is the single source of truth for the symmetry
// invariant: EdgeKey(u, v) == EdgeKey(v, u) for all u, v.
func EdgeKey(a, b UserID) string {
	lo, hi := canonicalOrder(a, b)
	return fmt.Sprintf("%s%s:%s", EdgePrefix, lo, hi)
}

// NewEdge builds an Edge with UserA/UserB placed in canonical order.
func NewEdge(a, b UserID, score float64, createdAt time.Time) Edge {
	lo, hi := canonicalOrder(a, b)
	return Edge{UserA: lo, UserB: hi, Score: score, CreatedAt: createdAt}
}

func canonicalOrder(a, b UserID) (lo, hi UserID) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Endpoints returns the two user IDs this edge connects.
func (e Edge) Endpoints() (UserID, UserID) {
	return e.UserA, e.UserB
}
