// Package store persists match history and property status to the
// relational database (spec §4.3, §5). Writes are transactional: a
// match's history row and its properties' status flip to "matched"
// commit together or not at all.
package store

import (
	"context"
	"errors"

	"github.com/roomie-match/matchcore/internal/domain"
)

// ErrNotFound is returned when a lookup by ID finds nothing.
var ErrNotFound = errors.New("store: not found")

// Store is the relational persistence surface the scheduler depends on.
type Store interface {
	// CommitMatches inserts each MatchHistoryRow and flips the matched
	// properties' status to MatchStatusMatched, all in a single
	// transaction per spec §5.4 ("same transaction... atomic").
	CommitMatches(ctx context.Context, matches []domain.MatchHistoryRow) error

	// ExpireProperties flips the given properties' status to
	// MatchStatusExpired (spec §4.3 expiration discipline).
	ExpireProperties(ctx context.Context, propertyIDs []int64) error

	// ListMatchHistory returns recent match history rows, most recent
	// first, for introspection (roomie-matchctl inspect history).
	ListMatchHistory(ctx context.Context, limit int) ([]domain.MatchHistoryRow, error)

	// PropertyStatus returns the current status of a property, or
	// ErrNotFound if unknown.
	PropertyStatus(ctx context.Context, propertyID int64) (domain.MatchStatus, error)

	Close() error
}
