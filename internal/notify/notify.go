// Package notify implements the fire-and-forget post-match mail dispatcher
// (spec §4.3): bounded worker pool, oldest-drop backpressure, and an AWS
// SES backend. A delivery failure here must never affect the matching
// outcome (spec §4.2 Failure semantics).
package notify

import (
	"context"

	"github.com/roomie-match/matchcore/internal/domain"
)

// Notifier schedules best-effort mail sends. Both methods return
// immediately; delivery happens asynchronously and failures are logged
// only, never returned to the caller.
type Notifier interface {
	NotifyMatched(ctx context.Context, recipient, partner domain.UserID, compatibilityScore float64)
	NotifyExpired(ctx context.Context, recipient domain.UserID)
}
