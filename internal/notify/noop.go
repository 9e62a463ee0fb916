package notify

import (
	"context"
	"log/slog"

	"github.com/roomie-match/matchcore/internal/domain"
)

// NoopNotifier discards every notification. Used when emailEnabled is
// false or AWS credentials are absent (spec §4.3 "master notifier switch").
type NoopNotifier struct{}

// NewNoopNotifier logs once at construction, mirroring the source
// system's "Email notifier disabled" startup log line.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger != nil {
		logger.Info("notifier disabled, notifications will be dropped")
	}
	return &NoopNotifier{}
}

func (NoopNotifier) NotifyMatched(ctx context.Context, recipient, partner domain.UserID, compatibilityScore float64) {
}

func (NoopNotifier) NotifyExpired(ctx context.Context, recipient domain.UserID) {}

var _ Notifier = NoopNotifier{}
