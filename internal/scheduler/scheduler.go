package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/errs"
	"github.com/roomie-match/matchcore/internal/logging"
	"github.com/roomie-match/matchcore/internal/metrics"
	"github.com/roomie-match/matchcore/internal/notify"
	"github.com/roomie-match/matchcore/internal/store"
)

// Scheduler runs Cycle periodically under the leadership lock (spec §4.2).
type Scheduler struct {
	Cycle      *Cycle
	Lock       *Lock
	Interval   time.Duration
	LockExpire int
	Logger     *slog.Logger
	EventLog   *logging.EventLogger
	Metrics    *metrics.Recorder
	Now        func() time.Time
}

// WithMetrics attaches a recorder for cycle_duration_seconds. A nil
// recorder is safe and simply records nothing.
func (s *Scheduler) WithMetrics(r *metrics.Recorder) *Scheduler {
	s.Metrics = r
	return s
}

// New wires a Scheduler from its dependencies.
func New(c cache.Client, s store.Store, n notify.Notifier, cfg Config, lockKey string, lockExpireSeconds int,
	interval time.Duration, logger *slog.Logger, eventLog *logging.EventLogger) *Scheduler {
	now := time.Now
	return &Scheduler{
		Cycle: &Cycle{
			Cache:    c,
			Store:    s,
			Notifier: n,
			Config:   cfg,
			Now:      now,
		},
		Lock:       NewLock(c, lockKey),
		Interval:   interval,
		LockExpire: lockExpireSeconds,
		Logger:     logger,
		EventLog:   eventLog,
		Now:        now,
	}
}

// Run ticks every Interval until ctx is cancelled, skipping a tick
// silently whenever the leadership lock is held elsewhere.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := s.Now()
	token, acquired, err := s.Lock.Acquire(ctx, s.LockExpire)
	if err != nil {
		s.logError(errs.E(errs.TransientCache, "scheduler: lock acquisition", err))
		return
	}
	if !acquired {
		if s.Logger != nil {
			s.Logger.Debug("scheduler cycle skipped, lock held elsewhere")
		}
		return
	}
	defer func() {
		if err := s.Lock.Release(ctx, token); err != nil && s.Logger != nil {
			s.Logger.Warn("failed to release scheduler lock", "error", err)
		}
	}()

	result, err := s.Cycle.Run(ctx)
	if err != nil {
		s.logError(err)
		return
	}

	elapsed := s.Now().Sub(start)
	s.Metrics.CycleDuration(ctx, elapsed.Seconds())
	if elapsed > s.Interval && s.Logger != nil {
		s.Logger.Warn("scheduler cycle overran its interval", "elapsed", elapsed, "interval", s.Interval)
	}
	if s.Logger != nil {
		s.Logger.Info("scheduler cycle complete",
			"snapshotted", result.Snapshotted,
			"orphansGCed", result.OrphansGCed,
			"candidates", result.Candidates,
			"matched", result.Matched,
			"expired", result.Expired,
			"aged", result.Aged,
			"elapsed", elapsed)
	}
	if s.EventLog != nil {
		s.EventLog.Log(map[string]any{
			"event":       "cycle_complete",
			"snapshotted": result.Snapshotted,
			"orphansGCed": result.OrphansGCed,
			"candidates":  result.Candidates,
			"matched":     result.Matched,
			"expired":     result.Expired,
			"aged":        result.Aged,
			"elapsedMs":   elapsed.Milliseconds(),
		})
	}
}

func (s *Scheduler) logError(err error) {
	if s.Logger != nil {
		s.Logger.Error("scheduler cycle failed", "error", err)
	}
	if s.EventLog != nil {
		s.EventLog.Log(map[string]any{"event": "cycle_error", "error": err.Error()})
	}
}
