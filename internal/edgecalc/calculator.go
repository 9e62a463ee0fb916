package edgecalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/errs"
	"github.com/roomie-match/matchcore/internal/logging"
	"github.com/roomie-match/matchcore/internal/metrics"
)

// defaultMaxSkipStreak is used when NewCalculator is given a non-positive streak.
const defaultMaxSkipStreak = 20

// Calculator runs the edge-calculation poll loop (spec §4.1).
type Calculator struct {
	Cache    cache.Client
	Policy   HardFilterPolicy
	Logger   *slog.Logger
	EventLog *logging.EventLogger
	Metrics  *metrics.Recorder
	Now      func() time.Time

	// MaxSkipStreak is the number of consecutive ticks a malformed entry
	// can fail to parse before it is escalated from a warn to a single
	// error log line.
	MaxSkipStreak int

	// quarantined counts malformed queue entries skipped per userId, for
	// operator visibility only; a persistently malformed entry never
	// blocks the rest of the pass.
	quarantined map[domain.UserID]int
	// escalated tracks which userIds have already had their error-level
	// escalation logged, so it fires exactly once per entry.
	escalated map[domain.UserID]bool
}

// NewCalculator returns a ready Calculator. logger and eventLog may be nil.
// maxSkipStreak <= 0 falls back to defaultMaxSkipStreak.
func NewCalculator(c cache.Client, policy HardFilterPolicy, logger *slog.Logger, eventLog *logging.EventLogger, maxSkipStreak int) *Calculator {
	if maxSkipStreak <= 0 {
		maxSkipStreak = defaultMaxSkipStreak
	}
	return &Calculator{
		Cache:         c,
		Policy:        policy,
		Logger:        logger,
		EventLog:      eventLog,
		Now:           time.Now,
		MaxSkipStreak: maxSkipStreak,
		quarantined:   make(map[domain.UserID]int),
		escalated:     make(map[domain.UserID]bool),
	}
}

// WithMetrics attaches a recorder for edges_written/entries_processed. A
// nil recorder is safe and simply records nothing.
func (c *Calculator) WithMetrics(r *metrics.Recorder) *Calculator {
	c.Metrics = r
	return c
}

// Run polls every interval until ctx is cancelled.
func (c *Calculator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := c.Tick(ctx); err != nil {
			if c.Logger != nil {
				c.Logger.Error("edge calculator tick failed", "error", err)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one full pass over the queue (spec §4.1 loop contract).
func (c *Calculator) Tick(ctx context.Context) error {
	entries, err := c.loadQueue(ctx)
	if err != nil {
		return err
	}

	calculated := make([]domain.QueueEntry, 0, len(entries))
	var newEntries []domain.QueueEntry
	for _, e := range entries {
		if e.EdgeCalculated {
			calculated = append(calculated, e)
		} else {
			newEntries = append(newEntries, e)
		}
	}
	sort.Slice(newEntries, func(i, j int) bool {
		return newEntries[i].RegisteredAt.Before(newEntries[j].RegisteredAt)
	})

	edgesWritten := 0
	skipped := 0
	for _, u := range newEntries {
		if err := domain.ValidateSurvey(u.Survey, u.Weights); err != nil {
			c.quarantined[u.UserID]++
			skipped++
			streak := c.quarantined[u.UserID]
			if c.Logger != nil {
				if streak >= c.MaxSkipStreak && !c.escalated[u.UserID] {
					c.escalated[u.UserID] = true
					c.Logger.Error("queue entry will never self-heal, quarantined past max skip streak", "userId", u.UserID, "error", err, "streak", streak)
				} else {
					c.Logger.Warn("quarantining malformed queue entry", "userId", u.UserID, "error", err, "streak", streak)
				}
			}
			continue
		}

		for _, v := range calculated {
			if u.UserID == v.UserID {
				continue
			}
			if !PassesHardFilter(c.Policy, u.Basic, v.Basic) {
				if c.EventLog != nil {
					c.EventLog.Log(map[string]any{"event": "hard_filter_rejected", "userA": u.UserID, "userB": v.UserID})
				}
				continue
			}
			score := Compatibility(c.Policy, u.Basic, v.Basic, u.Survey, v.Survey, u.Weights, v.Weights)
			edge := domain.NewEdge(u.UserID, v.UserID, score, c.Now())
			if err := c.writeEdge(ctx, edge); err != nil {
				return err
			}
			edgesWritten++
			if c.EventLog != nil {
				c.EventLog.Log(map[string]any{"event": "edge_written", "userA": edge.UserA, "userB": edge.UserB, "score": edge.Score})
			}
		}

		if err := c.markCalculated(ctx, u.UserID); err != nil {
			return err
		}
		calculated = append(calculated, u)
	}

	if c.EventLog != nil {
		c.EventLog.Log(map[string]any{"event": "tick_complete", "new": len(newEntries), "edgesWritten": edgesWritten, "quarantined": skipped})
	}
	c.Metrics.EdgesWritten(ctx, int64(edgesWritten))
	c.Metrics.EntriesProcessed(ctx, int64(len(newEntries)))
	return nil
}

func (c *Calculator) loadQueue(ctx context.Context) ([]domain.QueueEntry, error) {
	keys, err := c.Cache.Keys(ctx, domain.QueuePrefix+"*")
	if err != nil {
		return nil, errs.E(errs.TransientCache, "edgecalc: list queue keys", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := c.Cache.MGet(ctx, keys...)
	if err != nil {
		return nil, errs.E(errs.TransientCache, "edgecalc: mget queue entries", err)
	}

	entries := make([]domain.QueueEntry, 0, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		var e domain.QueueEntry
		if err := json.Unmarshal(v, &e); err != nil {
			if c.Logger != nil {
				c.Logger.Warn("skipping unparseable queue entry", "key", keys[i], "error", err)
			}
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Calculator) writeEdge(ctx context.Context, e domain.Edge) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errs.E(errs.DataFormat, "edgecalc: marshal edge", err)
	}
	key := domain.EdgeKey(e.UserA, e.UserB)
	if err := c.Cache.Set(ctx, key, data); err != nil {
		return errs.E(errs.TransientCache, fmt.Sprintf("edgecalc: write edge %s", key), err)
	}
	return nil
}

// markCalculated re-reads userId's queue entry and flips edgeCalculated,
// leaving every other field (notably priority) untouched, so a concurrent
// Scheduler priority bump is never clobbered (spec §4.1 step 2).
func (c *Calculator) markCalculated(ctx context.Context, userID domain.UserID) error {
	key := domain.QueueKey(userID)
	raw, err := c.Cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		// Entry was evicted (paired/expired) between snapshot and now; nothing to flip.
		return nil
	}
	if err != nil {
		return errs.E(errs.TransientCache, fmt.Sprintf("edgecalc: re-read %s", key), err)
	}
	var e domain.QueueEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return errs.E(errs.DataFormat, fmt.Sprintf("edgecalc: unmarshal %s", key), err)
	}
	e.EdgeCalculated = true
	data, err := json.Marshal(e)
	if err != nil {
		return errs.E(errs.DataFormat, fmt.Sprintf("edgecalc: marshal %s", key), err)
	}
	if err := c.Cache.Set(ctx, key, data); err != nil {
		return errs.E(errs.TransientCache, fmt.Sprintf("edgecalc: write %s", key), err)
	}
	return nil
}
