package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/errs"
	"github.com/roomie-match/matchcore/internal/notify"
	"github.com/roomie-match/matchcore/internal/store"
)

// CycleResult summarizes one completed Scheduler cycle for logging and
// introspection.
type CycleResult struct {
	Snapshotted int
	OrphansGCed int
	Candidates  int
	Matched     int
	Expired     int
	Aged        int
	Started     time.Time
	Finished    time.Time
}

// Config holds the tunables a cycle needs (spec §6).
type Config struct {
	MatchThreshold    float64
	PriorityBypass    bool
	PriorityBypassMin int
	ExpireAfter       time.Duration
	ChunkSize         int
}

// Cycle orchestrates exactly one cycle of the Scheduler (spec §4.2). It
// assumes the caller already holds the leadership lock.
type Cycle struct {
	Cache    cache.Client
	Store    store.Store
	Notifier notify.Notifier
	Config   Config
	Now      func() time.Time
}

// Run executes the full cycle protocol and returns a summary.
func (c *Cycle) Run(ctx context.Context) (CycleResult, error) {
	result := CycleResult{Started: c.Now()}

	entries, err := c.snapshotQueue(ctx)
	if err != nil {
		return result, err
	}
	result.Snapshotted = len(entries)

	edges, err := c.snapshotEdges(ctx)
	if err != nil {
		return result, err
	}

	live, orphaned := c.partitionOrphans(edges, entries)
	result.OrphansGCed = len(orphaned)
	if len(orphaned) > 0 {
		keys := make([]string, len(orphaned))
		for i, e := range orphaned {
			keys[i] = domain.EdgeKey(e.UserA, e.UserB)
		}
		if err := c.Cache.Del(ctx, keys...); err != nil {
			return result, errs.E(errs.TransientCache, "scheduler: delete orphan edges", err)
		}
	}

	candidates := make([]CandidateEdge, 0, len(live))
	for _, e := range live {
		a, aOK := entries[e.UserA]
		b, bOK := entries[e.UserB]
		if !aOK || !bOK {
			continue
		}
		candidates = append(candidates, CandidateEdge{Edge: e, PriorityA: a.Priority, PriorityB: b.Priority})
	}
	result.Candidates = len(candidates)

	selected := SelectPairs(candidates, c.Config.MatchThreshold, c.Config.PriorityBypass, c.Config.PriorityBypassMin)

	if err := c.commitMatches(ctx, selected, entries); err != nil {
		return result, err
	}
	result.Matched = len(selected) * 2

	paired := make(map[domain.UserID]bool, len(selected)*2)
	for _, e := range selected {
		a, b := e.Endpoints()
		paired[a] = true
		paired[b] = true
	}
	for _, e := range selected {
		a, b := e.Endpoints()
		c.notifyMatched(ctx, entries[a], entries[b], e.Score)
	}

	expired, err := c.expireStale(ctx, entries, paired)
	if err != nil {
		return result, err
	}
	result.Expired = len(expired)

	aged, err := c.ageSurvivors(ctx, entries, paired, expiredSet(expired))
	if err != nil {
		return result, err
	}
	result.Aged = aged

	result.Finished = c.Now()
	return result, nil
}

func expiredSet(expired []domain.QueueEntry) map[domain.UserID]bool {
	set := make(map[domain.UserID]bool, len(expired))
	for _, e := range expired {
		set[e.UserID] = true
	}
	return set
}

// snapshotQueue reads all QueueEntries in bounded chunks (spec §4.2 step 1).
func (c *Cycle) snapshotQueue(ctx context.Context) (map[domain.UserID]domain.QueueEntry, error) {
	keys, err := c.Cache.Keys(ctx, domain.QueuePrefix+"*")
	if err != nil {
		return nil, errs.E(errs.TransientCache, "scheduler: list queue keys", err)
	}
	entries := make(map[domain.UserID]domain.QueueEntry, len(keys))
	chunkSize := c.Config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}
	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		vals, err := c.Cache.MGet(ctx, chunk...)
		if err != nil {
			return nil, errs.E(errs.TransientCache, "scheduler: mget queue chunk", err)
		}
		for _, v := range vals {
			if v == nil {
				continue
			}
			var e domain.QueueEntry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries[e.UserID] = e
		}
	}
	return entries, nil
}

// snapshotEdges reads all Edges in bounded chunks.
func (c *Cycle) snapshotEdges(ctx context.Context) ([]domain.Edge, error) {
	keys, err := c.Cache.Keys(ctx, domain.EdgePrefix+"*")
	if err != nil {
		return nil, errs.E(errs.TransientCache, "scheduler: list edge keys", err)
	}
	edges := make([]domain.Edge, 0, len(keys))
	chunkSize := c.Config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}
	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		vals, err := c.Cache.MGet(ctx, chunk...)
		if err != nil {
			return nil, errs.E(errs.TransientCache, "scheduler: mget edge chunk", err)
		}
		for _, v := range vals {
			if v == nil {
				continue
			}
			var e domain.Edge
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// partitionOrphans splits edges into those with both endpoints live in the
// queue snapshot and those with at least one missing endpoint (spec §4.2
// step 2).
func (c *Cycle) partitionOrphans(edges []domain.Edge, entries map[domain.UserID]domain.QueueEntry) (live, orphaned []domain.Edge) {
	for _, e := range edges {
		a, b := e.Endpoints()
		if _, aOK := entries[a]; !aOK {
			orphaned = append(orphaned, e)
			continue
		}
		if _, bOK := entries[b]; !bOK {
			orphaned = append(orphaned, e)
			continue
		}
		live = append(live, e)
	}
	return live, orphaned
}

// commitMatches persists selected pairs transactionally, then best-effort
// evicts the paired queue entries from the cache (spec §4.2 steps 6-7).
func (c *Cycle) commitMatches(ctx context.Context, selected []domain.Edge, entries map[domain.UserID]domain.QueueEntry) error {
	if len(selected) == 0 {
		return nil
	}
	now := c.Now()
	rows := make([]domain.MatchHistoryRow, 0, len(selected))
	for _, e := range selected {
		a, b := e.Endpoints()
		rows = append(rows, domain.NewPendingMatch(e, entries[a], entries[b], now))
	}
	if err := c.Store.CommitMatches(ctx, rows); err != nil {
		return errs.E(errs.TransientDB, "scheduler: commit matches", err)
	}

	var evictKeys []string
	for _, e := range selected {
		a, b := e.Endpoints()
		evictKeys = append(evictKeys, domain.QueueKey(a), domain.QueueKey(b))
	}
	// Best-effort: a failure here is reconciled next cycle, the pair's
	// edge reclaimed as an orphan once its endpoints are gone (spec §4.2
	// step 7, Failure semantics).
	_ = c.Cache.Del(ctx, evictKeys...)
	return nil
}

func (c *Cycle) notifyMatched(ctx context.Context, a, b domain.QueueEntry, score float64) {
	if c.Notifier == nil {
		return
	}
	c.Notifier.NotifyMatched(ctx, a.UserID, b.UserID, score)
	c.Notifier.NotifyMatched(ctx, b.UserID, a.UserID, score)
}

// expireStale deletes and reports long-waiting entries not selected for a
// match this cycle (spec §4.2 step 9).
func (c *Cycle) expireStale(ctx context.Context, entries map[domain.UserID]domain.QueueEntry, paired map[domain.UserID]bool) ([]domain.QueueEntry, error) {
	var victims []domain.QueueEntry
	for _, e := range entries {
		if paired[e.UserID] {
			continue
		}
		if c.Now().Sub(e.RegisteredAt) > c.Config.ExpireAfter {
			victims = append(victims, e)
		}
	}
	if len(victims) == 0 {
		return nil, nil
	}

	propertyIDs := make([]int64, len(victims))
	keys := make([]string, len(victims))
	for i, v := range victims {
		propertyIDs[i] = v.PropertyID
		keys[i] = domain.QueueKey(v.UserID)
	}
	if err := c.Store.ExpireProperties(ctx, propertyIDs); err != nil {
		return nil, errs.E(errs.TransientDB, "scheduler: expire properties", err)
	}
	if err := c.Cache.Del(ctx, keys...); err != nil {
		return nil, errs.E(errs.TransientCache, "scheduler: evict expired entries", err)
	}
	for _, v := range victims {
		if c.Notifier != nil {
			c.Notifier.NotifyExpired(ctx, v.UserID)
		}
	}
	return victims, nil
}

// ageSurvivors increments priority by one for every entry that survived
// this cycle without being paired or expired (spec §4.2 "aging"). Each
// entry is re-read immediately before the write so a concurrent Edge
// Calculator update to edgeCalculated is never clobbered (spec §8
// scenario 6).
func (c *Cycle) ageSurvivors(ctx context.Context, entries map[domain.UserID]domain.QueueEntry, paired, expired map[domain.UserID]bool) (int, error) {
	aged := 0
	for userID := range entries {
		if paired[userID] || expired[userID] {
			continue
		}
		key := domain.QueueKey(userID)
		raw, err := c.Cache.Get(ctx, key)
		if errors.Is(err, cache.ErrNotFound) {
			continue
		}
		if err != nil {
			return aged, errs.E(errs.TransientCache, "scheduler: re-read entry for aging", err)
		}
		var current domain.QueueEntry
		if err := json.Unmarshal(raw, &current); err != nil {
			return aged, errs.E(errs.DataFormat, "scheduler: unmarshal entry for aging", err)
		}
		current.Priority++
		data, err := json.Marshal(current)
		if err != nil {
			return aged, errs.E(errs.DataFormat, "scheduler: marshal aged entry", err)
		}
		if err := c.Cache.Set(ctx, key, data); err != nil {
			return aged, errs.E(errs.TransientCache, "scheduler: write aged entry", err)
		}
		aged++
	}
	return aged, nil
}
