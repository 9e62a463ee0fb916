package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/store"
)

func putQueueEntry(t *testing.T, c cache.Client, e domain.QueueEntry) {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(context.Background(), domain.QueueKey(e.UserID), data); err != nil {
		t.Fatal(err)
	}
}

func putEdge(t *testing.T, c cache.Client, e domain.Edge) {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(context.Background(), domain.EdgeKey(e.UserA, e.UserB), data); err != nil {
		t.Fatal(err)
	}
}

func newCycle(c cache.Client, s store.Store, cfg Config) *Cycle {
	return &Cycle{
		Cache:  c,
		Store:  s,
		Config: cfg,
		Now:    time.Now,
	}
}

func defaultConfig() Config {
	return Config{MatchThreshold: 80, ExpireAfter: 24 * time.Hour, ChunkSize: 500}
}

func TestCycle_BasicPairCommitsAndEvicts(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryClient()
	s := store.NewFakeStore(map[int64]domain.MatchStatus{1: domain.MatchStatusWaiting, 2: domain.MatchStatusWaiting})

	a := domain.QueueEntry{UserID: "a", PropertyID: 1, RegisteredAt: time.Now()}
	b := domain.QueueEntry{UserID: "b", PropertyID: 2, RegisteredAt: time.Now()}
	putQueueEntry(t, c, a)
	putQueueEntry(t, c, b)
	putEdge(t, c, domain.NewEdge("a", "b", 100, time.Now()))

	cycle := newCycle(c, s, defaultConfig())
	result, err := cycle.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 2 {
		t.Errorf("Matched = %d, want 2", result.Matched)
	}

	rows, _ := s.ListMatchHistory(ctx, 10)
	if len(rows) != 1 {
		t.Fatalf("expected 1 match history row, got %d", len(rows))
	}

	if _, err := c.Get(ctx, domain.QueueKey("a")); err == nil {
		t.Error("expected a's queue entry to be evicted")
	}
	if _, err := c.Get(ctx, domain.QueueKey("b")); err == nil {
		t.Error("expected b's queue entry to be evicted")
	}
}

func TestCycle_HardFilterLeavesBothAgedNotMatched(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryClient()
	s := store.NewFakeStore(nil)

	a := domain.QueueEntry{UserID: "a", PropertyID: 1, RegisteredAt: time.Now()}
	b := domain.QueueEntry{UserID: "b", PropertyID: 2, RegisteredAt: time.Now()}
	putQueueEntry(t, c, a)
	putQueueEntry(t, c, b)
	// No edge written (hard filter rejected the pair upstream).

	cycle := newCycle(c, s, defaultConfig())
	result, err := cycle.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 0 {
		t.Errorf("Matched = %d, want 0", result.Matched)
	}
	if result.Aged != 2 {
		t.Errorf("Aged = %d, want 2", result.Aged)
	}

	raw, err := c.Get(ctx, domain.QueueKey("a"))
	if err != nil {
		t.Fatal(err)
	}
	var reread domain.QueueEntry
	json.Unmarshal(raw, &reread)
	if reread.Priority != 1 {
		t.Errorf("priority = %d, want 1", reread.Priority)
	}
}

func TestCycle_ThresholdWithAgingPromotesSubThresholdEdge(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryClient()
	s := store.NewFakeStore(map[int64]domain.MatchStatus{1: domain.MatchStatusWaiting, 2: domain.MatchStatusWaiting})

	a := domain.QueueEntry{UserID: "a", PropertyID: 1, Priority: 19, RegisteredAt: time.Now()}
	b := domain.QueueEntry{UserID: "b", PropertyID: 2, Priority: 19, RegisteredAt: time.Now()}
	putQueueEntry(t, c, a)
	putQueueEntry(t, c, b)
	putEdge(t, c, domain.NewEdge("a", "b", 70, time.Now()))

	cfg := Config{MatchThreshold: 80, PriorityBypass: true, PriorityBypassMin: 20, ExpireAfter: 24 * time.Hour, ChunkSize: 500}
	cycle := newCycle(c, s, cfg)
	result, err := cycle.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 2 {
		t.Errorf("expected edge admitted via priority bypass on cycle 20, Matched = %d", result.Matched)
	}
}

func TestCycle_OrphanReclamation(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryClient()
	s := store.NewFakeStore(nil)

	a := domain.QueueEntry{UserID: "a", PropertyID: 1, RegisteredAt: time.Now()}
	b := domain.QueueEntry{UserID: "b", PropertyID: 2, RegisteredAt: time.Now()}
	// C is absent: its queue entry was deleted externally, but its edges remain.
	putQueueEntry(t, c, a)
	putQueueEntry(t, c, b)
	putEdge(t, c, domain.NewEdge("a", "b", 10, time.Now()))
	putEdge(t, c, domain.NewEdge("a", "c", 10, time.Now()))
	putEdge(t, c, domain.NewEdge("b", "c", 10, time.Now()))

	cycle := newCycle(c, s, defaultConfig())
	result, err := cycle.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.OrphansGCed != 2 {
		t.Errorf("OrphansGCed = %d, want 2 (a-c and b-c)", result.OrphansGCed)
	}
	if _, err := c.Get(ctx, domain.EdgeKey("a", "b")); err != nil {
		t.Error("expected a-b edge to survive (both endpoints live)")
	}
	if _, err := c.Get(ctx, domain.EdgeKey("a", "c")); err == nil {
		t.Error("expected a-c edge to be reclaimed as orphan")
	}
}

func TestCycle_ExpirationDeletesAndMarksStatus(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryClient()
	s := store.NewFakeStore(map[int64]domain.MatchStatus{9: domain.MatchStatusWaiting})

	x := domain.QueueEntry{UserID: "x", PropertyID: 9, RegisteredAt: time.Now().Add(-25 * time.Hour)}
	putQueueEntry(t, c, x)

	cycle := newCycle(c, s, defaultConfig())
	result, err := cycle.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Expired != 1 {
		t.Errorf("Expired = %d, want 1", result.Expired)
	}
	if _, err := c.Get(ctx, domain.QueueKey("x")); err == nil {
		t.Error("expected x's queue entry to be deleted")
	}
	status, err := s.PropertyStatus(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.MatchStatusExpired {
		t.Errorf("status = %v, want MatchStatusExpired", status)
	}
	rows, _ := s.ListMatchHistory(ctx, 10)
	if len(rows) != 0 {
		t.Error("expiration must not insert a history row")
	}
}

func TestCycle_IdempotentReplayOnSameSnapshot(t *testing.T) {
	ctx := context.Background()
	c1 := cache.NewMemoryClient()
	c2 := cache.NewMemoryClient()
	s1 := store.NewFakeStore(map[int64]domain.MatchStatus{1: domain.MatchStatusWaiting, 2: domain.MatchStatusWaiting})
	s2 := store.NewFakeStore(map[int64]domain.MatchStatus{1: domain.MatchStatusWaiting, 2: domain.MatchStatusWaiting})

	now := time.Now()
	for _, c := range []cache.Client{c1, c2} {
		putQueueEntry(t, c, domain.QueueEntry{UserID: "a", PropertyID: 1, RegisteredAt: now})
		putQueueEntry(t, c, domain.QueueEntry{UserID: "b", PropertyID: 2, RegisteredAt: now})
		putEdge(t, c, domain.NewEdge("a", "b", 95, now))
	}

	fixedNow := func() time.Time { return now }
	cycle1 := newCycle(c1, s1, defaultConfig())
	cycle1.Now = fixedNow
	cycle2 := newCycle(c2, s2, defaultConfig())
	cycle2.Now = fixedNow

	r1, err := cycle1.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := cycle2.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Matched != r2.Matched {
		t.Errorf("expected identical commit sets on replay, got %d vs %d", r1.Matched, r2.Matched)
	}
}
