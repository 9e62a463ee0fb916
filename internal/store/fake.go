package store

import (
	"context"
	"sort"
	"sync"

	"github.com/roomie-match/matchcore/internal/domain"
)

// FakeStore is an in-memory Store for unit tests, grounded on the
// teacher's map-backed GraphStore fake.
type FakeStore struct {
	mu         sync.Mutex
	nextID     int64
	matches    map[int64]domain.MatchHistoryRow
	properties map[int64]domain.MatchStatus
}

// NewFakeStore returns an empty fake, with the given initial property
// statuses seeded (property ID -> status).
func NewFakeStore(initialProperties map[int64]domain.MatchStatus) *FakeStore {
	props := make(map[int64]domain.MatchStatus, len(initialProperties))
	for k, v := range initialProperties {
		props[k] = v
	}
	return &FakeStore{
		matches:    make(map[int64]domain.MatchHistoryRow),
		properties: props,
	}
}

func (f *FakeStore) CommitMatches(ctx context.Context, matches []domain.MatchHistoryRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range matches {
		f.nextID++
		m.MatchID = f.nextID
		f.matches[m.MatchID] = m
		f.properties[m.PropA] = domain.MatchStatusMatched
		f.properties[m.PropB] = domain.MatchStatusMatched
	}
	return nil
}

func (f *FakeStore) ExpireProperties(ctx context.Context, propertyIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range propertyIDs {
		f.properties[id] = domain.MatchStatusExpired
	}
	return nil
}

func (f *FakeStore) ListMatchHistory(ctx context.Context, limit int) ([]domain.MatchHistoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.MatchHistoryRow, 0, len(f.matches))
	for _, m := range f.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchedAt.After(out[j].MatchedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeStore) PropertyStatus(ctx context.Context, propertyID int64) (domain.MatchStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.properties[propertyID]
	if !ok {
		return 0, ErrNotFound
	}
	return status, nil
}

func (f *FakeStore) Close() error { return nil }

var _ Store = (*FakeStore)(nil)
