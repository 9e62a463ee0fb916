package cache

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MemoryClient is an in-process fake Client, grounded on the teacher's
// map-backed GraphStore fake. Used by edgecalc/scheduler unit tests so
// they don't need a live Redis server.
type MemoryClient struct {
	mu      sync.Mutex
	data    map[string][]byte
	expiry  map[string]time.Time
	nowFunc func() time.Time
}

// NewMemoryClient returns an empty fake cache.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		data:    make(map[string][]byte),
		expiry:  make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the clock used for TTL expiry checks, for
// deterministic tests.
func (m *MemoryClient) SetNowFunc(f func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowFunc = f
}

// expiredLocked deletes key if its TTL has passed. Caller holds m.mu.
func (m *MemoryClient) expiredLocked(key string) bool {
	exp, ok := m.expiry[key]
	if !ok {
		return false
	}
	if m.nowFunc().Before(exp) {
		return false
	}
	delete(m.data, key)
	delete(m.expiry, key)
	return true
}

func (m *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiredLocked(key)
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryClient) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	delete(m.expiry, key)
	return nil
}

func (m *MemoryClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.expiry, k)
	}
	return nil
}

func (m *MemoryClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.data {
		if m.expiredLocked(k) {
			continue
		}
		ok, err := filepath.Match(pattern, k)
		if err == nil && ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryClient) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		m.expiredLocked(k)
		if v, ok := m.data[k]; ok {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[i] = cp
		}
	}
	return out, nil
}

func (m *MemoryClient) SetIfAbsentWithTTL(ctx context.Context, key string, value []byte, ttlSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiredLocked(key)
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	m.expiry[key] = m.nowFunc().Add(time.Duration(ttlSeconds) * time.Second)
	return true, nil
}

func (m *MemoryClient) DelIfEqual(ctx context.Context, key string, expected []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiredLocked(key)
	v, ok := m.data[key]
	if !ok || string(v) != string(expected) {
		return false, nil
	}
	delete(m.data, key)
	delete(m.expiry, key)
	return true, nil
}

var _ Client = (*MemoryClient)(nil)
