package redis

import (
	"context"
	"sync"
	"time"
)

// memoryWindowStore is a single-process WindowStore used in tests and as a
// degraded fallback when no redis address is configured. Bounded: once
// maxEntries live keys exist, expired entries are swept and, failing that,
// new keys are rejected silently (counters are best-effort by contract).
const maxMemoryEntries = 100_000

type memoryEntry struct {
	count     int64
	payload   []byte
	expiresAt time.Time
}

type memoryWindowStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryWindowStore() WindowStore {
	return &memoryWindowStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryWindowStoreAt pins the store's clock; test hook.
func NewMemoryWindowStoreAt(now func() time.Time) WindowStore {
	return &memoryWindowStore{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

func (s *memoryWindowStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.expiresAt) {
		if !s.roomForLocked(now) {
			return 0, nil
		}
		e = &memoryEntry{expiresAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (s *memoryWindowStore) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

func (s *memoryWindowStore) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) || e.payload == nil {
		return nil, false, nil
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, true, nil
}

func (s *memoryWindowStore) SetBytes(_ context.Context, key string, val []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if _, ok := s.entries[key]; !ok && !s.roomForLocked(now) {
		return nil
	}
	stored := make([]byte, len(val))
	copy(stored, val)
	s.entries[key] = &memoryEntry{payload: stored, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memoryWindowStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
	return nil
}

// roomForLocked sweeps expired entries when the store is full. Returns
// false when the store is still full afterwards.
func (s *memoryWindowStore) roomForLocked(now time.Time) bool {
	if len(s.entries) < maxMemoryEntries {
		return true
	}
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	return len(s.entries) < maxMemoryEntries
}
