package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore is a process-local CounterStore for single-instance
// deployments and tests. Call Cleanup periodically to drop expired windows.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryOption func(*MemoryCounterStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryCounterStore) { s.now = now }
}

func NewMemoryCounterStore(opts ...MemoryOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryCounterStore) Take(_ context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.expiresAt) {
		ent = &memoryEntry{expiresAt: now.Add(ttl)}
		s.entries[key] = ent
	}
	if ent.count >= limit {
		return ent.count, false, nil
	}
	ent.count++
	return ent.count, true, nil
}

func (s *MemoryCounterStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
