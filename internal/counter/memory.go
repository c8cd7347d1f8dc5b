package counter

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count    int64
	expireAt time.Time
}

// MemoryStore is the zero-infrastructure counter backend: a mutex-guarded map
// with lazy eviction on read and a DeleteExpired hook for the periodic sweep.
// Suitable for single-instance deployments only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	if s.expired(entry) {
		delete(s.entries, key)
		return 0, nil
	}
	return entry.count, nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		entry = memoryEntry{expireAt: expireAt}
	}
	entry.count++
	s.entries[key] = entry
	return entry.count, nil
}

func (s *MemoryStore) TryConsume(ctx context.Context, key string, limit int64, expireAt time.Time) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		entry = memoryEntry{expireAt: expireAt}
	}
	if entry.count >= limit {
		return false, entry.count, nil
	}
	entry.count++
	s.entries[key] = entry
	return true, entry.count, nil
}

// DeleteExpired evicts every bucket whose window has closed and reports how
// many were removed.
func (s *MemoryStore) DeleteExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if !entry.expireAt.IsZero() && !now.Before(entry.expireAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expireAt.IsZero() && !s.now().Before(entry.expireAt)
}
