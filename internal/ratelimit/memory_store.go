package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback used when redis is not configured,
// and the store tests exercise the limiter against.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]time.Time)}
}

func (s *MemoryStore) Add(_ context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.events[key][:0]
	for _, ts := range s.events[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	s.events[key] = kept

	return int64(len(kept)), kept[0], nil
}
