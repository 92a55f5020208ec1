package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type hit struct {
	id string
	at time.Time
}

type bucket struct {
	window time.Duration
	hits   []hit
}

// MemoryStore keeps hit logs in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) Record(_ context.Context, key string, now time.Time, window time.Duration) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{window: window}
		s.buckets[key] = b
	}
	b.window = window
	b.prune(now)

	id := uuid.NewString()
	b.hits = append(b.hits, hit{id: id, at: now})

	return Entry{
		ID:      id,
		Count:   len(b.hits),
		ResetAt: b.hits[0].at.Add(window),
	}, nil
}

func (s *MemoryStore) Forget(_ context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		return nil
	}
	for i, h := range b.hits {
		if h.id == id {
			b.hits = append(b.hits[:i], b.hits[i+1:]...)
			break
		}
	}
	if len(b.hits) == 0 {
		delete(s.buckets, key)
	}
	return nil
}

// Sweep drops expired hits and empty keys.
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.buckets {
		b.prune(now)
		if len(b.hits) == 0 {
			delete(s.buckets, key)
		}
	}
}

// Run sweeps on every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (b *bucket) prune(now time.Time) {
	cutoff := now.Add(-b.window)
	idx := 0
	for idx < len(b.hits) && !b.hits[idx].at.After(cutoff) {
		idx++
	}
	if idx > 0 {
		b.hits = append(b.hits[:0], b.hits[idx:]...)
	}
}
