package lockout

import (
	"context"
	"sync"
	"time"

	"civiclink/internal/ratelimit/models"
)

type record struct {
	failures    int
	lastFailure time.Time
	lockedUntil *time.Time
}

// InMemoryStore holds failed-login state per key for a single process.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*record)}
}

// RecordFailure counts a failure at now. A failure more than window after the
// previous one starts the count again.
func (s *InMemoryStore) RecordFailure(_ context.Context, key string, window time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[key]
	if r == nil {
		r = &record{}
		s.records[key] = r
	}
	if now.Sub(r.lastFailure) > window {
		r.failures = 0
	}
	r.failures++
	r.lastFailure = now
	return r.failures, nil
}

// Lock blocks key until the given time and resets its failure count.
func (s *InMemoryStore) Lock(_ context.Context, key string, until, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[key]
	if r == nil {
		r = &record{}
		s.records[key] = r
	}
	r.failures = 0
	r.lockedUntil = &until
	return nil
}

// Get returns the state of key at now. Unknown keys have a zero Lockout.
func (s *InMemoryStore) Get(_ context.Context, key string, window time.Duration, now time.Time) (*models.Lockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[key]
	if r == nil {
		return &models.Lockout{}, nil
	}
	out := &models.Lockout{}
	if now.Sub(r.lastFailure) <= window {
		out.FailureCount = r.failures
	}
	if r.lockedUntil != nil && now.Before(*r.lockedUntil) {
		until := *r.lockedUntil
		out.LockedUntil = &until
	}
	return out, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
