package bucket

import (
	"context"
	"sync"
	"time"

	"civiclink/internal/ratelimit/models"
)

// InMemoryStore keeps a sliding window of request times per key. It is not
// shared between processes; RedisStore is.
//
// TODO: evict idle keys; the map grows with every distinct client address.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
}

type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{buckets: make(map[string]*slidingWindow)}
}

// Allow records one request at now when it fits inside w. Refused requests
// are not recorded.
func (s *InMemoryStore) Allow(_ context.Context, key string, w models.Window, now time.Time) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.buckets[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.buckets[key] = sw
	}
	sw.prune(now.Add(-w.Period))

	if len(sw.timestamps) >= w.Limit {
		resetAt := sw.timestamps[0].Add(w.Period)
		return &models.Result{
			Allowed:    false,
			Limit:      w.Limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}
	sw.timestamps = append(sw.timestamps, now)
	return &models.Result{
		Allowed:   true,
		Limit:     w.Limit,
		Remaining: w.Limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(w.Period),
	}, nil
}

// prune drops timestamps at or before cutoff.
func (sw *slidingWindow) prune(cutoff time.Time) {
	i := 0
	for i < len(sw.timestamps) && !sw.timestamps[i].After(cutoff) {
		i++
	}
	sw.timestamps = sw.timestamps[i:]
}
