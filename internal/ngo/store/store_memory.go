package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"civiclink/internal/ngo/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

// InMemoryStore enforces registration-number uniqueness under the same lock
// as inserts.
type InMemoryStore struct {
	mu   sync.RWMutex
	ngos map[id.NGOID]*models.NGO
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{ngos: make(map[id.NGOID]*models.NGO)}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.NGO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ngos[n.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.ngos {
		if strings.EqualFold(existing.RegistrationNumber, n.RegistrationNumber) {
			return sentinel.ErrConflict
		}
	}
	s.ngos[n.ID] = n.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, ngoID id.NGOID) (*models.NGO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.ngos[ngoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return n.Clone(), nil
}

// List returns the filtered page, newest first, and the unpaged total.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.NGO, int, error) {
	s.mu.RLock()
	matched := make([]*models.NGO, 0)
	for _, n := range s.ngos {
		if filter.Verified == nil || n.Verified == *filter.Verified {
			matched = append(matched, n.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.NGO) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	total := len(matched)
	if filter.Offset >= total {
		return []*models.NGO{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// Execute applies mutate to the NGO under the write lock when validate passes.
func (s *InMemoryStore) Execute(
	_ context.Context,
	ngoID id.NGOID,
	validate func(*models.NGO) error,
	mutate func(*models.NGO),
) (*models.NGO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.ngos[ngoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.ngos[ngoID] = working
	return working.Clone(), nil
}

func (s *InMemoryStore) UpdateStats(_ context.Context, ngoID id.NGOID, stats models.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.ngos[ngoID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Stats = stats
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, ngoID id.NGOID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ngos[ngoID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.ngos, ngoID)
	return nil
}
