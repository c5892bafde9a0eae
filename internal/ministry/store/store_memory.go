package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"civiclink/internal/ministry/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	ministries map[id.MinistryID]*models.Ministry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{ministries: make(map[id.MinistryID]*models.Ministry)}
}

func (s *InMemoryStore) Create(_ context.Context, m *models.Ministry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ministries[m.ID]; ok {
		return sentinel.ErrConflict
	}
	s.ministries[m.ID] = m.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, ministryID id.MinistryID) (*models.Ministry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.ministries[ministryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

// List returns every ministry ordered by English name.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Ministry, error) {
	s.mu.RLock()
	out := make([]*models.Ministry, 0, len(s.ministries))
	for _, m := range s.ministries {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()
	slices.SortFunc(out, byName)
	return out, nil
}

// FindByCategories returns ministries handling at least one of categories.
func (s *InMemoryStore) FindByCategories(_ context.Context, categories []string) ([]*models.Ministry, error) {
	s.mu.RLock()
	out := make([]*models.Ministry, 0)
	for _, m := range s.ministries {
		if slices.ContainsFunc(categories, m.HandlesCategory) {
			out = append(out, m.Clone())
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, byName)
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, m *models.Ministry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ministries[m.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.ministries[m.ID] = m.Clone()
	return nil
}

func (s *InMemoryStore) UpdateStats(_ context.Context, ministryID id.MinistryID, stats models.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ministries[ministryID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.Stats = stats
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, ministryID id.MinistryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ministries[ministryID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.ministries, ministryID)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ministries), nil
}

func byName(a, b *models.Ministry) int {
	return cmp.Or(
		strings.Compare(a.Name.EN, b.Name.EN),
		strings.Compare(a.ID.String(), b.ID.String()),
	)
}
