package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"civiclink/internal/users/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

// InMemoryStore keeps email and phone unique under the same lock as writes.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return sentinel.ErrConflict
	}
	if s.taken(u) {
		return sentinel.ErrConflict
	}
	s.users[u.ID] = u.Clone()
	return nil
}

// taken reports whether another user already holds u's email or phone.
// Callers hold the lock.
func (s *InMemoryStore) taken(u *models.User) bool {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email {
			return true
		}
		if u.Phone != "" && other.Phone == u.Phone {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns the filtered page, newest first, and the unpaged total.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.User, int, error) {
	s.mu.RLock()
	matched := make([]*models.User, 0)
	for _, u := range s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		matched = append(matched, u.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	total := len(matched)
	if filter.Offset >= total {
		return []*models.User{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Execute applies mutate under the write lock when validate passes. A mutation
// that collides with another user's email or phone is rejected with
// sentinel.ErrConflict and not saved.
func (s *InMemoryStore) Execute(
	_ context.Context,
	userID id.UserID,
	validate func(*models.User) error,
	mutate func(*models.User),
) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	if s.taken(working) {
		return nil, sentinel.ErrConflict
	}
	s.users[userID] = working
	return working.Clone(), nil
}
