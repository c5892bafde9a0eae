package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]*models.Notification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[id.NotificationID]*models.Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return sentinel.ErrConflict
	}
	s.notifications[n.ID] = n.Clone()
	return nil
}

// List returns the filtered page, newest first, and the unpaged total.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Notification, int, error) {
	s.mu.RLock()
	matched := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Notification) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})
	total := len(matched)
	if filter.Offset >= total {
		return []*models.Notification{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one notification owned by userID. Another user's
// notification is reported as not found.
func (s *InMemoryStore) MarkRead(_ context.Context, userID id.UserID, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	n.Read = true
	return n.Clone(), nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(s.notifications, notificationID)
	return nil
}

func (s *InMemoryStore) DeleteRead(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for notificationID, n := range s.notifications {
		if n.UserID == userID && n.Read {
			delete(s.notifications, notificationID)
			deleted++
		}
	}
	return deleted, nil
}
