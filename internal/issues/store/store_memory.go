package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

// InMemoryStore keeps issues in a map guarded by one RWMutex. Execute holds
// the write lock across validate and mutate, so concurrent verifications and
// claims on the same issue serialize.
type InMemoryStore struct {
	mu     sync.RWMutex
	issues map[id.IssueID]*models.Issue
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{issues: make(map[id.IssueID]*models.Issue)}
}

func (s *InMemoryStore) Create(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[issue.ID]; ok {
		return sentinel.ErrConflict
	}
	s.issues[issue.ID] = issue.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, issueID id.IssueID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return issue.Clone(), nil
}

// List returns the filtered page and the unpaged total. Limit 0 returns all matches.
func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]*models.Issue, int, error) {
	s.mu.RLock()
	matched := make([]*models.Issue, 0)
	for _, issue := range s.issues {
		if filter.Matches(issue) {
			matched = append(matched, issue.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, filter.Compare)
	total := len(matched)
	if filter.Offset >= total {
		return []*models.Issue{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *InMemoryStore) CountBy(_ context.Context, group models.GroupBy, filter models.Filter) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, issue := range s.issues {
		if filter.Matches(issue) {
			counts[group.Key(issue)]++
		}
	}
	return counts, nil
}

func (s *InMemoryStore) Delete(_ context.Context, issueID id.IssueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[issueID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.issues, issueID)
	return nil
}

// Execute loads the issue, runs validate, and on success applies mutate and
// saves the result, all under the write lock. A validate error leaves the
// stored issue untouched and is returned as-is.
func (s *InMemoryStore) Execute(
	_ context.Context,
	issueID id.IssueID,
	validate func(*models.Issue) error,
	mutate func(*models.Issue),
) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.issues[issueID] = working
	return working.Clone(), nil
}

// MarkCrisis flags every open issue in districts as a critical crisis and
// returns how many were changed.
func (s *InMemoryStore) MarkCrisis(_ context.Context, districts []string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filter := models.Filter{Statuses: models.OpenStatuses()}
	affected := 0
	for _, issue := range s.issues {
		if !filter.Matches(issue) || !slices.Contains(districts, issue.Location.District) {
			continue
		}
		issue.IsCrisis = true
		issue.Priority = models.PriorityCritical
		issue.UpdatedAt = now
		affected++
	}
	return affected, nil
}
