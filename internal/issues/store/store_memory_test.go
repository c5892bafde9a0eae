package store

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
)

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newIssue(t *testing.T, district string, category models.Category, createdAt time.Time) *models.Issue {
	t.Helper()
	issue, err := models.NewIssue(
		id.IssueID(uuid.New()),
		id.UserID(uuid.New()),
		"Flooded underpass",
		"The underpass near the station is under a metre of water",
		category,
		models.Location{Address: "Station Road", District: district, Coordinates: models.Coordinates{Lat: 7.2906, Lng: 80.6337}},
		nil,
		models.PriorityMedium,
		createdAt,
	)
	require.NoError(t, err)
	return issue
}

func noCheck(*models.Issue) error { return nil }

func TestInMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	issue := newIssue(t, "Kandy", models.CategoryFlood, base)

	require.NoError(t, s.Create(ctx, issue))
	assert.ErrorIs(t, s.Create(ctx, issue), sentinel.ErrConflict)

	got, err := s.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, got.Title)

	got.Title = "mutated outside the store"
	again, err := s.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, again.Title)

	require.NoError(t, s.Delete(ctx, issue.ID))
	_, err = s.FindByID(ctx, issue.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, issue.ID), sentinel.ErrNotFound)
}

func TestInMemoryStore_ListAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	older := newIssue(t, "Kandy", models.CategoryFlood, base)
	newer := newIssue(t, "Galle", models.CategoryRoad, base.Add(time.Hour))
	newest := newIssue(t, "Kandy", models.CategoryFlood, base.Add(2*time.Hour))
	newest.VerifiedBy = []id.UserID{id.UserID(uuid.New())}
	newest.VerificationCount = 1
	older.VerifiedBy = []id.UserID{id.UserID(uuid.New()), id.UserID(uuid.New())}
	older.VerificationCount = 2
	for _, i := range []*models.Issue{older, newer, newest} {
		require.NoError(t, s.Create(ctx, i))
	}

	t.Run("newest first with paging", func(t *testing.T) {
		page, total, err := s.List(ctx, models.Filter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.Equal(t, newest.ID, page[0].ID)
		assert.Equal(t, newer.ID, page[1].ID)

		page, _, err = s.List(ctx, models.Filter{Offset: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, older.ID, page[0].ID)
	})

	t.Run("most verified", func(t *testing.T) {
		page, _, err := s.List(ctx, models.Filter{Sort: models.SortMostVerified})
		require.NoError(t, err)
		assert.Equal(t, older.ID, page[0].ID)
	})

	t.Run("district filter", func(t *testing.T) {
		page, total, err := s.List(ctx, models.Filter{District: "kandy"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, page, 2)
	})

	t.Run("offset past the end", func(t *testing.T) {
		page, total, err := s.List(ctx, models.Filter{Offset: 10, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, page)
	})

	t.Run("count by category", func(t *testing.T) {
		counts, err := s.CountBy(ctx, models.GroupByCategory, models.Filter{})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"flood": 2, "road": 1}, counts)
	})
}

func TestInMemoryStore_PagesStableForEqualTimestamps(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	var ids []string
	for range 6 {
		i := newIssue(t, "Matara", models.CategoryRoad, base)
		require.NoError(t, s.Create(ctx, i))
		ids = append(ids, i.ID.String())
	}
	slices.Sort(ids)

	for _, sort := range []models.Sort{models.SortNewest, models.SortMostVerified} {
		var seen []string
		for offset := 0; offset < len(ids); offset += 2 {
			page, _, err := s.List(ctx, models.Filter{Sort: sort, Offset: offset, Limit: 2})
			require.NoError(t, err)
			for _, i := range page {
				seen = append(seen, i.ID.String())
			}
		}
		assert.Equal(t, ids, seen, "sort %q", sort)
	}
}

func TestInMemoryStore_Execute(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	issue := newIssue(t, "Kandy", models.CategoryFlood, base)
	require.NoError(t, s.Create(ctx, issue))

	t.Run("validate failure leaves issue untouched", func(t *testing.T) {
		_, err := s.Execute(ctx, issue.ID,
			func(*models.Issue) error { return dErrors.New(dErrors.CodeConflict, "nope") },
			func(i *models.Issue) { i.Title = "changed" },
		)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		got, err := s.FindByID(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, issue.Title, got.Title)
	})

	t.Run("missing issue", func(t *testing.T) {
		_, err := s.Execute(ctx, id.IssueID(uuid.New()), noCheck, func(*models.Issue) {})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("concurrent verifications are all counted", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Execute(ctx, issue.ID, noCheck, func(i *models.Issue) {
					i.ToggleVerification(id.UserID(uuid.New()), 3, base)
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.FindByID(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.VerificationCount)
		assert.Len(t, got.VerifiedBy, 20)
		assert.Equal(t, models.StatusVerified, got.Status)
	})
}

func TestInMemoryStore_ConcurrentClaimHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	issue := newIssue(t, "Kandy", models.CategoryFlood, base)
	require.NoError(t, s.Create(ctx, issue))

	const contenders = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []id.NGOID
		losses  int
	)
	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ngo := id.NGOID(uuid.New())
			_, err := s.Execute(ctx, issue.ID,
				func(i *models.Issue) error { return i.CanClaim() },
				func(i *models.Issue) { i.ApplyClaim(ngo, id.UserID(uuid.New()), "Pump out the water", base) },
			)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, ngo)
				return
			}
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				losses++
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, contenders-1, losses)
	got, err := s.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], got.NGOClaim.NGOID)
}

func TestInMemoryStore_MarkCrisis(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	open := newIssue(t, "Kandy", models.CategoryFlood, base)
	solved := newIssue(t, "Kandy", models.CategoryFlood, base)
	solved.ApplyClose(base)
	elsewhere := newIssue(t, "Galle", models.CategoryFlood, base)
	for _, i := range []*models.Issue{open, solved, elsewhere} {
		require.NoError(t, s.Create(ctx, i))
	}

	affected, err := s.MarkCrisis(ctx, []string{"Kandy"}, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	got, _ := s.FindByID(ctx, open.ID)
	assert.True(t, got.IsCrisis)
	assert.Equal(t, models.PriorityCritical, got.Priority)

	got, _ = s.FindByID(ctx, solved.ID)
	assert.False(t, got.IsCrisis)

	got, _ = s.FindByID(ctx, elsewhere.ID)
	assert.False(t, got.IsCrisis)
}
