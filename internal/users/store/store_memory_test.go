package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/access"
	"civiclink/internal/users/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newUser(t *testing.T, email, phone string, createdAt time.Time) *models.User {
	t.Helper()
	u, err := models.NewUser(id.UserID(uuid.New()), email, phone, "hash", "Ravi Kumar", createdAt)
	require.NoError(t, err)
	return u
}

func noCheck(*models.User) error { return nil }

func TestInMemoryStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Create(ctx, newUser(t, "ravi@example.lk", "0771234567", base)))

	assert.ErrorIs(t, s.Create(ctx, newUser(t, "ravi@example.lk", "", base)), sentinel.ErrConflict)
	assert.ErrorIs(t, s.Create(ctx, newUser(t, "other@example.lk", "0771234567", base)), sentinel.ErrConflict)
	assert.NoError(t, s.Create(ctx, newUser(t, "nophone@example.lk", "", base)))
	assert.NoError(t, s.Create(ctx, newUser(t, "nophone2@example.lk", "", base)))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInMemoryStore_FindAndList(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	older := newUser(t, "older@example.lk", "", base)
	newer := newUser(t, "newer@example.lk", "", base.Add(time.Hour))
	newer.AssignMinistry(id.MinistryID(uuid.New()))
	for _, u := range []*models.User{older, newer} {
		require.NoError(t, s.Create(ctx, u))
	}

	got, err := s.FindByEmail(ctx, "older@example.lk")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
	_, err = s.FindByEmail(ctx, "missing@example.lk")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	page, total, err := s.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, newer.ID, page[0].ID)

	page, total, err = s.List(ctx, models.ListFilter{Role: access.RoleGovernment})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, newer.ID, page[0].ID)

	page, _, err = s.List(ctx, models.ListFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}

func TestInMemoryStore_ExecuteRejectsTakenPhone(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	a := newUser(t, "a@example.lk", "0711111111", base)
	b := newUser(t, "b@example.lk", "", base)
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	_, err := s.Execute(ctx, b.ID, noCheck, func(u *models.User) { u.Phone = "0711111111" })
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	got, _ := s.FindByID(ctx, b.ID)
	assert.Empty(t, got.Phone)

	updated, err := s.Execute(ctx, b.ID, noCheck, func(u *models.User) { u.Phone = "0722222222" })
	require.NoError(t, err)
	assert.Equal(t, "0722222222", updated.Phone)

	_, err = s.Execute(ctx, id.UserID(uuid.New()), noCheck, func(*models.User) {})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
