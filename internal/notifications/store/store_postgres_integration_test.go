//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civiclink/internal/notifications/models"
	"civiclink/internal/notifications/store"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "notifications"))
}

func (s *PostgresStoreSuite) create(owner id.UserID, at time.Time) *models.Notification {
	n, err := models.NewNotification(id.NotificationID(uuid.New()),
		models.IssueVerified(owner, id.IssueID(uuid.New()), "Fallen tree"), at.UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), n))
	return n
}

func (s *PostgresStoreSuite) TestInboxLifecycle() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())
	other := id.UserID(uuid.New())
	now := time.Now()
	older := s.create(owner, now.Add(-time.Hour))
	newer := s.create(owner, now)
	s.create(other, now)

	page, total, err := s.store.List(ctx, models.ListFilter{UserID: owner, Limit: 1})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal(newer.ID, page[0].ID)
	s.Equal(*newer.IssueID, *page[0].IssueID)

	_, err = s.store.MarkRead(ctx, other, older.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	read, err := s.store.MarkRead(ctx, owner, older.ID)
	s.Require().NoError(err)
	s.True(read.Read)

	unread, err := s.store.CountUnread(ctx, owner)
	s.Require().NoError(err)
	s.Equal(1, unread)

	deleted, err := s.store.DeleteRead(ctx, owner)
	s.Require().NoError(err)
	s.Equal(1, deleted)

	updated, err := s.store.MarkAllRead(ctx, owner)
	s.Require().NoError(err)
	s.Equal(1, updated)

	s.ErrorIs(s.store.Delete(ctx, other, newer.ID), sentinel.ErrNotFound)
	s.NoError(s.store.Delete(ctx, owner, newer.ID))
}
