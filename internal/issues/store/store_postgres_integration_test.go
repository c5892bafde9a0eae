//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civiclink/internal/issues/models"
	"civiclink/internal/issues/store"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
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
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "issues"))
}

func (s *PostgresStoreSuite) newIssue(district string, createdAt time.Time) *models.Issue {
	issue, err := models.NewIssue(
		id.IssueID(uuid.New()),
		id.UserID(uuid.New()),
		"Collapsed culvert",
		"The culvert under the main road collapsed after the rain",
		models.CategoryRoad,
		models.Location{Address: "Main Street", District: district, Coordinates: models.Coordinates{Lat: 7.2906, Lng: 80.6337}},
		[]string{"img-1"},
		models.PriorityMedium,
		createdAt.UTC().Truncate(time.Microsecond),
	)
	s.Require().NoError(err)
	issue.TaggedMinistries = []id.MinistryID{id.MinistryID(uuid.New())}
	return issue
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	issue := s.newIssue("Kandy", time.Now())
	s.Require().NoError(s.store.Create(ctx, issue))
	s.ErrorIs(s.store.Create(ctx, issue), sentinel.ErrConflict)

	got, err := s.store.FindByID(ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(issue.Title, got.Title)
	s.Equal(issue.TaggedMinistries, got.TaggedMinistries)
	s.Equal([]string{"img-1"}, got.Images)
	s.Empty(got.VerifiedBy)
	s.Nil(got.NGOClaim)

	page, total, err := s.store.List(ctx, models.Filter{MinistryID: &issue.TaggedMinistries[0]})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Len(page, 1)

	page, _, err = s.store.List(ctx, models.Filter{Query: "CULVERT"})
	s.Require().NoError(err)
	s.Len(page, 1)

	s.Require().NoError(s.store.Delete(ctx, issue.ID))
	_, err = s.store.FindByID(ctx, issue.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentVerificationsAreAllCounted() {
	ctx := context.Background()
	issue := s.newIssue("Kandy", time.Now())
	s.Require().NoError(s.store.Create(ctx, issue))

	const voters = 15
	var wg sync.WaitGroup
	for range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, issue.ID,
				func(*models.Issue) error { return nil },
				func(i *models.Issue) { i.ToggleVerification(id.UserID(uuid.New()), 3, time.Now()) },
			)
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.FindByID(ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(voters, got.VerificationCount)
	s.Len(got.VerifiedBy, voters)
	s.Equal(models.StatusVerified, got.Status)
}

func (s *PostgresStoreSuite) TestConcurrentClaimHasOneWinner() {
	ctx := context.Background()
	issue := s.newIssue("Galle", time.Now())
	s.Require().NoError(s.store.Create(ctx, issue))

	const contenders = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ngo := id.NGOID(uuid.New())
			_, err := s.store.Execute(ctx, issue.ID,
				func(i *models.Issue) error { return i.CanClaim() },
				func(i *models.Issue) { i.ApplyClaim(ngo, id.UserID(uuid.New()), "Rebuild the culvert", time.Now()) },
			)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(contenders-1), conflicts.Load())

	got, err := s.store.FindByID(ctx, issue.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.NGOClaim)
	s.Equal(models.StatusInProgress, got.Status)

	page, _, err := s.store.List(ctx, models.Filter{NGOID: &got.NGOClaim.NGOID})
	s.Require().NoError(err)
	s.Len(page, 1)
}

func (s *PostgresStoreSuite) TestMarkCrisisScope() {
	ctx := context.Background()
	open := s.newIssue("Kandy", time.Now())
	solved := s.newIssue("Kandy", time.Now())
	solved.ApplyClose(time.Now())
	elsewhere := s.newIssue("Matara", time.Now())
	for _, i := range []*models.Issue{open, solved, elsewhere} {
		s.Require().NoError(s.store.Create(ctx, i))
	}

	affected, err := s.store.MarkCrisis(ctx, []string{"Kandy"}, time.Now())
	s.Require().NoError(err)
	s.Equal(1, affected)

	got, err := s.store.FindByID(ctx, open.ID)
	s.Require().NoError(err)
	s.True(got.IsCrisis)
	s.Equal(models.PriorityCritical, got.Priority)

	got, err = s.store.FindByID(ctx, solved.ID)
	s.Require().NoError(err)
	s.False(got.IsCrisis)

	counts, err := s.store.CountBy(ctx, models.GroupByDistrict, models.Filter{})
	s.Require().NoError(err)
	s.Equal(map[string]int{"Kandy": 2, "Matara": 1}, counts)
}
