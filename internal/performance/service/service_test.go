package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	issuestore "civiclink/internal/issues/store"
	ministrymodels "civiclink/internal/ministry/models"
	ministrystore "civiclink/internal/ministry/store"
	ngomodels "civiclink/internal/ngo/models"
	ngostore "civiclink/internal/ngo/store"
	"civiclink/internal/performance/models"
	"civiclink/internal/performance/service/mocks"
	usermodels "civiclink/internal/users/models"
	userstore "civiclink/internal/users/store"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	issues     *issuestore.InMemoryStore
	ministries *ministrystore.InMemoryStore
	ngos       *ngostore.InMemoryStore
	users      *userstore.InMemoryStore
	cache      *mocks.MockCache
	service    *Service
	admin      *access.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.issues = issuestore.NewInMemory()
	s.ministries = ministrystore.NewInMemory()
	s.ngos = ngostore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.cache = mocks.NewMockCache(ctrl)
	s.service = New(s.issues, s.ministries, s.ngos, s.users)
	s.admin = &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleAdmin, Status: access.StatusActive}
}

func (s *ServiceSuite) cachedService() *Service {
	return New(s.issues, s.ministries, s.ngos, s.users, WithCache(s.cache, 5*time.Minute))
}

func (s *ServiceSuite) seedMinistry(name string, stats ministrymodels.Stats) *ministrymodels.Ministry {
	m, err := ministrymodels.NewMinistry(id.MinistryID(uuid.New()), ministrymodels.Name{EN: name},
		[]string{"water"}, "", "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.ministries.Create(s.ctx, m))
	s.Require().NoError(s.ministries.UpdateStats(s.ctx, m.ID, stats))
	return m
}

func (s *ServiceSuite) seedNGO(name string, verified bool, stats ngomodels.Stats) *ngomodels.NGO {
	n, err := ngomodels.NewNGO(id.NGOID(uuid.New()), name, uuid.NewString(), id.UserID(uuid.New()),
		ngomodels.Profile{ContactEmail: "ops@example.lk", AreasOfWork: []string{"water"}}, s.now)
	s.Require().NoError(err)
	if verified {
		n.ApplyApproval(s.admin.UserID, s.now)
	}
	s.Require().NoError(s.ngos.Create(s.ctx, n))
	s.Require().NoError(s.ngos.UpdateStats(s.ctx, n.ID, stats))
	return n
}

// seedIssue stores an issue reported at s.now and lets mutate shape it first.
func (s *ServiceSuite) seedIssue(category issuemodels.Category, district string, mutate func(*issuemodels.Issue)) *issuemodels.Issue {
	issue, err := issuemodels.NewIssue(id.IssueID(uuid.New()), id.UserID(uuid.New()),
		"Broken water main", "Water is gushing onto the road near the market",
		category,
		issuemodels.Location{Address: "Market Street", District: district, Coordinates: issuemodels.Coordinates{Lat: 7.29, Lng: 80.63}},
		nil, issuemodels.PriorityMedium, s.now)
	s.Require().NoError(err)
	if mutate != nil {
		mutate(issue)
	}
	s.Require().NoError(s.issues.Create(s.ctx, issue))
	return issue
}

func (s *ServiceSuite) seedUser(role access.Role, status access.Status) {
	u, err := usermodels.NewUser(id.UserID(uuid.New()), uuid.NewString()+"@example.lk", "", "hash", "Test User", s.now)
	s.Require().NoError(err)
	u.Role = role
	u.Status = status
	s.Require().NoError(s.users.Create(s.ctx, u))
}

func respond(m id.MinistryID, after time.Duration) func(*issuemodels.Issue) {
	return func(i *issuemodels.Issue) {
		i.Tag([]id.MinistryID{m})
		i.ApplyResponse(issuemodels.GovernmentResponse{MinistryID: m, Message: "Crew dispatched", RespondedAt: i.CreatedAt.Add(after)}, i.CreatedAt.Add(after))
	}
}

func (s *ServiceSuite) TestRecomputeMinistry() {
	m := s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{})

	s.Run("zero issues yields zero rates", func() {
		stats, err := s.service.RecomputeMinistry(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Zero(stats.TotalIssues)
		s.Zero(stats.ResolutionRate)
		s.Zero(stats.AvgResponseTimeHours)
	})

	s.Run("rolls up tagged issues and persists", func() {
		s.seedIssue(issuemodels.CategoryWater, "Kandy", respond(m.ID, 4*time.Hour))
		s.seedIssue(issuemodels.CategoryWater, "Kandy", func(i *issuemodels.Issue) {
			respond(m.ID, 2*time.Hour)(i)
			i.ApplyClose(s.now.Add(24 * time.Hour))
		})
		s.seedIssue(issuemodels.CategoryWater, "Kandy", func(i *issuemodels.Issue) { i.Tag([]id.MinistryID{m.ID}) })
		s.seedIssue(issuemodels.CategoryWater, "Kandy", nil)

		stats, err := s.service.RecomputeMinistry(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Equal(3, stats.TotalIssues)
		s.Equal(1, stats.Solved)
		s.Equal(1, stats.Pending)
		s.Equal(33.33, stats.ResolutionRate)
		s.Equal(3.0, stats.AvgResponseTimeHours)

		stored, err := s.ministries.FindByID(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Equal(3, stored.Stats.TotalIssues)
		s.Equal(s.now, *stored.Stats.ComputedAt)
	})

	s.Run("unknown ministry", func() {
		_, err := s.service.RecomputeMinistry(s.ctx, id.MinistryID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRecomputeNGO() {
	n := s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{})
	claim := func(close bool) func(*issuemodels.Issue) {
		return func(i *issuemodels.Issue) {
			i.ApplyClaim(n.ID, id.UserID(uuid.New()), "Repair the main", s.now)
			if close {
				i.ApplyClose(s.now.Add(time.Hour))
			}
		}
	}
	s.seedIssue(issuemodels.CategoryWater, "Galle", claim(true))
	s.seedIssue(issuemodels.CategoryWater, "Galle", claim(false))

	stats, err := s.service.RecomputeNGO(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Equal(2, stats.TotalClaimed)
	s.Equal(1, stats.Completed)
	s.Equal(50.0, stats.SuccessRate)

	_, err = s.service.RecomputeNGO(s.ctx, id.NGOID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRecomputeMany() {
	m1 := s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{})
	m2 := s.seedMinistry("Ministry of Irrigation", ministrymodels.Stats{})
	n := s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{})
	s.seedIssue(issuemodels.CategoryWater, "Kandy", func(i *issuemodels.Issue) {
		i.Tag([]id.MinistryID{m1.ID, m2.ID})
		i.ApplyClaim(n.ID, id.UserID(uuid.New()), "Repair the main", s.now)
		i.ApplyClose(s.now.Add(time.Hour))
	})

	s.Run("recomputes every subject and drops cached reports", func() {
		s.cache.EXPECT().Delete(gomock.Any(), leaderboardKey, platformStatsKey).Return(nil)

		err := s.cachedService().RecomputeMany(s.ctx, []id.MinistryID{m1.ID, m2.ID}, &n.ID)
		s.Require().NoError(err)

		for _, mid := range []id.MinistryID{m1.ID, m2.ID} {
			m, err := s.ministries.FindByID(s.ctx, mid)
			s.Require().NoError(err)
			s.Equal(1, m.Stats.Solved)
			s.Equal(100.0, m.Stats.ResolutionRate)
		}
		stored, err := s.ngos.FindByID(s.ctx, n.ID)
		s.Require().NoError(err)
		s.Equal(1, stored.Stats.Completed)
	})

	s.Run("nothing to do", func() {
		s.NoError(s.cachedService().RecomputeMany(s.ctx, nil, nil))
	})

	s.Run("failure still invalidates", func() {
		s.cache.EXPECT().Delete(gomock.Any(), leaderboardKey, platformStatsKey).Return(errors.New("redis down"))

		err := s.cachedService().RecomputeMany(s.ctx, []id.MinistryID{m1.ID, id.MinistryID(uuid.New())}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// slowNGOStore takes delay to save stats and gives up if ctx ends first.
type slowNGOStore struct {
	NGOStore
	delay time.Duration
}

func (st slowNGOStore) UpdateStats(ctx context.Context, ngoID id.NGOID, stats ngomodels.Stats) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(st.delay):
		return st.NGOStore.UpdateStats(ctx, ngoID, stats)
	}
}

func (s *ServiceSuite) TestRecomputeManyFinishesEverySubject() {
	n := s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{})
	s.seedIssue(issuemodels.CategoryWater, "Kandy", func(i *issuemodels.Issue) {
		i.ApplyClaim(n.ID, id.UserID(uuid.New()), "Repair the main", s.now)
		i.ApplyClose(s.now.Add(time.Hour))
	})
	svc := New(s.issues, s.ministries, slowNGOStore{NGOStore: s.ngos, delay: 50 * time.Millisecond}, s.users)

	deleted := id.MinistryID(uuid.New())
	err := svc.RecomputeMany(s.ctx, []id.MinistryID{deleted}, &n.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.NotErrorIs(err, context.Canceled)

	stored, err := s.ngos.FindByID(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Stats.Completed, "ngo stats saved despite the missing ministry")
}

func (s *ServiceSuite) TestMinistryReport() {
	m := s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{TotalIssues: 99})
	s.seedIssue(issuemodels.CategoryWater, "Kandy", respond(m.ID, time.Hour))

	report, err := s.service.MinistryReport(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(m.ID, report.ID)
	s.Equal(1, report.Stats.TotalIssues)
	s.Equal(1.0, report.Stats.AvgResponseTimeHours)

	_, err = s.service.MinistryReport(s.ctx, id.MinistryID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestLeaderboard() {
	low := s.seedMinistry("Ministry of Highways", ministrymodels.Stats{TotalIssues: 10, Solved: 2, ResolutionRate: 20})
	high := s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{TotalIssues: 4, Solved: 3, ResolutionRate: 75})
	idle := s.seedMinistry("Ministry of Power", ministrymodels.Stats{})
	best := s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{TotalClaimed: 2, Completed: 2, SuccessRate: 100})
	s.seedNGO("Unapproved Helpers", false, ngomodels.Stats{TotalClaimed: 5, Completed: 5, SuccessRate: 100})
	other := s.seedNGO("Road Menders", true, ngomodels.Stats{TotalClaimed: 4, Completed: 1, SuccessRate: 25})

	s.Run("ranks by rate and excludes unverified ngos", func() {
		board, err := s.service.Leaderboard(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(board.Ministries, 3)
		s.Equal(high.ID, board.Ministries[0].ID)
		s.Equal(low.ID, board.Ministries[1].ID)
		s.Equal(idle.ID, board.Ministries[2].ID)
		s.Require().Len(board.NGOs, 2)
		s.Equal(best.ID, board.NGOs[0].ID)
		s.Equal(other.ID, board.NGOs[1].ID)
	})

	s.Run("caps at ten entries", func() {
		for range 12 {
			s.seedMinistry("Ministry of Filler", ministrymodels.Stats{})
		}
		board, err := s.service.Leaderboard(s.ctx)
		s.Require().NoError(err)
		s.Len(board.Ministries, models.LeaderboardSize)
	})

	s.Run("miss populates the cache", func() {
		s.cache.EXPECT().Get(gomock.Any(), leaderboardKey, gomock.Any()).Return(false, nil)
		s.cache.EXPECT().Set(gomock.Any(), leaderboardKey, gomock.Any(), 5*time.Minute).Return(nil)

		_, err := s.cachedService().Leaderboard(s.ctx)
		s.Require().NoError(err)
	})

	s.Run("hit skips the stores", func() {
		s.cache.EXPECT().Get(gomock.Any(), leaderboardKey, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest any) (bool, error) {
				dest.(*models.Leaderboard).NGOs = []*ngomodels.NGO{{Name: "Cached NGO"}}
				return true, nil
			})

		board, err := s.cachedService().Leaderboard(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(board.NGOs, 1)
		s.Equal("Cached NGO", board.NGOs[0].Name)
	})

	s.Run("cache errors fall back to the stores", func() {
		s.cache.EXPECT().Get(gomock.Any(), leaderboardKey, gomock.Any()).Return(false, errors.New("redis down"))
		s.cache.EXPECT().Set(gomock.Any(), leaderboardKey, gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		board, err := s.cachedService().Leaderboard(s.ctx)
		s.Require().NoError(err)
		s.Equal(high.ID, board.Ministries[0].ID)
	})
}

func (s *ServiceSuite) TestPlatformStats() {
	s.Run("empty platform", func() {
		stats, err := s.service.PlatformStats(s.ctx)
		s.Require().NoError(err)
		s.Zero(stats.TotalIssues)
		s.Zero(stats.ResolutionRate)
		s.Empty(stats.ByCategory)
	})

	s.Run("totals", func() {
		s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{})
		s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{})
		s.seedNGO("Unapproved Helpers", false, ngomodels.Stats{})
		s.seedUser(access.RoleCitizen, access.StatusActive)
		s.seedUser(access.RoleCitizen, access.StatusActive)
		s.seedUser(access.RoleCitizen, access.StatusSuspended)
		s.seedIssue(issuemodels.CategoryWater, "Kandy", func(i *issuemodels.Issue) { i.ApplyClose(s.now) })
		s.seedIssue(issuemodels.CategoryWater, "Kandy", nil)
		s.seedIssue(issuemodels.CategoryRoad, "Galle", nil)

		stats, err := s.service.PlatformStats(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, stats.TotalIssues)
		s.Equal(1, stats.SolvedIssues)
		s.Equal(33.33, stats.ResolutionRate)
		s.Equal(2, stats.ActiveUsers)
		s.Equal(1, stats.VerifiedNGOs)
		s.Equal(1, stats.Ministries)
		s.Equal([]models.Bucket{{Key: "water", Count: 2}, {Key: "road", Count: 1}}, stats.ByCategory)
		s.Equal([]models.Bucket{{Key: "Kandy", Count: 2}, {Key: "Galle", Count: 1}}, stats.TopDistricts)
		s.Equal(2, stats.ByStatus["pending"])
	})
}

func (s *ServiceSuite) TestAnalytics() {
	s.seedIssue(issuemodels.CategoryWater, "Kandy", nil)
	s.seedIssue(issuemodels.CategoryFlood, "Kandy", nil)
	s.seedIssue(issuemodels.CategoryFlood, "Matara", nil)

	s.Run("defaults to category", func() {
		report, err := s.service.Analytics(s.ctx, s.admin, "")
		s.Require().NoError(err)
		s.Equal("category", report.GroupBy)
		s.Equal(3, report.Total)
		s.Equal(models.Bucket{Key: "flood", Count: 2}, report.Buckets[0])
	})

	s.Run("district", func() {
		report, err := s.service.Analytics(s.ctx, s.admin, "District")
		s.Require().NoError(err)
		s.Equal([]models.Bucket{{Key: "Kandy", Count: 2}, {Key: "Matara", Count: 1}}, report.Buckets)
	})

	s.Run("unknown dimension", func() {
		_, err := s.service.Analytics(s.ctx, s.admin, "priority")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("admins only", func() {
		citizen := &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleCitizen, Status: access.StatusActive}
		_, err := s.service.Analytics(s.ctx, citizen, "status")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.Analytics(s.ctx, nil, "status")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestDashboard() {
	s.seedUser(access.RoleCitizen, access.StatusActive)
	s.seedUser(access.RoleCitizen, access.StatusSuspended)
	s.seedUser(access.RoleGovernment, access.StatusActive)
	s.seedUser(access.RoleNGO, access.StatusActive)
	s.seedMinistry("Ministry of Water Supply", ministrymodels.Stats{})
	s.seedMinistry("Ministry of Highways", ministrymodels.Stats{})
	s.seedNGO("Clean Water Lanka", true, ngomodels.Stats{})
	s.seedNGO("Unapproved Helpers", false, ngomodels.Stats{})
	s.seedNGO("Second Applicant", false, ngomodels.Stats{})
	s.seedIssue(issuemodels.CategoryFlood, "Kandy", func(i *issuemodels.Issue) { i.IsCrisis = true })
	s.seedIssue(issuemodels.CategoryFlood, "Kandy", func(i *issuemodels.Issue) {
		i.IsCrisis = true
		i.ApplyClose(s.now)
	})
	s.seedIssue(issuemodels.CategoryRoad, "Galle", nil)

	d, err := s.service.Dashboard(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(models.UserCounts{Total: 4, Citizens: 2, Government: 1, NGOs: 1, Suspended: 1}, d.Users)
	s.Equal(3, d.Issues.Total)
	s.Equal(1, d.Issues.Crisis)
	s.Equal(2, d.Issues.ByStatus["pending"])
	s.Equal(models.NGOCounts{Total: 3, Pending: 2, Verified: 1}, d.NGOs)
	s.Equal(2, d.Ministries)

	_, err = s.service.Dashboard(s.ctx, &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleGovernment, Status: access.StatusActive})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
