package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	ministrymodels "civiclink/internal/ministry/models"
	ngomodels "civiclink/internal/ngo/models"
	"civiclink/internal/performance/metrics"
	"civiclink/internal/performance/models"
	usermodels "civiclink/internal/users/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=IssueReader,MinistryStore,NGOStore,UserDirectory

type IssueReader interface {
	List(ctx context.Context, filter issuemodels.Filter) ([]*issuemodels.Issue, int, error)
	CountBy(ctx context.Context, group issuemodels.GroupBy, filter issuemodels.Filter) (map[string]int, error)
}

type MinistryStore interface {
	FindByID(ctx context.Context, ministryID id.MinistryID) (*ministrymodels.Ministry, error)
	List(ctx context.Context) ([]*ministrymodels.Ministry, error)
	UpdateStats(ctx context.Context, ministryID id.MinistryID, stats ministrymodels.Stats) error
	Count(ctx context.Context) (int, error)
}

type NGOStore interface {
	List(ctx context.Context, filter ngomodels.ListFilter) ([]*ngomodels.NGO, int, error)
	UpdateStats(ctx context.Context, ngoID id.NGOID, stats ngomodels.Stats) error
}

type UserDirectory interface {
	List(ctx context.Context, filter usermodels.ListFilter) ([]*usermodels.User, int, error)
}

// Cache holds report snapshots. Implementations treat a miss as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	leaderboardKey   = "leaderboard"
	platformStatsKey = "platform"
	topDistricts     = 10
)

// Service recomputes ministry and NGO statistics from issue data and serves
// the aggregate reports built on them. Stored statistics are derived and may
// lag the issues they summarise.
type Service struct {
	issues     IssueReader
	ministries MinistryStore
	ngos       NGOStore
	users      UserDirectory
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables report caching. A zero ttl disables it.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(issues IssueReader, ministries MinistryStore, ngos NGOStore, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		issues:     issues,
		ministries: ministries,
		ngos:       ngos,
		users:      users,
		logger:     slog.Default(),
		tracer:     otel.Tracer("civiclink/performance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecomputeMinistry rebuilds the ministry's statistics from its tagged issues
// and persists them.
func (s *Service) RecomputeMinistry(ctx context.Context, ministryID id.MinistryID) (stats *ministrymodels.Stats, err error) {
	ctx, span := s.tracer.Start(ctx, "performance.RecomputeMinistry",
		trace.WithAttributes(attribute.String("ministry.id", ministryID.String())))
	start := time.Now()
	defer func() {
		s.observe("ministry", start, err)
		endSpan(span, err)
	}()

	issues, _, err := s.issues.List(ctx, issuemodels.Filter{MinistryID: &ministryID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ministry issues")
	}
	rollup := ministryRollup(issues, requestcontext.Now(ctx))
	if err := s.ministries.UpdateStats(ctx, ministryID, rollup); err != nil {
		return nil, mapStoreError(err, "ministry not found", "failed to save ministry stats")
	}
	return &rollup, nil
}

// RecomputeNGO rebuilds the NGO's statistics from the issues it claimed and
// persists them.
func (s *Service) RecomputeNGO(ctx context.Context, ngoID id.NGOID) (stats *ngomodels.Stats, err error) {
	ctx, span := s.tracer.Start(ctx, "performance.RecomputeNGO",
		trace.WithAttributes(attribute.String("ngo.id", ngoID.String())))
	start := time.Now()
	defer func() {
		s.observe("ngo", start, err)
		endSpan(span, err)
	}()

	issues, _, err := s.issues.List(ctx, issuemodels.Filter{NGOID: &ngoID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ngo issues")
	}
	rollup := ngoRollup(issues, requestcontext.Now(ctx))
	if err := s.ngos.UpdateStats(ctx, ngoID, rollup); err != nil {
		return nil, mapStoreError(err, "ngo not found", "failed to save ngo stats")
	}
	return &rollup, nil
}

// RecomputeMany recomputes every listed ministry and, when set, the NGO,
// concurrently. One failed subject does not cancel the others; their errors
// are joined. Cached reports are dropped afterwards even on partial failure.
func (s *Service) RecomputeMany(ctx context.Context, ministryIDs []id.MinistryID, ngoID *id.NGOID) error {
	if len(ministryIDs) == 0 && ngoID == nil {
		return nil
	}
	errs := make([]error, len(ministryIDs)+1)
	var g errgroup.Group
	for i, ministryID := range ministryIDs {
		g.Go(func() error {
			_, errs[i] = s.RecomputeMinistry(ctx, ministryID)
			return nil
		})
	}
	if ngoID != nil {
		g.Go(func() error {
			_, errs[len(ministryIDs)] = s.RecomputeNGO(ctx, *ngoID)
			return nil
		})
	}
	_ = g.Wait()
	s.invalidate(ctx)
	return errors.Join(errs...)
}

// MinistryReport recomputes the ministry's statistics and returns the
// ministry carrying them.
func (s *Service) MinistryReport(ctx context.Context, ministryID id.MinistryID) (*ministrymodels.Ministry, error) {
	if _, err := s.RecomputeMinistry(ctx, ministryID); err != nil {
		return nil, err
	}
	m, err := s.ministries.FindByID(ctx, ministryID)
	if err != nil {
		return nil, mapStoreError(err, "ministry not found", "failed to load ministry")
	}
	return m, nil
}

// Leaderboard ranks ministries by resolution rate and verified NGOs by
// success rate, from their stored statistics.
func (s *Service) Leaderboard(ctx context.Context) (*models.Leaderboard, error) {
	var cached models.Leaderboard
	if s.fromCache(ctx, leaderboardKey, &cached) {
		return &cached, nil
	}

	ministries, err := s.ministries.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ministries")
	}
	verified := true
	ngos, _, err := s.ngos.List(ctx, ngomodels.ListFilter{Verified: &verified})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ngos")
	}

	slices.SortFunc(ministries, func(a, b *ministrymodels.Ministry) int {
		return cmp.Or(
			cmp.Compare(b.Stats.ResolutionRate, a.Stats.ResolutionRate),
			cmp.Compare(b.Stats.Solved, a.Stats.Solved),
			strings.Compare(a.Name.EN, b.Name.EN),
		)
	})
	slices.SortFunc(ngos, func(a, b *ngomodels.NGO) int {
		return cmp.Or(
			cmp.Compare(b.Stats.SuccessRate, a.Stats.SuccessRate),
			cmp.Compare(b.Stats.Completed, a.Stats.Completed),
			strings.Compare(a.Name, b.Name),
		)
	})

	board := &models.Leaderboard{
		Ministries: ministries[:min(len(ministries), models.LeaderboardSize)],
		NGOs:       ngos[:min(len(ngos), models.LeaderboardSize)],
		ComputedAt: requestcontext.Now(ctx),
	}
	s.toCache(ctx, leaderboardKey, board)
	return board, nil
}

// PlatformStats summarises issues, active users, verified NGOs and ministries.
func (s *Service) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var cached models.PlatformStats
	if s.fromCache(ctx, platformStatsKey, &cached) {
		return &cached, nil
	}

	var (
		byStatus, byCategory, byDistrict map[string]int
		stats                            = &models.PlatformStats{ComputedAt: requestcontext.Now(ctx)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = s.issues.CountBy(gctx, issuemodels.GroupByStatus, issuemodels.Filter{})
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.issues.CountBy(gctx, issuemodels.GroupByCategory, issuemodels.Filter{})
		return err
	})
	g.Go(func() (err error) {
		byDistrict, err = s.issues.CountBy(gctx, issuemodels.GroupByDistrict, issuemodels.Filter{})
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = s.countUsers(gctx, usermodels.ListFilter{Status: access.StatusActive})
		return err
	})
	g.Go(func() (err error) {
		verified := true
		stats.VerifiedNGOs, err = s.countNGOs(gctx, &verified)
		return err
	})
	g.Go(func() (err error) {
		stats.Ministries, err = s.ministries.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute platform stats")
	}

	stats.ByStatus = byStatus
	stats.TotalIssues = models.Sum(byStatus)
	stats.SolvedIssues = byStatus[string(issuemodels.StatusSolved)]
	stats.ResolutionRate = models.Percent(stats.SolvedIssues, stats.TotalIssues)
	stats.ByCategory = models.Buckets(byCategory, 0)
	stats.TopDistricts = models.Buckets(byDistrict, topDistricts)
	s.toCache(ctx, platformStatsKey, stats)
	return stats, nil
}

// Analytics counts issues per category, district or status. Admin only.
func (s *Service) Analytics(ctx context.Context, caller *access.Identity, groupBy string) (*models.Analytics, error) {
	if err := access.Authorize(caller, access.OpViewAnalytics); err != nil {
		return nil, err
	}
	group := issuemodels.GroupBy(strings.ToLower(strings.TrimSpace(groupBy)))
	if group == "" {
		group = issuemodels.GroupByCategory
	}
	if !group.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "group_by must be one of category, district or status")
	}
	counts, err := s.issues.CountBy(ctx, group, issuemodels.Filter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute analytics")
	}
	return &models.Analytics{
		GroupBy: string(group),
		Buckets: models.Buckets(counts, 0),
		Total:   models.Sum(counts),
	}, nil
}

// Dashboard gathers the administrator's overview counts concurrently.
func (s *Service) Dashboard(ctx context.Context, caller *access.Identity) (*models.Dashboard, error) {
	if err := access.Authorize(caller, access.OpViewAnalytics); err != nil {
		return nil, err
	}

	d := &models.Dashboard{}
	crisis := true
	g, gctx := errgroup.WithContext(ctx)
	userCounts := []struct {
		dest   *int
		filter usermodels.ListFilter
	}{
		{&d.Users.Total, usermodels.ListFilter{}},
		{&d.Users.Citizens, usermodels.ListFilter{Role: access.RoleCitizen}},
		{&d.Users.Government, usermodels.ListFilter{Role: access.RoleGovernment}},
		{&d.Users.NGOs, usermodels.ListFilter{Role: access.RoleNGO}},
		{&d.Users.Suspended, usermodels.ListFilter{Status: access.StatusSuspended}},
	}
	for _, uc := range userCounts {
		g.Go(func() (err error) {
			*uc.dest, err = s.countUsers(gctx, uc.filter)
			return err
		})
	}
	g.Go(func() (err error) {
		d.Issues.ByStatus, err = s.issues.CountBy(gctx, issuemodels.GroupByStatus, issuemodels.Filter{})
		return err
	})
	g.Go(func() (err error) {
		_, d.Issues.Crisis, err = s.issues.List(gctx, issuemodels.Filter{
			IsCrisis: &crisis,
			Statuses: issuemodels.OpenStatuses(),
			Limit:    1,
		})
		return err
	})
	g.Go(func() (err error) {
		d.NGOs.Total, err = s.countNGOs(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		verified := false
		d.NGOs.Pending, err = s.countNGOs(gctx, &verified)
		return err
	})
	g.Go(func() (err error) {
		d.Ministries, err = s.ministries.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}
	d.Issues.Total = models.Sum(d.Issues.ByStatus)
	d.NGOs.Verified = d.NGOs.Total - d.NGOs.Pending
	return d, nil
}

func (s *Service) countUsers(ctx context.Context, filter usermodels.ListFilter) (int, error) {
	filter.Limit = 1
	_, total, err := s.users.List(ctx, filter)
	return total, err
}

func (s *Service) countNGOs(ctx context.Context, verified *bool) (int, error) {
	_, total, err := s.ngos.List(ctx, ngomodels.ListFilter{Verified: verified, Limit: 1})
	return total, err
}

// fromCache reports a hit. Cache errors degrade to a miss.
func (s *Service) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cacheTTL <= 0 {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "stats cache read failed", "key", key, "error", err)
		s.observeCache(key, "error")
	case hit:
		s.observeCache(key, "hit")
	default:
		s.observeCache(key, "miss")
	}
	return err == nil && hit
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "stats cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Delete(ctx, leaderboardKey, platformStatsKey); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed", "error", err)
	}
}

func (s *Service) observe(subject string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveRecompute(subject, start, err)
	}
}

func (s *Service) observeCache(report, result string) {
	if s.metrics != nil {
		s.metrics.ObserveCache(report, result)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func mapStoreError(err error, notFound, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
