package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"civiclink/internal/access"
	"civiclink/internal/issues/metrics"
	"civiclink/internal/issues/models"
	ministrymodels "civiclink/internal/ministry/models"
	ngomodels "civiclink/internal/ngo/models"
	notifmodels "civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Store

type Store interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, issueID id.IssueID) (*models.Issue, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Issue, int, error)
	Delete(ctx context.Context, issueID id.IssueID) error
	Execute(ctx context.Context, issueID id.IssueID, validate func(*models.Issue) error, mutate func(*models.Issue)) (*models.Issue, error)
	MarkCrisis(ctx context.Context, districts []string, now time.Time) (int, error)
}

// Tagger resolves the ministries responsible for a new issue.
type Tagger interface {
	TagByCategory(ctx context.Context, category string) ([]id.MinistryID, error)
	Suggest(ctx context.Context, category, title, description string) ([]id.MinistryID, error)
}

type NGOLookup interface {
	FindByID(ctx context.Context, ngoID id.NGOID) (*ngomodels.NGO, error)
}

type MinistryLookup interface {
	FindByID(ctx context.Context, ministryID id.MinistryID) (*ministrymodels.Ministry, error)
}

// Notifier is best-effort: failures are handled on the notifier side.
type Notifier interface {
	Dispatch(ctx context.Context, ev notifmodels.Event)
	DispatchToMinistry(ctx context.Context, ministryID id.MinistryID, ev notifmodels.Event)
	DispatchToNGO(ctx context.Context, ngoID id.NGOID, ev notifmodels.Event)
}

type StatsRecomputer interface {
	RecomputeMany(ctx context.Context, ministryIDs []id.MinistryID, ngoID *id.NGOID) error
}

const (
	defaultMinVerifications = 3
	minSearchLength         = 3
)

// Service owns the issue lifecycle. Every state change goes through
// Store.Execute so guards and mutations see a consistent issue; notifications
// and stat recomputes run after the change is committed.
type Service struct {
	store            Store
	tagger           Tagger
	ngos             NGOLookup
	ministries       MinistryLookup
	notifier         Notifier
	stats            StatsRecomputer
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	minVerifications int
	keywordTagging   bool
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

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithStatsRecomputer(r StatsRecomputer) Option {
	return func(s *Service) {
		s.stats = r
	}
}

func WithMinistryLookup(m MinistryLookup) Option {
	return func(s *Service) {
		s.ministries = m
	}
}

// WithMinVerifications sets the community threshold for pending → verified.
// Values below 1 keep the default.
func WithMinVerifications(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minVerifications = n
		}
	}
}

// WithKeywordTagging makes Create tag with Tagger.Suggest instead of
// category-only tagging.
func WithKeywordTagging(enabled bool) Option {
	return func(s *Service) {
		s.keywordTagging = enabled
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, tagger Tagger, ngos NGOLookup, opts ...Option) *Service {
	s := &Service{
		store:            store,
		tagger:           tagger,
		ngos:             ngos,
		logger:           slog.Default(),
		tracer:           otel.Tracer("civiclink/issues"),
		minVerifications: defaultMinVerifications,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns one issue. Public.
func (s *Service) Get(ctx context.Context, issueID id.IssueID) (*models.Issue, error) {
	issue, err := s.store.FindByID(ctx, issueID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load issue")
	}
	return issue, nil
}

// List returns one page of issues matching filter. Public.
func (s *Service) List(ctx context.Context, filter models.Filter) (*models.ListResult, error) {
	issues, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list issues")
	}
	return &models.ListResult{
		Issues: issues,
		Total:  total,
		Page:   pageNumber(filter),
		Limit:  filter.Limit,
	}, nil
}

// Search matches query against title and description, case-insensitively.
func (s *Service) Search(ctx context.Context, query string, filter models.Filter) (*models.ListResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return nil, dErrors.New(dErrors.CodeValidation, "search query must be at least 3 characters")
	}
	filter.Query = query
	return s.List(ctx, filter)
}

// CrisisMap lists crisis issues that are still open.
func (s *Service) CrisisMap(ctx context.Context) ([]*models.Issue, error) {
	crisis := true
	issues, _, err := s.store.List(ctx, models.Filter{
		IsCrisis: &crisis,
		Statuses: models.OpenStatuses(),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list crisis issues")
	}
	return issues, nil
}

func pageNumber(f models.Filter) int {
	if f.Limit <= 0 {
		return 1
	}
	return f.Offset/f.Limit + 1
}

// mapStoreError converts store sentinels to domain errors. Coded errors pass
// through so guard failures raised inside Execute keep their code.
func mapStoreError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "issue not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "issue was modified concurrently")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		if de.Code == dErrors.CodeInvariantViolation {
			return dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) startSpan(ctx context.Context, name string, issueID id.IssueID) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "issues."+name)
	if !issueID.IsNil() {
		span.SetAttributes(attribute.String("issue.id", issueID.String()))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveMutation(op, start)
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

// afterCommit runs the best-effort side effects of a mutation. The request
// context may be cancelled once the response is written, so they get their
// own deadline.
func (s *Service) afterCommit(ctx context.Context, ministryIDs []id.MinistryID, ngoID *id.NGOID) {
	if s.stats == nil || (len(ministryIDs) == 0 && ngoID == nil) {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.stats.RecomputeMany(ctx, ministryIDs, ngoID); err != nil {
		s.logger.WarnContext(ctx, "stats recompute failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) notify(ctx context.Context, ev notifmodels.Event) {
	if s.notifier != nil {
		s.notifier.Dispatch(context.WithoutCancel(ctx), ev)
	}
}

func (s *Service) notifyMinistries(ctx context.Context, ministryIDs []id.MinistryID, ev notifmodels.Event) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, m := range ministryIDs {
		s.notifier.DispatchToMinistry(ctx, m, ev)
	}
}

func (s *Service) notifyNGO(ctx context.Context, ngoID id.NGOID, ev notifmodels.Event) {
	if s.notifier != nil {
		s.notifier.DispatchToNGO(context.WithoutCancel(ctx), ngoID, ev)
	}
}

func (s *Service) ministryName(ctx context.Context, ministryID id.MinistryID) string {
	if s.ministries != nil {
		if m, err := s.ministries.FindByID(ctx, ministryID); err == nil {
			return m.Name.EN
		}
	}
	return "The responsible ministry"
}

// verifiedNGO loads the caller's NGO and checks it may act on issues.
func (s *Service) verifiedNGO(ctx context.Context, caller *access.Identity) (*ngomodels.NGO, error) {
	if caller.NGOID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not affiliated with an NGO")
	}
	ngo, err := s.ngos.FindByID(ctx, *caller.NGOID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "ngo not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ngo")
	}
	if !ngo.Verified {
		return nil, dErrors.New(dErrors.CodeForbidden, "ngo is not verified")
	}
	return ngo, nil
}
