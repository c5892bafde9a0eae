package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	"civiclink/internal/ministry/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Store

type Store interface {
	Create(ctx context.Context, m *models.Ministry) error
	FindByID(ctx context.Context, ministryID id.MinistryID) (*models.Ministry, error)
	List(ctx context.Context) ([]*models.Ministry, error)
	FindByCategories(ctx context.Context, categories []string) ([]*models.Ministry, error)
	Update(ctx context.Context, m *models.Ministry) error
	Delete(ctx context.Context, ministryID id.MinistryID) error
}

// IssueReader is the read side of the issue registry used for ministry views.
type IssueReader interface {
	List(ctx context.Context, filter issuemodels.Filter) ([]*issuemodels.Issue, int, error)
	CountBy(ctx context.Context, group issuemodels.GroupBy, filter issuemodels.Filter) (map[string]int, error)
}

// Affiliations updates the user side of an officer assignment. It returns the
// ministry the user was previously assigned to, if any.
type Affiliations interface {
	AssignMinistry(ctx context.Context, userID id.UserID, ministryID id.MinistryID) (*id.MinistryID, error)
}

// Service is the ministry directory: CRUD, officer assignment and the
// category-based auto-tagging used by the issue registry.
type Service struct {
	store        Store
	issues       IssueReader
	affiliations Affiliations
	logger       *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, issues IssueReader, affiliations Affiliations, opts ...Option) *Service {
	s := &Service{
		store:        store,
		issues:       issues,
		affiliations: affiliations,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TagByCategory returns the ids of every ministry handling category, sorted
// and deduplicated. An unknown category yields an empty result.
func (s *Service) TagByCategory(ctx context.Context, category string) ([]id.MinistryID, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !models.AllowedCategory(category) {
		return []id.MinistryID{}, nil
	}
	return s.tag(ctx, []string{category})
}

// Suggest extends TagByCategory with ministries whose keyword category is
// mentioned in the issue text.
func (s *Service) Suggest(ctx context.Context, category, title, description string) ([]id.MinistryID, error) {
	categories := make([]string, 0, 1)
	if c := strings.ToLower(strings.TrimSpace(category)); models.AllowedCategory(c) {
		categories = append(categories, c)
	}
	text := strings.ToLower(title + " " + description)
	for keyword, c := range models.KeywordCategories() {
		if strings.Contains(text, keyword) && !slices.Contains(categories, c) {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return []id.MinistryID{}, nil
	}
	return s.tag(ctx, categories)
}

func (s *Service) tag(ctx context.Context, categories []string) ([]id.MinistryID, error) {
	ministries, err := s.store.FindByCategories(ctx, categories)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up ministries")
	}
	ids := make([]id.MinistryID, 0, len(ministries))
	for _, m := range ministries {
		ids = append(ids, m.ID)
	}
	slices.SortFunc(ids, func(a, b id.MinistryID) int {
		return strings.Compare(a.String(), b.String())
	})
	return slices.Compact(ids), nil
}

func (s *Service) Get(ctx context.Context, ministryID id.MinistryID) (*models.Ministry, error) {
	m, err := s.store.FindByID(ctx, ministryID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load ministry")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Ministry, error) {
	ministries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ministries")
	}
	return ministries, nil
}

func (s *Service) Create(ctx context.Context, caller *access.Identity, req *models.CreateMinistryRequest) (*models.Ministry, error) {
	if err := access.Authorize(caller, access.OpManageMinistries); err != nil {
		return nil, err
	}
	m, err := models.NewMinistry(
		id.MinistryID(uuid.New()),
		req.Name,
		req.Categories,
		req.ContactEmail,
		req.ContactPhone,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, mapStoreError(err, "")
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, mapStoreError(err, "failed to save ministry")
	}
	s.logger.InfoContext(ctx, "ministry created",
		"request_id", requestcontext.RequestID(ctx),
		"ministry_id", m.ID,
		"categories", m.Categories,
	)
	return m, nil
}

// Update replaces the descriptive fields of a ministry.
func (s *Service) Update(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, req *models.CreateMinistryRequest) (*models.Ministry, error) {
	if err := access.Authorize(caller, access.OpManageMinistries); err != nil {
		return nil, err
	}
	m, err := s.store.FindByID(ctx, ministryID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load ministry")
	}
	if err := m.Update(req.Name, req.Categories, req.ContactEmail, req.ContactPhone, requestcontext.Now(ctx)); err != nil {
		return nil, mapStoreError(err, "")
	}
	if err := s.store.Update(ctx, m); err != nil {
		return nil, mapStoreError(err, "failed to save ministry")
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, caller *access.Identity, ministryID id.MinistryID) error {
	if err := access.Authorize(caller, access.OpManageMinistries); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, ministryID); err != nil {
		return mapStoreError(err, "failed to delete ministry")
	}
	s.logger.InfoContext(ctx, "ministry deleted",
		"request_id", requestcontext.RequestID(ctx),
		"ministry_id", ministryID,
	)
	return nil
}

// AssignOfficer makes a user a government officer of the ministry. A user
// moved from another ministry is removed from that ministry's officers.
func (s *Service) AssignOfficer(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, req *models.AssignOfficerRequest) (*models.Ministry, error) {
	if err := access.Authorize(caller, access.OpManageMinistries); err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.store.FindByID(ctx, ministryID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load ministry")
	}

	previous, err := s.affiliations.AssignMinistry(ctx, userID, ministryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, mapStoreError(err, "failed to update user affiliation")
	}

	now := requestcontext.Now(ctx)
	if m.AddOfficer(userID, now) {
		if err := s.store.Update(ctx, m); err != nil {
			return nil, mapStoreError(err, "failed to save ministry")
		}
	}
	if previous != nil && *previous != ministryID {
		s.detachOfficer(ctx, *previous, userID)
	}

	s.logger.InfoContext(ctx, "officer assigned",
		"request_id", requestcontext.RequestID(ctx),
		"ministry_id", ministryID,
		"user_id", userID,
	)
	return m, nil
}

func (s *Service) detachOfficer(ctx context.Context, ministryID id.MinistryID, userID id.UserID) {
	old, err := s.store.FindByID(ctx, ministryID)
	if err != nil {
		return
	}
	if old.RemoveOfficer(userID, requestcontext.Now(ctx)) {
		if err := s.store.Update(ctx, old); err != nil {
			s.logger.WarnContext(ctx, "failed to detach officer from previous ministry",
				"request_id", requestcontext.RequestID(ctx),
				"ministry_id", ministryID,
				"error", err,
			)
		}
	}
}

// Issues lists the issues tagged to a ministry, for its officers and admins.
func (s *Service) Issues(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, filter issuemodels.Filter) (*issuemodels.ListResult, error) {
	if err := s.authorizeOfficer(caller, ministryID); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, ministryID); err != nil {
		return nil, mapStoreError(err, "failed to load ministry")
	}
	filter.MinistryID = &ministryID
	issues, total, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ministry issues")
	}
	page := 1
	if filter.Limit > 0 {
		page = filter.Offset/filter.Limit + 1
	}
	return &issuemodels.ListResult{Issues: issues, Total: total, Page: page, Limit: filter.Limit}, nil
}

// Dashboard returns status counts of the ministry's issues with its latest
// stored stats.
func (s *Service) Dashboard(ctx context.Context, caller *access.Identity, ministryID id.MinistryID) (*models.Dashboard, error) {
	if err := s.authorizeOfficer(caller, ministryID); err != nil {
		return nil, err
	}
	m, err := s.store.FindByID(ctx, ministryID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load ministry")
	}
	counts, err := s.issues.CountBy(ctx, issuemodels.GroupByStatus, issuemodels.Filter{MinistryID: &ministryID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count ministry issues")
	}
	for _, st := range issuemodels.Statuses() {
		if _, ok := counts[string(st)]; !ok {
			counts[string(st)] = 0
		}
	}
	return &models.Dashboard{Ministry: m, StatusCounts: counts}, nil
}

// authorizeOfficer admits admins and officers of ministryID.
func (s *Service) authorizeOfficer(caller *access.Identity, ministryID id.MinistryID) error {
	if err := access.Authorize(caller, access.OpViewMinistryIssues); err != nil {
		return err
	}
	if caller.IsAdmin() || caller.OfficerOf(ministryID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "caller is not an officer of this ministry")
}

func mapStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "ministry not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "ministry already exists")
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
