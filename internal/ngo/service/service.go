package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	"civiclink/internal/ngo/models"
	notifmodels "civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Store

type Store interface {
	Create(ctx context.Context, n *models.NGO) error
	FindByID(ctx context.Context, ngoID id.NGOID) (*models.NGO, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.NGO, int, error)
	Execute(ctx context.Context, ngoID id.NGOID, validate func(*models.NGO) error, mutate func(*models.NGO)) (*models.NGO, error)
	Delete(ctx context.Context, ngoID id.NGOID) error
}

// Affiliations updates the user side of NGO membership.
type Affiliations interface {
	AssignNGO(ctx context.Context, userID id.UserID, ngoID id.NGOID) error
	ClearNGO(ctx context.Context, userID id.UserID) error
}

type IssueReader interface {
	List(ctx context.Context, filter issuemodels.Filter) ([]*issuemodels.Issue, int, error)
}

type Notifier interface {
	DispatchToNGO(ctx context.Context, ngoID id.NGOID, ev notifmodels.Event)
}

// ListResult is one page of NGOs.
type ListResult struct {
	NGOs  []*models.NGO `json:"ngos"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type Service struct {
	store        Store
	affiliations Affiliations
	issues       IssueReader
	notifier     Notifier
	logger       *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func New(store Store, affiliations Affiliations, issues IssueReader, opts ...Option) *Service {
	s := &Service{
		store:        store,
		affiliations: affiliations,
		issues:       issues,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unverified NGO with the caller as its admin and moves
// the caller to the ngo role.
func (s *Service) Register(ctx context.Context, caller *access.Identity, req *models.RegisterRequest) (*models.NGO, error) {
	if err := access.Authorize(caller, access.OpRegisterNGO); err != nil {
		return nil, err
	}
	if caller.NGOID != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "caller already belongs to an NGO")
	}
	n, err := models.NewNGO(id.NGOID(uuid.New()), req.Name, req.RegistrationNumber, caller.UserID, req.Profile(), requestcontext.Now(ctx))
	if err != nil {
		return nil, mapStoreError(err, "")
	}
	if err := s.store.Create(ctx, n); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "registration number is already registered")
		}
		return nil, mapStoreError(err, "failed to save ngo")
	}
	if err := s.affiliations.AssignNGO(ctx, caller.UserID, n.ID); err != nil {
		if delErr := s.store.Delete(ctx, n.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back ngo registration",
				"request_id", requestcontext.RequestID(ctx),
				"ngo_id", n.ID,
				"error", delErr,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user affiliation")
	}
	s.logger.InfoContext(ctx, "ngo registered",
		"request_id", requestcontext.RequestID(ctx),
		"ngo_id", n.ID,
		"admin_id", caller.UserID,
	)
	return n, nil
}

// Approve verifies an NGO and notifies its admins. A second approval is a
// conflict.
func (s *Service) Approve(ctx context.Context, caller *access.Identity, ngoID id.NGOID) (*models.NGO, error) {
	if err := access.Authorize(caller, access.OpApproveNGO); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	n, err := s.store.Execute(ctx, ngoID,
		func(n *models.NGO) error { return n.CanApprove() },
		func(n *models.NGO) { n.ApplyApproval(caller.UserID, now) },
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to approve ngo")
	}
	s.logger.InfoContext(ctx, "ngo approved",
		"request_id", requestcontext.RequestID(ctx),
		"ngo_id", n.ID,
		"approved_by", caller.UserID,
	)
	if s.notifier != nil {
		s.notifier.DispatchToNGO(context.WithoutCancel(ctx), n.ID, notifmodels.NGOApproved(n.Name))
	}
	return n, nil
}

// Pending lists NGOs awaiting approval.
func (s *Service) Pending(ctx context.Context, caller *access.Identity, offset, limit int) (*ListResult, error) {
	if err := access.Authorize(caller, access.OpApproveNGO); err != nil {
		return nil, err
	}
	verified := false
	return s.list(ctx, models.ListFilter{Verified: &verified, Offset: offset, Limit: limit})
}

// List returns verified NGOs. Public.
func (s *Service) List(ctx context.Context, offset, limit int) (*ListResult, error) {
	verified := true
	return s.list(ctx, models.ListFilter{Verified: &verified, Offset: offset, Limit: limit})
}

func (s *Service) list(ctx context.Context, filter models.ListFilter) (*ListResult, error) {
	ngos, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ngos")
	}
	page := 1
	if filter.Limit > 0 {
		page = filter.Offset/filter.Limit + 1
	}
	return &ListResult{NGOs: ngos, Total: total, Page: page, Limit: filter.Limit}, nil
}

// Get returns a verified NGO to anyone. Unverified NGOs are visible only to
// their own admins and platform admins.
func (s *Service) Get(ctx context.Context, caller *access.Identity, ngoID id.NGOID) (*models.NGO, error) {
	n, err := s.store.FindByID(ctx, ngoID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load ngo")
	}
	if !n.Verified && !caller.IsAdmin() && (caller == nil || !n.IsAdmin(caller.UserID)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "ngo not found")
	}
	return n, nil
}

// Mine returns the caller's own NGO.
func (s *Service) Mine(ctx context.Context, caller *access.Identity) (*models.NGO, error) {
	if err := access.Authorize(caller, access.OpManageNGOProfile); err != nil {
		return nil, err
	}
	if caller.NGOID == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "caller is not affiliated with an NGO")
	}
	return s.Get(ctx, caller, *caller.NGOID)
}

// Delete removes an NGO and reverts its admins to citizens.
func (s *Service) Delete(ctx context.Context, caller *access.Identity, ngoID id.NGOID) error {
	if err := access.Authorize(caller, access.OpApproveNGO); err != nil {
		return err
	}
	n, err := s.store.FindByID(ctx, ngoID)
	if err != nil {
		return mapStoreError(err, "failed to load ngo")
	}
	if err := s.store.Delete(ctx, ngoID); err != nil {
		return mapStoreError(err, "failed to delete ngo")
	}
	for _, admin := range n.Admins {
		if err := s.affiliations.ClearNGO(ctx, admin); err != nil {
			s.logger.WarnContext(ctx, "failed to clear ngo affiliation",
				"request_id", requestcontext.RequestID(ctx),
				"ngo_id", ngoID,
				"user_id", admin,
				"error", err,
			)
		}
	}
	s.logger.InfoContext(ctx, "ngo deleted",
		"request_id", requestcontext.RequestID(ctx),
		"ngo_id", ngoID,
	)
	return nil
}

// UpdateProfile edits the caller's NGO. Only its admins may do so.
func (s *Service) UpdateProfile(ctx context.Context, caller *access.Identity, req *models.UpdateProfileRequest) (*models.NGO, error) {
	if err := access.Authorize(caller, access.OpManageNGOProfile); err != nil {
		return nil, err
	}
	if caller.NGOID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not affiliated with an NGO")
	}
	now := requestcontext.Now(ctx)
	profile := req.Profile()
	n, err := s.store.Execute(ctx, *caller.NGOID,
		func(n *models.NGO) error {
			if !n.IsAdmin(caller.UserID) {
				return dErrors.New(dErrors.CodeForbidden, "caller is not an admin of this NGO")
			}
			return n.Clone().UpdateProfile(profile, now)
		},
		func(n *models.NGO) { _ = n.UpdateProfile(profile, now) },
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to update ngo profile")
	}
	return n, nil
}

// AvailableIssues lists unclaimed open issues a verified NGO may claim. With
// no category it defaults to the NGO's areas of work.
func (s *Service) AvailableIssues(ctx context.Context, caller *access.Identity, category string, offset, limit int) (*issuemodels.ListResult, error) {
	if err := access.Authorize(caller, access.OpViewAvailableIssues); err != nil {
		return nil, err
	}
	if caller.NGOID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not affiliated with an NGO")
	}
	n, err := s.store.FindByID(ctx, *caller.NGOID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "ngo not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ngo")
	}
	if !n.Verified {
		return nil, dErrors.New(dErrors.CodeForbidden, "ngo is not verified")
	}

	filter := issuemodels.Filter{
		Statuses:  issuemodels.OpenStatuses(),
		Unclaimed: true,
		Sort:      issuemodels.SortNewest,
		Offset:    offset,
		Limit:     limit,
	}
	if category = strings.TrimSpace(category); category != "" {
		c, err := issuemodels.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter.Category = c
	} else {
		filter.Categories = n.AreaCategories()
	}

	issues, total, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list available issues")
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &issuemodels.ListResult{Issues: issues, Total: total, Page: page, Limit: limit}, nil
}

func mapStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "ngo not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "ngo already exists")
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
