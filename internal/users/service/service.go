package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"civiclink/internal/access"
	"civiclink/internal/platform/metrics"
	"civiclink/internal/users/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Store,LoginGuard

type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, int, error)
	Count(ctx context.Context) (int, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role string, expiresIn time.Duration) (string, error)
}

// LoginGuard locks out an email and client address pair after repeated
// failed logins. Check returns a coded error while the pair is locked.
type LoginGuard interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string)
	Clear(ctx context.Context, email, ip string)
}

// ListResult is one page of users.
type ListResult struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

const defaultTokenTTL = 24 * time.Hour

type Service struct {
	store      Store
	tokens     TokenIssuer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	bcryptCost int
	lockout    LoginGuard

	// dummyHash is compared for unknown emails so their login costs the same
	// as a wrong password. Built lazily at bcryptCost.
	dummyOnce sync.Once
	dummyHash []byte
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

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithLoginGuard(g LoginGuard) Option {
	return func(s *Service) {
		s.lockout = g
	}
}

func New(store Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tokens:     tokens,
		logger:     slog.Default(),
		tokenTTL:   defaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a citizen account and signs it in.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	if err := models.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	u, err := models.NewUser(id.UserID(uuid.New()), req.Email, req.Phone, hash, req.FullName, now)
	if err != nil {
		return nil, mapStoreError(err, "")
	}
	u.RecordLogin(now)
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email or phone is already registered")
		}
		return nil, mapStoreError(err, "failed to save user")
	}
	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID,
	)
	return s.authResult(u)
}

// Login checks credentials and records the sign-in. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := models.NormalizeEmail(req.Email)
	ip := requestcontext.ClientIP(ctx)
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, email, ip); err != nil {
			return nil, err
		}
	}
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.unknownUserHash(), []byte(req.Password))
			s.loginFailed(ctx, email, ip)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.logger.InfoContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", u.ID,
			"client_ip", ip,
		)
		s.loginFailed(ctx, email, ip)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if u.Status != access.StatusActive {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is suspended")
	}

	now := requestcontext.Now(ctx)
	u, err = s.store.Execute(ctx, u.ID, noCheck, func(u *models.User) { u.RecordLogin(now) })
	if err != nil {
		return nil, mapStoreError(err, "failed to record login")
	}
	if s.lockout != nil {
		s.lockout.Clear(ctx, email, ip)
	}
	s.logger.InfoContext(ctx, "user logged in",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID,
		"client_ip", requestcontext.ClientIP(ctx),
		"client_platform", requestcontext.ClientPlatform(ctx),
	)
	return s.authResult(u)
}

func (s *Service) loginFailed(ctx context.Context, email, ip string) {
	if s.lockout != nil {
		s.lockout.RecordFailure(ctx, email, ip)
	}
}

func (s *Service) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("civiclink-unknown-user"), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *Service) authResult(u *models.User) (*models.AuthResult, error) {
	token, err := s.tokens.GenerateAccessToken(u.ID, string(u.Role), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &models.AuthResult{
		User:        u,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, caller *access.Identity) (*models.User, error) {
	if err := access.Authorize(caller, access.OpManageProfile); err != nil {
		return nil, err
	}
	u, err := s.store.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load user")
	}
	return u, nil
}

// UpdateProfile edits name, phone, picture and location. Unset fields are kept.
func (s *Service) UpdateProfile(ctx context.Context, caller *access.Identity, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := access.Authorize(caller, access.OpManageProfile); err != nil {
		return nil, err
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full name must not be empty")
	}
	if req.Phone != nil {
		if err := models.ValidatePhone(strings.TrimSpace(*req.Phone)); err != nil {
			return nil, mapStoreError(err, "")
		}
	}
	u, err := s.store.Execute(ctx, caller.UserID, noCheck, func(u *models.User) {
		if req.FullName != nil {
			u.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Phone != nil {
			u.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.ProfilePicture != nil {
			u.ProfilePicture = strings.TrimSpace(*req.ProfilePicture)
		}
		if req.Location != nil {
			loc := *req.Location
			u.Location = &loc
		}
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "phone is already registered")
		}
		return nil, mapStoreError(err, "failed to update profile")
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, caller *access.Identity, req *models.ChangePasswordRequest) error {
	if err := access.Authorize(caller, access.OpManageProfile); err != nil {
		return err
	}
	if err := models.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.store.Execute(ctx, caller.UserID,
		func(u *models.User) error {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
				return dErrors.New(dErrors.CodeUnauthorized, "current password is incorrect")
			}
			return nil
		},
		func(u *models.User) { u.PasswordHash = hash },
	)
	if err != nil {
		return mapStoreError(err, "failed to change password")
	}
	s.logger.InfoContext(ctx, "password changed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", caller.UserID,
	)
	return nil
}

// List returns users filtered by role and status. Admin only.
func (s *Service) List(ctx context.Context, caller *access.Identity, filter models.ListFilter) (*ListResult, error) {
	if err := access.Authorize(caller, access.OpManageUsers); err != nil {
		return nil, err
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	users, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	page := 1
	if filter.Limit > 0 {
		page = filter.Offset/filter.Limit + 1
	}
	return &ListResult{Users: users, Total: total, Page: page, Limit: filter.Limit}, nil
}

// SetStatus activates or suspends an account. Admins cannot suspend
// themselves.
func (s *Service) SetStatus(ctx context.Context, caller *access.Identity, userID id.UserID, req *models.SetStatusRequest) (*models.User, error) {
	if err := access.Authorize(caller, access.OpManageUsers); err != nil {
		return nil, err
	}
	status := access.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be active or suspended")
	}
	if userID == caller.UserID && status == access.StatusSuspended {
		return nil, dErrors.New(dErrors.CodeValidation, "admins cannot suspend themselves")
	}
	u, err := s.store.Execute(ctx, userID, noCheck, func(u *models.User) { u.Status = status })
	if err != nil {
		return nil, mapStoreError(err, "failed to update user status")
	}
	s.logger.InfoContext(ctx, "user status changed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"status", status,
		"changed_by", caller.UserID,
	)
	return u, nil
}

// ResolveIdentity loads the current role, status and affiliations for a
// token subject. An unknown subject is CodeNotFound.
func (s *Service) ResolveIdentity(ctx context.Context, userID id.UserID) (*access.Identity, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err, "failed to resolve identity")
	}
	return u.Identity(), nil
}

// AssignMinistry makes the user a government officer of ministryID and
// returns the ministry they served before, if any.
func (s *Service) AssignMinistry(ctx context.Context, userID id.UserID, ministryID id.MinistryID) (*id.MinistryID, error) {
	var previous *id.MinistryID
	_, err := s.store.Execute(ctx, userID,
		func(u *models.User) error {
			switch u.Role {
			case access.RoleAdmin:
				return dErrors.New(dErrors.CodeConflict, "admins cannot be ministry officers")
			case access.RoleNGO:
				return dErrors.New(dErrors.CodeConflict, "ngo admins cannot be ministry officers")
			}
			return nil
		},
		func(u *models.User) {
			previous = u.MinistryID
			u.AssignMinistry(ministryID)
		},
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to assign ministry")
	}
	return previous, nil
}

// AssignNGO makes the user an admin of ngoID.
func (s *Service) AssignNGO(ctx context.Context, userID id.UserID, ngoID id.NGOID) error {
	_, err := s.store.Execute(ctx, userID, noCheck, func(u *models.User) { u.AssignNGO(ngoID) })
	return mapStoreError(err, "failed to assign ngo")
}

// ClearNGO returns an NGO admin to citizen.
func (s *Service) ClearNGO(ctx context.Context, userID id.UserID) error {
	_, err := s.store.Execute(ctx, userID, noCheck, func(u *models.User) { u.ClearNGO() })
	return mapStoreError(err, "failed to clear ngo")
}

// Count returns the number of registered users.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	return n, nil
}

// BootstrapAdmin creates an admin account for email unless one exists.
// It reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = models.NormalizeEmail(email)
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}
	if err := models.ValidatePassword(password); err != nil {
		return false, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	u, err := models.NewUser(id.UserID(uuid.New()), email, "", hash, "Platform Administrator", requestcontext.Now(ctx))
	if err != nil {
		return false, mapStoreError(err, "")
	}
	u.Role = access.RoleAdmin
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return false, nil
		}
		return false, mapStoreError(err, "failed to create admin")
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", "user_id", u.ID)
	return true, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(b), nil
}

func noCheck(*models.User) error { return nil }

func mapStoreError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "user already exists")
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
