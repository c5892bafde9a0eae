package authlockout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"civiclink/internal/ratelimit/metrics"
	"civiclink/internal/ratelimit/models"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

type Store interface {
	RecordFailure(ctx context.Context, key string, window time.Duration, now time.Time) (int, error)
	Lock(ctx context.Context, key string, until, now time.Time) error
	Get(ctx context.Context, key string, window time.Duration, now time.Time) (*models.Lockout, error)
	Clear(ctx context.Context, key string) error
}

// Config: MaxFailures failed logins for one email from one address, each
// within Window of the previous, lock that pair for Lockout.
type Config struct {
	MaxFailures int
	Window      time.Duration
	Lockout     time.Duration
}

func DefaultConfig() Config {
	return Config{MaxFailures: 5, Window: 15 * time.Minute, Lockout: 15 * time.Minute}
}

// Service guards login against password guessing. Store failures are logged
// and let the login through; the lockout must not take sign-in down with it.
type Service struct {
	store   Store
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics
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

// WithConfig replaces the defaults. Zero fields keep their default.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxFailures > 0 {
			s.config.MaxFailures = cfg.MaxFailures
		}
		if cfg.Window > 0 {
			s.config.Window = cfg.Window
		}
		if cfg.Lockout > 0 {
			s.config.Lockout = cfg.Lockout
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, config: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(email, ip string) string {
	return models.Key("login", email, ip)
}

// Check refuses a login attempt while the email and address pair is locked.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	now := requestcontext.Now(ctx)
	state, err := s.store.Get(ctx, key(email, ip), s.config.Window, now)
	if err != nil {
		s.warn(ctx, "read", err)
		return nil
	}
	if !state.IsLockedAt(now) {
		return nil
	}
	retry := int(math.Ceil(state.LockedUntil.Sub(now).Seconds()))
	return dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many failed login attempts; try again in %d seconds", retry))
}

// RecordFailure counts a failed login and locks the pair once the count
// reaches MaxFailures.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) {
	now := requestcontext.Now(ctx)
	k := key(email, ip)
	n, err := s.store.RecordFailure(ctx, k, s.config.Window, now)
	if err != nil {
		s.warn(ctx, "record", err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementLoginFailures()
	}
	if n < s.config.MaxFailures {
		return
	}
	if err := s.store.Lock(ctx, k, now.Add(s.config.Lockout), now); err != nil {
		s.warn(ctx, "lock", err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementLoginLockouts()
	}
	s.logger.WarnContext(ctx, "login locked after repeated failures",
		"request_id", requestcontext.RequestID(ctx),
		"failures", n,
		"locked_for", s.config.Lockout,
	)
}

// Clear forgets the pair's failures after a successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) {
	if err := s.store.Clear(ctx, key(email, ip)); err != nil {
		s.warn(ctx, "clear", err)
	}
}

func (s *Service) warn(ctx context.Context, stage string, err error) {
	s.logger.WarnContext(ctx, "login lockout store failed",
		"request_id", requestcontext.RequestID(ctx),
		"stage", stage,
		"error", err,
	)
}
