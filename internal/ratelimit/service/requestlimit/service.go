package requestlimit

import (
	"context"
	"log/slog"
	"time"

	"civiclink/internal/ratelimit/metrics"
	"civiclink/internal/ratelimit/models"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

// Store counts one request against a window. Implemented by the in-memory
// and Redis bucket stores.
type Store interface {
	Allow(ctx context.Context, key string, w models.Window, now time.Time) (*models.Result, error)
}

// Service applies every configured window to a subject, e.g. 60 a minute and
// 1000 an hour per client address.
type Service struct {
	store   Store
	windows []models.Window
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

// New keeps windows with a positive limit and period.
func New(store Store, windows []models.Window, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, w := range windows {
		if w.Limit > 0 && w.Period > 0 {
			s.windows = append(s.windows, w)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check counts one request for subject ("ip" or "user") identified by value.
// The first refusing window wins; otherwise the result with the fewest
// remaining requests is returned.
func (s *Service) Check(ctx context.Context, subject, value string) (*models.Result, error) {
	now := requestcontext.Now(ctx)
	var tightest *models.Result
	for _, w := range s.windows {
		res, err := s.store.Allow(ctx, models.Key(subject, value, w.Period.String()), w, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
		}
		if !res.Allowed {
			if s.metrics != nil {
				s.metrics.IncrementRejections(subject)
			}
			s.logger.InfoContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"subject", subject,
				"limit", w.Limit,
				"period", w.Period,
			)
			return res, nil
		}
		if tightest == nil || res.Remaining < tightest.Remaining {
			tightest = res
		}
	}
	if tightest == nil {
		return &models.Result{Allowed: true}, nil
	}
	return tightest, nil
}
