package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"civiclink/internal/access"
	"civiclink/internal/ratelimit/models"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

type Limiter interface {
	Check(ctx context.Context, subject, value string) (*models.Result, error)
}

type Middleware struct {
	limiter  Limiter
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit counts each request against the signed-in user, or against the
// client address for anonymous requests. It must run after the auth
// middleware. A failing limiter lets the request through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		subject, value := "ip", requestcontext.ClientIP(ctx)
		if identity, ok := access.FromContext(ctx); ok {
			subject, value = "user", identity.UserID.String()
		}

		res, err := m.limiter.Check(ctx, subject, value)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"request_id", requestcontext.RequestID(ctx),
				"subject", subject,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, res)
		if !res.Allowed {
			retry := retrySeconds(res)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
				fmt.Sprintf("too many requests; try again in %d seconds", retry)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addHeaders(w http.ResponseWriter, res *models.Result) {
	if res.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

func retrySeconds(res *models.Result) int {
	return max(int(math.Ceil(res.RetryAfter.Seconds())), 1)
}
