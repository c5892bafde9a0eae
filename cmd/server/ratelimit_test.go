package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/platform/config"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

func TestNewRateLimiting(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	t.Run("in-memory limits without redis", func(t *testing.T) {
		limiter, guard := newRateLimiting(config.RateLimitConfig{
			PerMinute:        2,
			PerHour:          100,
			LoginMaxFailures: 1,
		}, nil, nil, log)
		require.NotNil(t, guard)

		for range 2 {
			res, err := limiter.Check(ctx, "ip", "203.0.113.9")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		res, err := limiter.Check(ctx, "ip", "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		guard.RecordFailure(ctx, "ravi@example.lk", "203.0.113.9")
		assert.True(t, dErrors.HasCode(guard.Check(ctx, "ravi@example.lk", "203.0.113.9"), dErrors.CodeRateLimited))
	})

	t.Run("disabled has no login lockout", func(t *testing.T) {
		_, guard := newRateLimiting(config.RateLimitConfig{Disabled: true}, nil, nil, log)
		assert.Nil(t, guard)
	})
}
