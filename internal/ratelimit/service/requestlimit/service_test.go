package requestlimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/ratelimit/models"
	"civiclink/internal/ratelimit/store/bucket"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, models.Window, time.Time) (*models.Result, error) {
	return nil, errors.New("redis: connection refused")
}

func newService(windows ...models.Window) *Service {
	return New(bucket.NewInMemory(), windows, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCheck(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("minute window refuses first", func(t *testing.T) {
		svc := newService(models.Window{Limit: 2, Period: time.Minute}, models.Window{Limit: 10, Period: time.Hour})
		for range 2 {
			res, err := svc.Check(ctx, "ip", "203.0.113.9")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		res, err := svc.Check(ctx, "ip", "203.0.113.9")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 2, res.Limit)
		assert.Equal(t, time.Minute, res.RetryAfter)
	})

	t.Run("hour window caps bursts spread over minutes", func(t *testing.T) {
		svc := newService(models.Window{Limit: 2, Period: time.Minute}, models.Window{Limit: 3, Period: time.Hour})
		for i := range 3 {
			res, err := svc.Check(requestcontext.WithTime(ctx, now.Add(time.Duration(i)*2*time.Minute)), "user", "u-1")
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}
		res, err := svc.Check(requestcontext.WithTime(ctx, now.Add(10*time.Minute)), "user", "u-1")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
	})

	t.Run("reports the tightest remaining allowance", func(t *testing.T) {
		svc := newService(models.Window{Limit: 60, Period: time.Minute}, models.Window{Limit: 5, Period: time.Hour})
		res, err := svc.Check(ctx, "ip", "198.51.100.4")
		require.NoError(t, err)
		assert.Equal(t, 5, res.Limit)
		assert.Equal(t, 4, res.Remaining)
	})

	t.Run("subjects do not share allowances", func(t *testing.T) {
		svc := newService(models.Window{Limit: 1, Period: time.Minute})
		_, err := svc.Check(ctx, "ip", "198.51.100.4")
		require.NoError(t, err)
		res, err := svc.Check(ctx, "user", "198.51.100.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("no windows allows everything", func(t *testing.T) {
		svc := newService(models.Window{Limit: 0, Period: time.Minute})
		res, err := svc.Check(ctx, "ip", "198.51.100.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		svc := New(brokenStore{}, []models.Window{{Limit: 1, Period: time.Minute}})
		_, err := svc.Check(ctx, "ip", "198.51.100.4")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
