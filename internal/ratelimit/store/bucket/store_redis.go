package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"civiclink/internal/ratelimit/models"
)

const keyPrefix = "civiclink:ratelimit:"

// RedisStore counts requests in fixed windows aligned to the period, so
// every instance behind the load balancer shares one allowance per key.
// Refused requests still count towards the current window.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, w models.Window, now time.Time) (*models.Result, error) {
	start := now.Truncate(w.Period)
	resetAt := start.Add(w.Period)
	k := keyPrefix + key + ":" + strconv.FormatInt(start.Unix(), 10)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, w.Period)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count request for %s: %w", key, err)
	}

	count := int(incr.Val())
	if count > w.Limit {
		return &models.Result{
			Allowed:    false,
			Limit:      w.Limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}
	return &models.Result{
		Allowed:   true,
		Limit:     w.Limit,
		Remaining: w.Limit - count,
		ResetAt:   resetAt,
	}, nil
}
