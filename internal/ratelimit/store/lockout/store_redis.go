package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"civiclink/internal/ratelimit/models"
)

const (
	failurePrefix = "civiclink:lockout:fail:"
	lockPrefix    = "civiclink:lockout:lock:"
)

// RedisStore keeps the failure count and the lock as two expiring keys, so
// both lapse on their own without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration, _ time.Time) (int, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, failurePrefix+key)
		p.Expire(ctx, failurePrefix+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until, now time.Time) error {
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, lockPrefix+key, until.Unix(), ttl)
		p.Del(ctx, failurePrefix+key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock login: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string, _ time.Duration, now time.Time) (*models.Lockout, error) {
	var (
		failures *redis.StringCmd
		lockTTL  *redis.DurationCmd
	)
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		failures = p.Get(ctx, failurePrefix+key)
		lockTTL = p.PTTL(ctx, lockPrefix+key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read login lockout: %w", err)
	}

	out := &models.Lockout{}
	if n, err := failures.Int(); err == nil {
		out.FailureCount = n
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read login failures: %w", err)
	}
	if ttl := lockTTL.Val(); ttl > 0 {
		until := now.Add(ttl)
		out.LockedUntil = &until
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, failurePrefix+key, lockPrefix+key).Err()
}
