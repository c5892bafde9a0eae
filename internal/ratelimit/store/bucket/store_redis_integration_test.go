//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civiclink/internal/ratelimit/models"
	"civiclink/internal/ratelimit/store/bucket"
	"civiclink/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestFixedWindow() {
	ctx := context.Background()
	window := models.Window{Limit: 2, Period: time.Minute}
	now := time.Now().Truncate(time.Minute).Add(5 * time.Second)

	first, err := s.store.Allow(ctx, "ip:203.0.113.9", window, now)
	s.Require().NoError(err)
	s.True(first.Allowed)
	s.Equal(1, first.Remaining)

	_, err = s.store.Allow(ctx, "ip:203.0.113.9", window, now)
	s.Require().NoError(err)

	refused, err := s.store.Allow(ctx, "ip:203.0.113.9", window, now)
	s.Require().NoError(err)
	s.False(refused.Allowed)
	s.Equal(55*time.Second, refused.RetryAfter)

	next, err := s.store.Allow(ctx, "ip:203.0.113.9", window, now.Add(time.Minute))
	s.Require().NoError(err)
	s.True(next.Allowed, "a new window starts a new count")
}

func (s *RedisStoreSuite) TestKeysExpire() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "user:ttl", models.Window{Limit: 5, Period: time.Minute}, time.Now())
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "civiclink:ratelimit:user:ttl:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
