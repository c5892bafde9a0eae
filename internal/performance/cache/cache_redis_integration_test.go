//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civiclink/internal/performance/cache"
	"civiclink/internal/performance/models"
	"civiclink/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	stats := models.PlatformStats{TotalIssues: 12, SolvedIssues: 3, ResolutionRate: 25, ByStatus: map[string]int{"solved": 3}}

	var got models.PlatformStats
	hit, err := s.cache.Get(ctx, "platform", &got)
	s.Require().NoError(err)
	s.False(hit)

	s.Require().NoError(s.cache.Set(ctx, "platform", stats, time.Minute))
	hit, err = s.cache.Get(ctx, "platform", &got)
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(12, got.TotalIssues)
	s.Equal(3, got.ByStatus["solved"])

	ttl, err := s.redis.Client.TTL(ctx, "civiclink:stats:platform").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.cache.Delete(ctx, "platform", "leaderboard"))
	hit, err = s.cache.Get(ctx, "platform", &got)
	s.Require().NoError(err)
	s.False(hit)
}

func (s *RedisCacheSuite) TestExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "leaderboard", models.Leaderboard{}, 50*time.Millisecond))
	s.Eventually(func() bool {
		var got models.Leaderboard
		hit, err := s.cache.Get(ctx, "leaderboard", &got)
		return err == nil && !hit
	}, 2*time.Second, 25*time.Millisecond)
}

func (s *RedisCacheSuite) TestCorruptValueIsAnError() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "civiclink:stats:platform", "not json", time.Minute).Err())
	var got models.PlatformStats
	_, err := s.cache.Get(ctx, "platform", &got)
	s.Error(err)
}
