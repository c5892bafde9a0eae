package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CIVICLINK_ENV", "dev")
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("MIN_VERIFICATION_COUNT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, devJWTSigningKey, cfg.Auth.JWTSigningKey)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Issues.MinVerificationCount)
	assert.False(t, cfg.Issues.KeywordTagging)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Stats.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Kafka.DeliveryTimeout)
	assert.Equal(t, 3*time.Second, cfg.Notifications.DeliveryTimeout)
	assert.Equal(t, 60, cfg.RateLimit.PerMinute)
	assert.Equal(t, 1000, cfg.RateLimit.PerHour)
	assert.Equal(t, 5, cfg.RateLimit.LoginMaxFailures)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CIVICLINK_ENV", "production")
	t.Setenv("JWT_SIGNING_KEY", "prod-key")
	t.Setenv("MIN_VERIFICATION_COUNT", "5")
	t.Setenv("ISSUE_KEYWORD_TAGGING", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STATS_CACHE_TTL", "90s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Issues.MinVerificationCount)
	assert.True(t, cfg.Issues.KeywordTagging)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Stats.CacheTTL)
}

func TestFromEnvRequiresSigningKeyOutsideDev(t *testing.T) {
	t.Setenv("CIVICLINK_ENV", "production")
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestValidateRejectsZeroThreshold(t *testing.T) {
	cfg := Server{
		Auth:   AuthConfig{JWTSigningKey: "k", TokenTTL: time.Hour},
		Issues: IssuesConfig{MinVerificationCount: 0},
	}
	require.Error(t, cfg.Validate())
}

func TestValidateRateLimits(t *testing.T) {
	base := Server{
		Auth:   AuthConfig{JWTSigningKey: "k", TokenTTL: time.Hour},
		Issues: IssuesConfig{MinVerificationCount: 3},
	}

	tests := []struct {
		name    string
		limits  RateLimitConfig
		wantErr bool
	}{
		{name: "defaults", limits: RateLimitConfig{PerMinute: 60, PerHour: 1000}},
		{name: "zero per minute", limits: RateLimitConfig{PerMinute: 0, PerHour: 1000}, wantErr: true},
		{name: "hour below minute", limits: RateLimitConfig{PerMinute: 60, PerHour: 30}, wantErr: true},
		{name: "disabled ignores values", limits: RateLimitConfig{Disabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.RateLimit = tt.limits
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
