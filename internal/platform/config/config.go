package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSigningKey = "dev-secret-key-change-in-production"

// Server captures process-level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	Auth          AuthConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Issues        IssuesConfig
	Stats         StatsConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
	Bootstrap     BootstrapConfig
}

type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	TokenTTL      time.Duration
}

// DatabaseConfig selects PostgreSQL persistence when URL is set;
// otherwise stores run in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the public statistics cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the notification event stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	ClientID          string
	// DeliveryTimeout fails a record that the broker has not acknowledged in time.
	DeliveryTimeout   time.Duration
}

type IssuesConfig struct {
	MinVerificationCount int
	KeywordTagging       bool
}

type StatsConfig struct {
	CacheTTL time.Duration
}

// NotificationsConfig bounds each channel delivery made while handling a request.
type NotificationsConfig struct {
	DeliveryTimeout time.Duration
}

// RateLimitConfig sets the per-client request allowances. Counters live in
// Redis when it is configured, in process memory otherwise.
type RateLimitConfig struct {
	Disabled           bool
	PerMinute          int
	PerHour            int
	LoginMaxFailures   int
	LoginLockout       time.Duration
	LoginFailureWindow time.Duration
}

// BootstrapConfig seeds a first admin account on startup.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// IsDev reports whether the process runs in development mode.
func (s Server) IsDev() bool {
	return s.Environment == "" || s.Environment == "dev" || s.Environment == "development"
}

// FromEnv builds a Server config from environment variables, loading a .env
// file first when one is present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:        fallback(os.Getenv("CIVICLINK_ADDR"), ":8080"),
		Environment: fallback(os.Getenv("CIVICLINK_ENV"), "dev"),
		LogLevel:    fallback(os.Getenv("LOG_LEVEL"), "info"),
		Auth: AuthConfig{
			JWTSigningKey: strings.TrimSpace(os.Getenv("JWT_SIGNING_KEY")),
			Issuer:        fallback(os.Getenv("JWT_ISSUER"), "civiclink"),
			TokenTTL:      durationEnv("JWT_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			URL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
			MaxOpenConns:    intEnv("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intEnv("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationEnv("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           parseCSV(os.Getenv("KAFKA_BROKERS")),
			NotificationTopic: fallback(os.Getenv("KAFKA_NOTIFICATION_TOPIC"), "civiclink.notifications"),
			ClientID:          fallback(os.Getenv("KAFKA_CLIENT_ID"), "civiclink"),
			DeliveryTimeout:   durationEnv("KAFKA_DELIVERY_TIMEOUT", 5*time.Second),
		},
		Issues: IssuesConfig{
			MinVerificationCount: intEnv("MIN_VERIFICATION_COUNT", 3),
			KeywordTagging:       os.Getenv("ISSUE_KEYWORD_TAGGING") == "true",
		},
		Stats: StatsConfig{
			CacheTTL: durationEnv("STATS_CACHE_TTL", 5*time.Minute),
		},
		Notifications: NotificationsConfig{
			DeliveryTimeout: durationEnv("NOTIFICATION_DELIVERY_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			Disabled:           os.Getenv("RATE_LIMIT_DISABLED") == "true",
			PerMinute:          intEnv("RATE_LIMIT_PER_MINUTE", 60),
			PerHour:            intEnv("RATE_LIMIT_PER_HOUR", 1000),
			LoginMaxFailures:   intEnv("LOGIN_MAX_FAILURES", 5),
			LoginLockout:       durationEnv("LOGIN_LOCKOUT", 15*time.Minute),
			LoginFailureWindow: durationEnv("LOGIN_FAILURE_WINDOW", 15*time.Minute),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
			AdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}

	if cfg.Auth.JWTSigningKey == "" && cfg.IsDev() {
		cfg.Auth.JWTSigningKey = devJWTSigningKey
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks the invariants main relies on.
func (s Server) Validate() error {
	if s.Auth.JWTSigningKey == "" {
		return errors.New("JWT_SIGNING_KEY is required outside dev")
	}
	if !s.IsDev() && s.Auth.JWTSigningKey == devJWTSigningKey {
		return errors.New("JWT_SIGNING_KEY must not use the development default")
	}
	if s.Issues.MinVerificationCount < 1 {
		return errors.New("MIN_VERIFICATION_COUNT must be at least 1")
	}
	if s.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if !s.RateLimit.Disabled && (s.RateLimit.PerMinute < 1 || s.RateLimit.PerHour < s.RateLimit.PerMinute) {
		return errors.New("RATE_LIMIT_PER_HOUR must be at least RATE_LIMIT_PER_MINUTE, which must be positive")
	}
	return nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intEnv(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
