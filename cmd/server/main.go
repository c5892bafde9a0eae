package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	issuehandler "civiclink/internal/issues/handler"
	issuemetrics "civiclink/internal/issues/metrics"
	issueservice "civiclink/internal/issues/service"
	jwttoken "civiclink/internal/jwt_token"
	ministryhandler "civiclink/internal/ministry/handler"
	ministryservice "civiclink/internal/ministry/service"
	ngohandler "civiclink/internal/ngo/handler"
	ngoservice "civiclink/internal/ngo/service"
	"civiclink/internal/notifications/channels"
	notifhandler "civiclink/internal/notifications/handler"
	notifmetrics "civiclink/internal/notifications/metrics"
	notifservice "civiclink/internal/notifications/service"
	"civiclink/internal/performance/cache"
	perfhandler "civiclink/internal/performance/handler"
	perfmetrics "civiclink/internal/performance/metrics"
	perfservice "civiclink/internal/performance/service"
	"civiclink/internal/platform/config"
	"civiclink/internal/platform/httpserver"
	"civiclink/internal/platform/kafka"
	"civiclink/internal/platform/logger"
	"civiclink/internal/platform/metrics"
	"civiclink/internal/platform/middleware"
	platformredis "civiclink/internal/platform/redis"
	ratelimitmetrics "civiclink/internal/ratelimit/metrics"
	ratelimitmw "civiclink/internal/ratelimit/middleware"
	ratelimitmodels "civiclink/internal/ratelimit/models"
	"civiclink/internal/ratelimit/service/authlockout"
	"civiclink/internal/ratelimit/service/requestlimit"
	"civiclink/internal/ratelimit/store/bucket"
	"civiclink/internal/ratelimit/store/lockout"
	userhandler "civiclink/internal/users/handler"
	userservice "civiclink/internal/users/service"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/platform/middleware/metadata"
	"civiclink/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// main wires stores, services and handlers and owns the server lifecycle.
// Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.New(ctx, cfg.Kafka, log, cfg.Kafka.NotificationTopic)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close(context.WithoutCancel(ctx))
	}

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	limiter, loginGuard := newRateLimiting(cfg.RateLimit, redisClient, ratelimitmetrics.New(), log)
	userOpts := []userservice.Option{
		userservice.WithLogger(log),
		userservice.WithTokenTTL(cfg.Auth.TokenTTL),
		userservice.WithMetrics(m),
	}
	if loginGuard != nil {
		userOpts = append(userOpts, userservice.WithLoginGuard(loginGuard))
	}
	users := userservice.New(st.users, jwtService, userOpts...)

	notifChannels := []notifservice.Channel{channels.NewPush(log), channels.NewEmail(log), channels.NewSMS(log)}
	if producer != nil {
		notifChannels = append(notifChannels, channels.NewEventStream(producer, cfg.Kafka.NotificationTopic))
	}
	notifications := notifservice.New(st.notifications, st.ministries, st.ngos,
		notifservice.WithLogger(log),
		notifservice.WithMetrics(notifmetrics.New()),
		notifservice.WithChannels(notifChannels...),
		notifservice.WithDeliveryTimeout(cfg.Notifications.DeliveryTimeout),
	)

	perfOpts := []perfservice.Option{
		perfservice.WithLogger(log),
		perfservice.WithMetrics(perfmetrics.New()),
	}
	if redisClient != nil {
		perfOpts = append(perfOpts, perfservice.WithCache(cache.NewRedis(redisClient.Client), cfg.Stats.CacheTTL))
	}
	performance := perfservice.New(st.issues, st.ministries, st.ngos, st.users, perfOpts...)

	ministries := ministryservice.New(st.ministries, st.issues, users, ministryservice.WithLogger(log))
	ngos := ngoservice.New(st.ngos, users, st.issues,
		ngoservice.WithLogger(log),
		ngoservice.WithNotifier(notifications),
	)
	issues := issueservice.New(st.issues, ministries, st.ngos,
		issueservice.WithLogger(log),
		issueservice.WithMetrics(issuemetrics.New()),
		issueservice.WithNotifier(notifications),
		issueservice.WithStatsRecomputer(performance),
		issueservice.WithMinistryLookup(st.ministries),
		issueservice.WithMinVerifications(cfg.Issues.MinVerificationCount),
		issueservice.WithKeywordTagging(cfg.Issues.KeywordTagging),
	)

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := users.BootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.InfoContext(ctx, "bootstrap admin created", "email", cfg.Bootstrap.AdminEmail)
		}
	}

	validator := jwttoken.NewJWTServiceAdapter(jwtService)
	userH := userhandler.New(users, log)
	issueH := issuehandler.New(issues, log)
	ministryH := ministryhandler.New(ministries, log)
	ngoH := ngohandler.New(ngos, log)
	notifH := notifhandler.New(notifications, log)
	perfH := perfhandler.New(performance, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/health", healthHandler(st, redisClient, producer))
	r.Handle("/metrics", promhttp.Handler())

	rateLimit := ratelimitmw.New(limiter, log, ratelimitmw.WithDisabled(cfg.RateLimit.Disabled))

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(validator, users, log))
		r.Use(rateLimit.RateLimit)
		userH.RegisterPublic(r)
		issueH.RegisterPublic(r)
		ministryH.RegisterPublic(r)
		ngoH.RegisterPublic(r)
		perfH.RegisterPublic(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, users, log))
		r.Use(rateLimit.RateLimit)
		userH.Register(r)
		issueH.Register(r)
		ministryH.Register(r)
		ngoH.Register(r)
		notifH.Register(r)
		perfH.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting civiclink", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRateLimiting builds the request limiter and the login lockout, sharing
// counters through Redis when it is configured. The lockout is nil when rate
// limiting is disabled.
func newRateLimiting(cfg config.RateLimitConfig, redisClient *platformredis.Client, m *ratelimitmetrics.Metrics, log *slog.Logger) (*requestlimit.Service, *authlockout.Service) {
	var (
		buckets  requestlimit.Store = bucket.NewInMemory()
		lockouts authlockout.Store  = lockout.NewInMemory()
	)
	if redisClient != nil {
		buckets = bucket.NewRedis(redisClient.Client)
		lockouts = lockout.NewRedis(redisClient.Client)
	}
	limiter := requestlimit.New(buckets, []ratelimitmodels.Window{
		{Limit: cfg.PerMinute, Period: time.Minute},
		{Limit: cfg.PerHour, Period: time.Hour},
	}, requestlimit.WithLogger(log), requestlimit.WithMetrics(m))
	if cfg.Disabled {
		return limiter, nil
	}
	guard := authlockout.New(lockouts,
		authlockout.WithLogger(log),
		authlockout.WithMetrics(m),
		authlockout.WithConfig(authlockout.Config{
			MaxFailures: cfg.LoginMaxFailures,
			Window:      cfg.LoginFailureWindow,
			Lockout:     cfg.LoginLockout,
		}),
	)
	return limiter, guard
}

func healthHandler(st *stores, redisClient *platformredis.Client, producer *kafka.Producer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		healthy := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				return
			}
			checks[name] = "ok"
		}
		record("store", st.health(r.Context()))
		if redisClient != nil {
			record("redis", redisClient.Health(r.Context()))
		}
		if producer != nil {
			record("kafka", producer.Health(r.Context()))
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
