package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks refused requests and login lockouts.
type Metrics struct {
	Rejections    *prometheus.CounterVec
	LoginFailures prometheus.Counter
	LoginLockouts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_ratelimit_rejections_total",
			Help: "Requests refused by the rate limiter, by subject kind (ip, user)",
		}, []string{"subject"}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_ratelimit_login_failures_total",
			Help: "Failed logins recorded for lockout",
		}),
		LoginLockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_ratelimit_login_lockouts_total",
			Help: "Email and address pairs locked out after repeated failed logins",
		}),
	}
}

func (m *Metrics) IncrementRejections(subject string) {
	m.Rejections.WithLabelValues(subject).Inc()
}

func (m *Metrics) IncrementLoginFailures() {
	m.LoginFailures.Inc()
}

func (m *Metrics) IncrementLoginLockouts() {
	m.LoginLockouts.Inc()
}
