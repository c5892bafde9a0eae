package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks notification dispatch and channel delivery.
type Metrics struct {
	Dispatched       *prometheus.CounterVec
	DispatchFailures *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_notifications_dispatched_total",
			Help: "Notifications persisted by type",
		}, []string{"type"}),
		DispatchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_notification_dispatch_failures_total",
			Help: "Notifications that could not be persisted or fanned out, by stage",
		}, []string{"stage"}),
		Deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_notification_deliveries_total",
			Help: "Channel deliveries by channel and outcome (ok, failed)",
		}, []string{"channel", "outcome"}),
	}
}

func (m *Metrics) IncrementDispatched(notificationType string) {
	m.Dispatched.WithLabelValues(notificationType).Inc()
}

func (m *Metrics) IncrementFailure(stage string) {
	m.DispatchFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveDelivery(channel string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
}
