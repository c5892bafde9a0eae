package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks statistic recomputes and report cache effectiveness.
type Metrics struct {
	Recomputes        *prometheus.CounterVec
	RecomputeDuration *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Recomputes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_stats_recomputes_total",
			Help: "Statistic recomputes by subject (ministry, ngo) and outcome (ok, error)",
		}, []string{"subject", "outcome"}),
		RecomputeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civiclink_stats_recompute_duration_seconds",
			Help:    "Duration of statistic recomputes by subject",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"subject"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_stats_cache_lookups_total",
			Help: "Report cache lookups by report and result (hit, miss, error)",
		}, []string{"report", "result"}),
	}
}

func (m *Metrics) ObserveRecompute(subject string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Recomputes.WithLabelValues(subject, outcome).Inc()
	m.RecomputeDuration.WithLabelValues(subject).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCache(report, result string) {
	m.CacheLookups.WithLabelValues(report, result).Inc()
}
