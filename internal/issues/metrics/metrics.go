package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the issue lifecycle: reports, community verification,
// NGO claims and crisis activations.
type Metrics struct {
	IssuesCreated      prometheus.Counter
	Verifications      *prometheus.CounterVec
	Promotions         prometheus.Counter
	Claims             *prometheus.CounterVec
	CrisisActivations  prometheus.Counter
	CrisisIssuesMarked prometheus.Counter
	MutationDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		IssuesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_issues_created_total",
			Help: "Total number of issues reported",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_issue_verifications_total",
			Help: "Verification toggles by action (added, removed)",
		}, []string{"action"}),
		Promotions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_issues_promoted_total",
			Help: "Issues promoted from pending to verified by community verification",
		}),
		Claims: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiclink_issue_claims_total",
			Help: "NGO claim attempts by outcome (claimed, conflict, rejected)",
		}, []string{"outcome"}),
		CrisisActivations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_crisis_activations_total",
			Help: "Total number of crisis activations",
		}),
		CrisisIssuesMarked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_crisis_issues_marked_total",
			Help: "Issues flagged as crisis by bulk activation",
		}),
		MutationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civiclink_issue_mutation_duration_seconds",
			Help:    "Duration of issue mutations by operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.IssuesCreated.Inc()
}

// ObserveVerification records a toggle and, when promoted, the promotion.
func (m *Metrics) ObserveVerification(added, promoted bool) {
	action := "removed"
	if added {
		action = "added"
	}
	m.Verifications.WithLabelValues(action).Inc()
	if promoted {
		m.Promotions.Inc()
	}
}

func (m *Metrics) IncrementClaim(outcome string) {
	m.Claims.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCrisis(affected int) {
	m.CrisisActivations.Inc()
	m.CrisisIssuesMarked.Add(float64(affected))
}

// ObserveMutation records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMutation(op string, start time.Time) {
	m.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
