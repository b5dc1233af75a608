package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels shared by the lifecycle and distribution counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// LifecycleMetrics counts delivery state transitions by action and outcome.
type LifecycleMetrics struct {
	transitions  *prometheus.CounterVec
	distribution *prometheus.CounterVec
}

func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_transitions_total",
		Help: "Delivery lifecycle operations by action and outcome.",
	}, []string{"action", "outcome"})
	distribution := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_distribution_items_total",
		Help: "Items processed by batch distribution by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, distribution)
	return &LifecycleMetrics{transitions: transitions, distribution: distribution}
}

func (m *LifecycleMetrics) ObserveTransition(action, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

func (m *LifecycleMetrics) ObserveDistribution(succeeded, failed int) {
	if m == nil || m.distribution == nil {
		return
	}
	m.distribution.WithLabelValues(OutcomeSuccess).Add(float64(succeeded))
	m.distribution.WithLabelValues(OutcomeRejected).Add(float64(failed))
}
