package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks the proof submission pipeline on the courier agent.
type SweepMetrics struct {
	entries  *prometheus.CounterVec
	submits  *prometheus.CounterVec
	duration prometheus.Histogram
	pending  prometheus.Gauge
}

func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proof_sweep_entries_total",
		Help: "Pending proofs handled by sweeps, by result (sent, failed, dropped).",
	}, []string{"result"})
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proof_submissions_total",
		Help: "Proof submissions by outcome (sent, queued).",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "proof_sweep_duration_seconds",
		Help:    "Duration of proof sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "proof_pending_entries",
		Help: "Entries left in the proof store after the last sweep.",
	})
	reg.MustRegister(entries, submits, duration, pending)
	return &SweepMetrics{entries: entries, submits: submits, duration: duration, pending: pending}
}

func (m *SweepMetrics) ObserveSweep(sent, failed, dropped, remaining int, d time.Duration) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.WithLabelValues("sent").Add(float64(sent))
	m.entries.WithLabelValues("failed").Add(float64(failed))
	m.entries.WithLabelValues("dropped").Add(float64(dropped))
	m.duration.Observe(d.Seconds())
	m.pending.Set(float64(remaining))
}

func (m *SweepMetrics) ObserveSubmit(outcome string) {
	if m == nil || m.submits == nil {
		return
	}
	m.submits.WithLabelValues(normalizeLabel(outcome)).Inc()
}
