package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the registration feature.
type Metrics struct {
	Registered prometheus.Counter
	Rejected   *prometheus.CounterVec
	Replayed   prometheus.Counter
}

// New creates and registers the registration metrics.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enroll_registrations_total",
			Help: "Total number of successful registrations",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_registrations_rejected_total",
			Help: "Registrations rejected, by pipeline stage",
		}, []string{"stage"}),
		Replayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enroll_registrations_replayed_total",
			Help: "Registrations answered from the idempotency replay store",
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.Registered.Inc()
	}
}

func (m *Metrics) IncrementRejected(stage string) {
	if m != nil {
		m.Rejected.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementReplayed() {
	if m != nil {
		m.Replayed.Inc()
	}
}
