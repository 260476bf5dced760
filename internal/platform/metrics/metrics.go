package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	UsersCreated   prometheus.Counter
}

// New creates and registers all platform metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enroll_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enroll_users_created_total",
			Help: "Total number of users created in the system",
		}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}
