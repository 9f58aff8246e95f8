package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediadesk",
			Name:      "backend_requests_total",
			Help:      "Backend REST requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	exportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mediadesk",
			Name:      "exports_total",
			Help:      "Completed-bookings export documents produced.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(backendRequests, exportsTotal)
	})
}

// IncBackend increments the request counter for an endpoint/outcome pair.
func IncBackend(endpoint, outcome string) {
	backendRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncExport increments the export counter.
func IncExport() {
	exportsTotal.Inc()
}
