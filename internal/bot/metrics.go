package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the chat surface itself; backend call metrics live in
// internal/metrics.
type Metrics struct {
	UpdateProcessingTime prometheus.Histogram
	CommandsProcessed    *prometheus.CounterVec
	BookingsMutated      *prometheus.CounterVec
	ReviewsSubmitted     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediadesk",
			Subsystem: "bot",
			Name:      "update_processing_seconds",
			Help:      "Time spent processing a single Telegram update.",
			Buckets:   prometheus.DefBuckets,
		}),
		CommandsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediadesk",
			Subsystem: "bot",
			Name:      "commands_processed_total",
			Help:      "Commands processed, by command name.",
		}, []string{"command"}),
		BookingsMutated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediadesk",
			Subsystem: "bot",
			Name:      "bookings_mutated_total",
			Help:      "Booking mutations performed through the desk, by action.",
		}, []string{"action"}),
		ReviewsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mediadesk",
			Subsystem: "bot",
			Name:      "reviews_submitted_total",
			Help:      "Reviews submitted through the bot.",
		}),
	}
}
