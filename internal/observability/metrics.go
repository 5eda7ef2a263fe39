package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring service.
type Metrics struct {
	ReadingsIngested prometheus.Counter
	FeedSubscribers  prometheus.Gauge
	FeedPublishes    prometheus.Counter

	// Prediction client metrics.
	PredictionRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	PredictionDuration *prometheus.HistogramVec // labels: endpoint
	StaleDropped       *prometheus.CounterVec   // labels: endpoint
}

const namespace = "water_quality"

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsIngested,
		m.FeedSubscribers,
		m.FeedPublishes,
		m.PredictionRequests,
		m.PredictionDuration,
		m.StaleDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_ingested_total",
			Help:      "Total sensor readings written to the store.",
		}),
		FeedSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Active realtime feed subscriptions.",
		}),
		FeedPublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_publishes_total",
			Help:      "Snapshots published to the realtime feed.",
		}),
		PredictionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_requests_total",
			Help:      "Prediction API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_request_duration_seconds",
			Help:      "Prediction API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		StaleDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_prediction_responses_dropped_total",
			Help:      "Prediction responses discarded because a newer request superseded them.",
		}, []string{"endpoint"}),
	}
}
