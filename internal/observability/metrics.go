package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carpool"

// Metrics holds the prometheus instruments for the service. Instances are
// bound to a registry so tests can build isolated ones.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	SearchesTotal        prometheus.Counter
	SearchResults        prometheus.Histogram
	SignupsTotal         prometheus.Counter
	SignupConflictsTotal prometheus.Counter
	GeometryFailures     prometheus.Counter
}

// New creates the service metrics on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SearchesTotal: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "searches_total", Help: "Total proximity searches executed"},
		),
		SearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results",
				Help:      "Number of routes returned per search",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
		SignupsTotal: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "ride_signups_total", Help: "Total successful ride signups"},
		),
		SignupConflictsTotal: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "ride_signup_conflicts_total", Help: "Ride signups rejected by business rules"},
		),
		GeometryFailures: factory.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "directions_extraction_failures_total", Help: "Route creations whose directions payload yielded no coordinates"},
		),
	}
}

// ObserveRequest records one handled HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, latency time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(latency.Seconds())
}
