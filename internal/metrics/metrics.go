package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the solve service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts solve runs by final status.
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solves_total", Help: "Solve runs by status."},
		[]string{"status"},
	)
	// SolveDuration tracks wall-clock solve time in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solve duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60}},
	)
	// Generations counts generational-loop iterations across all solves.
	Generations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solve_generations_total", Help: "Generations evaluated across all solves."},
	)
	// BestCost reports the best fitness of the most recent completed solve.
	BestCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solve_best_cost", Help: "Best cost of the last completed solve."},
	)
	// webhookDeliveries counts terminal webhook delivery outcomes.
	webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by outcome."},
		[]string{"outcome"},
	)
)

// WebhookDeliveries records a terminal webhook delivery outcome.
func WebhookDeliveries(outcome string) {
	webhookDeliveries.WithLabelValues(outcome).Inc()
}

// RegisterDefault registers collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(Generations)
		Registry.MustRegister(BestCost)
		Registry.MustRegister(webhookDeliveries)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
