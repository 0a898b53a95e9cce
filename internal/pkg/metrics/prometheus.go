// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all prometheus metrics. Each instance owns its registry, so
// several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RouteOptimizations  *prometheus.CounterVec
	OptimizedDistanceKm prometheus.Histogram
	StopTransitions     *prometheus.CounterVec
	OtpVerifications    *prometheus.CounterVec
	ScheduledRuns       *prometheus.CounterVec
	CommittedWrites     *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace, plus the Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RouteOptimizations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_optimizations_total",
			Help:      "Route optimisation and reorder requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		OptimizedDistanceKm: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimized_route_distance_km",
			Help:      "Total distance of optimised routes",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		StopTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stop_transitions_total",
			Help:      "Stop lifecycle events by event and outcome",
		}, []string{"event", "outcome"}),
		OtpVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by result",
		}, []string{"result"}),
		ScheduledRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_optimization_routes_total",
			Help:      "Routes handled by the scheduled optimisation job by result",
		}, []string{"result"}),
		CommittedWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "committed_aggregate_writes_total",
			Help:      "Aggregate writes made durable by a committed transaction, by aggregate",
		}, []string{"aggregate"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry returns the registry the collectors are registered in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
