package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds.
	latencyBuckets = []float64{
		1, 2, 5, 10, 25, // local detector work
		50, 100, 250, 500, // embedding round-trips
		1000, 2500, 5000, 15000, // judge round-trips
	}

	ComponentRunsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_component_runs_total",
			Help: "Total detector/checker invocations",
		},
		[]string{"side", "component"},
	)

	ComponentErrorsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_component_errors_total",
			Help: "Detector/checker invocations that failed and were isolated",
		},
		[]string{"side", "component"},
	)

	ComponentFiredTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_component_fired_total",
			Help: "Detector/checker invocations that detected something",
		},
		[]string{"side", "component", "category"},
	)

	GateDecisionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_gate_decisions_total",
			Help: "Gate verdicts by gate and decision",
		},
		[]string{"gate", "decision"},
	)

	GateLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_gate_latency_ms",
			Help:    "Gate latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"gate"},
	)

	ProviderCallsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_provider_calls_total",
			Help: "External provider calls by provider and status",
		},
		[]string{"provider", "status"},
	)
)

// Handler exposes the sentinel metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
