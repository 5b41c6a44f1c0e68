// Package metrics exposes Prometheus collectors for the layout engine and
// the HTTP surface. Collectors are registered on the default registry via
// promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts simulation ticks across all sessions.
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pivotgraph_ticks_total",
			Help: "Total number of simulation ticks run",
		},
	)

	// TickDuration measures one tick: shortest paths plus all forces.
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pivotgraph_tick_duration_seconds",
			Help:    "Duration of a single simulation tick in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.025, 0.05, 0.1},
		},
	)

	// SimulatedNodes tracks the node count of the most recent tick.
	SimulatedNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pivotgraph_simulated_nodes",
			Help: "Number of nodes in the most recently ticked simulation",
		},
	)

	// ResetsTotal counts layout resets, labeled by reason.
	ResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pivotgraph_resets_total",
			Help: "Total number of layout resets",
		},
		[]string{"reason"},
	)

	// ActiveSessions tracks live server sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pivotgraph_active_sessions",
			Help: "Number of live layout sessions",
		},
	)

	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pivotgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures handler latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pivotgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "route"},
	)
)

// SimulationHooks reports simulation events to the collectors above. It
// satisfies physics.Hooks.
type SimulationHooks struct{}

// OnTick records one tick.
func (SimulationHooks) OnTick(nodes, _ int, d time.Duration) {
	TicksTotal.Inc()
	TickDuration.Observe(d.Seconds())
	SimulatedNodes.Set(float64(nodes))
}

// OnReset records a layout reset.
func (SimulationHooks) OnReset(reason string) {
	ResetsTotal.WithLabelValues(reason).Inc()
}
