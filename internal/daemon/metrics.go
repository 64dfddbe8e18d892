package daemon

import (
	"github.com/prometheus/client_golang/prometheus"

	"amberpipe/internal/history"
	"amberpipe/internal/workflow"
)

// Metrics tracks run outcomes and gate occupancy. It implements
// workflow.Observer and registers on its own registry so the daemon's
// /metrics endpoint never collides with ambient collectors.
type Metrics struct {
	registry  *prometheus.Registry
	processed *prometheus.CounterVec
	failed    prometheus.Counter
}

// NewMetrics builds the collector set bound to the given manager.
func NewMetrics(manager *workflow.Manager) *Metrics {
	registry := prometheus.NewRegistry()

	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amberpipe_assets_processed_total",
		Help: "Assets that completed processing, by category.",
	}, []string{"category"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "amberpipe_assets_failed_total",
		Help: "Assets whose run ended in a failed status.",
	})
	gateRunning := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "amberpipe_gate_running",
		Help: "Runs currently admitted by the concurrency gate.",
	}, func() float64 {
		return float64(manager.BatchConfig().Running)
	})
	gateLimit := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "amberpipe_gate_limit",
		Help: "Current concurrency bound.",
	}, func() float64 {
		return float64(manager.BatchConfig().Limit)
	})

	registry.MustRegister(processed, failed, gateRunning, gateLimit)
	return &Metrics{registry: registry, processed: processed, failed: failed}
}

// Registry returns the daemon's metrics registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RunCompleted implements workflow.Observer.
func (m *Metrics) RunCompleted(run *history.Run) {
	m.processed.WithLabelValues(run.Category).Inc()
}

// RunFailed implements workflow.Observer.
func (m *Metrics) RunFailed(*history.Run) {
	m.failed.Inc()
}
