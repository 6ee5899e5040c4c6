// Package metrics exposes Prometheus instrumentation for rule execution.
// Every Collector owns its registry, so several engines (and tests) can live
// in one process without colliding on the default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for unit executions.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
	OutcomeTimeout = "timeout"
)

// Collector records rule unit executions and process invocations.
type Collector struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	processes  *prometheus.CounterVec
}

// New creates a Collector with its own registry. The Go runtime and process
// collectors are registered as well.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rulegrid",
			Name:      "unit_executions_total",
			Help:      "Rule unit executions by outcome.",
		}, []string{"unit", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rulegrid",
			Name:      "unit_duration_seconds",
			Help:      "Time spent inside a rule unit.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"unit"}),
		processes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rulegrid",
			Name:      "process_total",
			Help:      "Processed entities by task and variant.",
		}, []string{"task", "variant"}),
	}
	c.registry.MustRegister(
		c.executions,
		c.duration,
		c.processes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveUnit records one unit execution. A nil Collector is a no-op.
func (c *Collector) ObserveUnit(unit, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.executions.WithLabelValues(unit, outcome).Inc()
	c.duration.WithLabelValues(unit).Observe(elapsed.Seconds())
}

// ObserveProcess records one process invocation. A nil Collector is a no-op.
func (c *Collector) ObserveProcess(task, variant string) {
	if c == nil {
		return
	}
	c.processes.WithLabelValues(task, variant).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
