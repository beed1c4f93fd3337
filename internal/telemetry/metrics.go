package telemetry

import (
	"net/http"
	"time"

	"github.com/HendryAvila/foreman/internal/cache"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeToolError = "tool_error"
	OutcomeError     = "error"
)

// Metrics holds the server's collectors on a private registry, so several
// servers (or tests) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	resolutions  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foreman_tool_calls_total",
			Help: "Tool calls by tool and outcome (ok, tool_error, error).",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foreman_tool_duration_seconds",
			Help:    "Tool call latency.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"tool"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foreman_resolutions_total",
			Help: "Name lookups by entity and outcome (unique, ambiguous, not_found).",
		}, []string{"entity", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foreman_cache_lookups_total",
			Help: "Display cache lookups by cache and result (hit, miss).",
		}, []string{"cache", "result"}),
	}
	m.registry.MustRegister(
		m.toolCalls, m.toolDuration, m.resolutions, m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTool records one finished tool call.
func (m *Metrics) ObserveTool(tool, outcome string, d time.Duration) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveResolution matches resolve.Observer.
func (m *Metrics) ObserveResolution(entity string, k resolve.Kind) {
	m.resolutions.WithLabelValues(entity, k.String()).Inc()
}

// ObserveCache matches the cache.WithObserver callback.
func (m *Metrics) ObserveCache(name string, r cache.Result) {
	m.cacheLookups.WithLabelValues(name, string(r)).Inc()
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
