// Package observability exposes Prometheus metrics for the tool surface
// and the executor.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// Metrics holds all Prometheus metrics for QuerySculptor
type Metrics struct {
	toolCalls       *prometheus.CounterVec
	executions      *prometheus.CounterVec
	limitRejections *prometheus.CounterVec
	sessionsStarted prometheus.Counter
}

// GetMetrics returns the singleton metrics instance, registering the
// collectors on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			toolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "querysculptor_tool_calls_total",
				Help: "Total tool invocations by tool name and outcome",
			}, []string{"tool", "outcome"}),
			executions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "querysculptor_executions_total",
				Help: "Total upstream query executions by status",
			}, []string{"status"}),
			limitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "querysculptor_limit_rejections_total",
				Help: "Total requests rejected by a resource limit, by limit kind",
			}, []string{"kind"}),
			sessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "querysculptor_sessions_started_total",
				Help: "Total sessions started",
			}),
		}
	})
	return metricsInstance
}

// RecordToolCall counts one tool invocation.
func (m *Metrics) RecordToolCall(tool, outcome string) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordExecution counts one upstream execution.
func (m *Metrics) RecordExecution(status string) {
	m.executions.WithLabelValues(status).Inc()
}

// RecordLimitRejection counts one limit rejection.
func (m *Metrics) RecordLimitRejection(kind string) {
	m.limitRejections.WithLabelValues(kind).Inc()
}

// RecordSessionStarted counts one started session.
func (m *Metrics) RecordSessionStarted() {
	m.sessionsStarted.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
