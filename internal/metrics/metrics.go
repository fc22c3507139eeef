// Package metrics exposes chat counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	iterations prometheus.Histogram
	toolCalls  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat runs by provider and outcome.",
		}, []string{"provider", "outcome"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_iterations",
			Help:    "Model calls per chat run.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_tool_calls_total",
			Help: "Tool invocations requested by the model.",
		}, []string{"tool"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_request_duration_seconds",
			Help:    "Wall time of a chat run.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"provider"}),
	}
	reg.MustRegister(
		m.requests,
		m.iterations,
		m.toolCalls,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records one finished chat run. A nil receiver is a no-op.
func (m *Metrics) ObserveRun(provider, outcome string, iterations int, tools []string, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, outcome).Inc()
	m.iterations.Observe(float64(iterations))
	for _, t := range tools {
		m.toolCalls.WithLabelValues(t).Inc()
	}
	m.duration.WithLabelValues(provider).Observe(took.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
