// Package observability exposes Prometheus metrics for the API and the composer.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdocs/internal/core/numerator"
	"salesdocs/internal/domain/documents"
)

// Metrics holds the registry and every collector of the process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	composed        *prometheus.CounterVec
	burned          *prometheus.CounterVec
}

var _ documents.Metrics = (*Metrics)(nil)

// NewMetrics initializes the registry with process, Go runtime and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdocs_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salesdocs_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	composed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdocs_documents_composed_total",
		Help: "Compose and promote outcomes by document status.",
	}, []string{"status", "outcome"})
	burned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdocs_sequences_burned_total",
		Help: "Allocated document codes that were never stored.",
	}, []string{"kind"})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requests, duration, composed, burned,
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		composed:        composed,
		burned:          burned,
	}
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Gatherer exposes the registry for tests and push gateways.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// DocumentComposed implements documents.Metrics.
func (m *Metrics) DocumentComposed(status documents.Status, outcome documents.Outcome) {
	m.composed.WithLabelValues(string(status), string(outcome)).Inc()
}

// SequenceBurned implements documents.Metrics.
func (m *Metrics) SequenceBurned(kind numerator.Kind) {
	m.burned.WithLabelValues(string(kind)).Inc()
}
