// Package observability provides Prometheus metrics for the HTTP layer
// and the permission evaluator.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opsvista"

// Metrics holds every collector the platform exports. Collectors are
// registered on a private registry so tests can build isolated
// instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	RBACCacheHitsTotal   prometheus.Counter
	RBACCacheMissesTotal prometheus.Counter
	RBACEvaluationsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"path", "method", "status"},
		),
		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		RBACCacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rbac",
				Name:      "decision_cache_hits_total",
				Help:      "Permission decisions served from cache",
			},
		),
		RBACCacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rbac",
				Name:      "decision_cache_misses_total",
				Help:      "Permission decisions evaluated fresh",
			},
		),
		RBACEvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rbac",
				Name:      "evaluations_total",
				Help:      "Permission check outcomes",
			},
			[]string{"outcome"},
		),
	}
}

// RecordCacheHit implements rbac.Metrics.
func (m *Metrics) RecordCacheHit() { m.RBACCacheHitsTotal.Inc() }

// RecordCacheMiss implements rbac.Metrics.
func (m *Metrics) RecordCacheMiss() { m.RBACCacheMissesTotal.Inc() }

// RecordEvaluation implements rbac.Metrics.
func (m *Metrics) RecordEvaluation(granted bool) {
	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	m.RBACEvaluationsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request counts and latency per route pattern.
// The chi route pattern is used rather than the raw path to keep label
// cardinality bounded.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		m.RequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.RequestDurationSeconds.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
