// Package metrics exposes Prometheus metrics for checks and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration prometheus.Histogram

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pickle_checks_total",
				Help: "Pickle checks by outcome (yes, no, upstream_error, unexpected_error)",
			},
			[]string{"outcome"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pickle_check_duration_seconds",
				Help:    "Time spent in a pickle check including the provider call",
				Buckets: prometheus.DefBuckets,
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pickle_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pickle_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// ObserveCheck records one finished check.
func (m *Metrics) ObserveCheck(outcome string, d time.Duration) {
	m.checksTotal.WithLabelValues(outcome).Inc()
	m.checkDuration.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so item values never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
