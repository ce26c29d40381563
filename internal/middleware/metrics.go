package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
	MetricRateLimitChecks     = "rate_limit_checks_total"
	MetricRateLimitBlocked    = "rate_limit_blocked_total"
	MetricRateLimitErrors     = "rate_limit_store_errors_total"
)

// Metrics holds the Prometheus collectors used by the HTTP middleware.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	rateLimitChecks  *prometheus.CounterVec
	rateLimitBlocked *prometheus.CounterVec
	rateLimitErrors  prometheus.Counter
}

// NewMetrics creates the collectors. Call Register before serving traffic.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"method", "route", "status"},
		),
		rateLimitChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRateLimitChecks,
				Help: "Total number of rate limit checks by endpoint",
			},
			[]string{"endpoint"},
		),
		rateLimitBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRateLimitBlocked,
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),
		rateLimitErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRateLimitErrors,
				Help: "Total number of rate limit store errors (requests allowed through)",
			},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.rateLimitChecks,
		m.rateLimitBlocked,
		m.rateLimitErrors,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Instrument records a count and latency for every request. The route label
// is chi's matched pattern (e.g. /spots/{slug}) so slugs do not become labels.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.observe(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

func (m *Metrics) observe(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) incRateLimitChecks(endpoint string) {
	if m != nil {
		m.rateLimitChecks.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) incRateLimitBlocked(endpoint string) {
	if m != nil {
		m.rateLimitBlocked.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) incRateLimitErrors() {
	if m != nil {
		m.rateLimitErrors.Inc()
	}
}
