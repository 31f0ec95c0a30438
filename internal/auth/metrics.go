// metrics.go -- Prometheus instrumentation for redirects, callbacks, and upstream stages.
package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MGallo-Code/hermes/internal/oauth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// outcomeOK labels a successful callback; failures are labelled with their stage.
const outcomeOK = "ok"

// Metrics holds the relay's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	redirectsTotal   *prometheus.CounterVec
	callbacksTotal   *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	requestsDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Use a fresh prometheus.NewRegistry() per server; tests do.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		redirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_oauth_redirects_total",
			Help: "Browsers sent to a provider consent page",
		}, []string{"provider"}),
		callbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_oauth_callbacks_total",
			Help: "Callbacks handled, by outcome (ok or the failed stage)",
		}, []string{"provider", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hermes_oauth_upstream_duration_seconds",
			Help:    "Latency of upstream provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "stage", "result"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "status"}),
		requestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hermes_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		m.redirectsTotal,
		m.callbacksTotal,
		m.stageDuration,
		m.requestsTotal,
		m.requestsDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

// Handler serves the exposition format for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveStage records one upstream call. Satisfies oauth.StageObserver.
func (m *Metrics) ObserveStage(p oauth.ID, stage oauth.Stage, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stageDuration.WithLabelValues(string(p), string(stage), result).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRedirect(p oauth.ID) {
	if m == nil {
		return
	}
	m.redirectsTotal.WithLabelValues(string(p)).Inc()
}

func (m *Metrics) observeCallback(p oauth.ID, outcome string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(string(p), outcome).Inc()
}

// Middleware counts requests and their latency, labelled by the chi route
// pattern so /{provider}/auth stays one series per pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestsDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
