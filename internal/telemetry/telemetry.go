// Package telemetry exposes Prometheus collectors and HTTP middleware
// for the submission service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchping_webhook_events_total",
			Help: "Total number of webhook events processed, labeled by topic kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	providerSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchping_provider_submissions_total",
			Help: "Total number of provider submissions, labeled by provider and result.",
		},
		[]string{"provider", "result"},
	)

	providerSubmissionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchping_provider_submission_duration_seconds",
			Help:    "Histogram of provider submission latencies, labeled by provider.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)

	heartbeatRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchping_heartbeat_runs_total",
			Help: "Total number of heartbeat firings, labeled by result.",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns the standard Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}
		ObserveHTTPRequest(r.Method, routePattern, ww.statusCode, time.Since(start))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// ObserveEvent records the terminal outcome of one webhook event.
func ObserveEvent(kind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	webhookEventsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveSubmission records one provider submission attempt.
func ObserveSubmission(provider, result string, duration time.Duration) {
	providerSubmissionsTotal.WithLabelValues(provider, result).Inc()
	providerSubmissionDurationSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveHeartbeat records one heartbeat firing.
func ObserveHeartbeat(result string) {
	heartbeatRunsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records metrics for an HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
