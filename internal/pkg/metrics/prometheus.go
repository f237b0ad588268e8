package metrics

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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voznote",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Payment webhook metrics
	webhookTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "payment",
			Name:      "webhook_total",
			Help:      "Payment webhook deliveries by outcome",
		},
		[]string{"outcome"}, // upgraded, ignored, malformed, error
	)

	// Remote mirror metrics
	mirrorSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "mirror",
			Name:      "sync_total",
			Help:      "Remote mirror writes by entity and status",
		},
		[]string{"entity", "status"},
	)

	// Lifecycle evaluator metrics
	lifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Settings transitions applied by the lifecycle evaluator",
		},
		[]string{"transition"}, // expired, refilled
	)

	// Retention sweep metrics
	sweepDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "retention",
			Name:      "deleted_total",
			Help:      "Recordings deleted by the retention sweep",
		},
	)

	transcriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voznote",
			Subsystem: "ai",
			Name:      "transcriptions_total",
			Help:      "Transcription requests by status",
		},
		[]string{"status"},
	)
)

// RecordWebhook counts a webhook delivery outcome
func RecordWebhook(outcome string) {
	webhookTotal.WithLabelValues(outcome).Inc()
}

// RecordMirrorSync counts a remote mirror write
func RecordMirrorSync(entity, status string) {
	mirrorSyncTotal.WithLabelValues(entity, status).Inc()
}

// RecordLifecycleTransition counts an evaluator transition
func RecordLifecycleTransition(transition string) {
	lifecycleTransitions.WithLabelValues(transition).Inc()
}

// RecordSweepDeleted counts recordings removed by the retention sweep
func RecordSweepDeleted(n int) {
	sweepDeletedTotal.Add(float64(n))
}

// RecordTranscription counts a transcription attempt
func RecordTranscription(status string) {
	transcriptionsTotal.WithLabelValues(status).Inc()
}

// Handler returns the prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP requests with request count and duration
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// Use the chi route pattern so path cardinality stays bounded
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}

		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
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
