package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	derivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "patient_derivations_total",
			Help: "Total number of patient identifier derivations",
		},
	)

	visitsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visits_created_total",
			Help: "Total number of visits created",
		},
		[]string{"department"},
	)

	reportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Total number of daily reports generated",
		},
		[]string{"format"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath caps path label cardinality; patient and visit ids
// would otherwise produce one series per record.
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "PX-") {
			parts[i] = ":patient_id"
			continue
		}
		if _, err := strconv.Atoi(part); err == nil && part != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// --- Business metric helpers ---

// RecordLogin records a login attempt
func RecordLogin(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	loginsTotal.WithLabelValues(status).Inc()
}

// RecordDerivation records a patient identifier derivation
func RecordDerivation() {
	derivationsTotal.Inc()
}

// RecordVisitCreated records a visit creation
func RecordVisitCreated(department string) {
	visitsCreated.WithLabelValues(department).Inc()
}

// RecordReportGenerated records a daily report render
func RecordReportGenerated(format string) {
	reportsGenerated.WithLabelValues(format).Inc()
}
