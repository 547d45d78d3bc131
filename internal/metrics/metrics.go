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
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	inquiriesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiries_created_total",
			Help: "Inquiries created, by origin",
		},
		[]string{"origin"}, // contact_form, manual
	)

	statusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_status_changes_total",
			Help: "Inquiry status updates, by destination status",
		},
		[]string{"status"},
	)

	repliesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_replies_total",
			Help: "Outbound replies, by result",
		},
		[]string{"result"}, // sent, failed
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_attempts_total",
			Help: "Admin sign-in attempts, by result",
		},
		[]string{"result"}, // success, invalid, not_allowed
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by chi route pattern,
// which keeps label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordInquiryCreated(origin string) {
	inquiriesCreatedTotal.WithLabelValues(origin).Inc()
}

func RecordStatusChange(status string) {
	statusChangesTotal.WithLabelValues(status).Inc()
}

func RecordReply(sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	repliesSentTotal.WithLabelValues(result).Inc()
}

func RecordAuthAttempt(result string) {
	authAttemptsTotal.WithLabelValues(result).Inc()
}
