// Package metrics exposes prometheus instrumentation for the booking
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "evcharge_"

var (
	// BookingsCreated counts accepted booking create requests.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "bookings_created_total",
		Help: "Bookings accepted by the engine",
	})

	// BookingConflicts counts creates rejected by the interval
	// conflict scan.
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "booking_conflicts_total",
		Help: "Booking requests rejected because the slot was taken",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "http_requests_total",
		Help: "HTTP requests by method and status",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    prefix + "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.Observe(time.Since(start).Seconds())
	})
}
