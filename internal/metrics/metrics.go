package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threads",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "threads",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	accountOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threads",
			Subsystem: "accounts",
			Name:      "operations_total",
			Help:      "Account lifecycle operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threads",
			Subsystem: "email",
			Name:      "deliveries_total",
			Help:      "Outbound account emails by kind and result.",
		},
		[]string{"kind", "success"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threads",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job runs by job and result.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		accountOps,
		emailsSent,
		jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAccountOp counts a lifecycle operation; outcome is "ok" or an error class.
func RecordAccountOp(operation, outcome string) {
	accountOps.WithLabelValues(operation, outcome).Inc()
}

// RecordEmail counts an email delivery attempt.
func RecordEmail(kind string, success bool) {
	emailsSent.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// RecordJob counts a background job run.
func RecordJob(job string, success bool) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}
