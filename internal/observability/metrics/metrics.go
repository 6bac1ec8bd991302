package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calmlylist_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calmlylist_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	todoOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calmlylist_todo_operations_total",
		Help: "Count of todo operations by kind and result",
	}, []string{"operation", "result"})

	completedDeletes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calmlylist_completed_deleted",
		Help:    "Number of todos removed per delete-completed call",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"backend"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calmlylist_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTodoOperation increments the todo operation counter
func ObserveTodoOperation(operation, result string) {
	todoOperations.WithLabelValues(operation, result).Inc()
}

// ObserveCompletedDeleted records how many todos a bulk delete removed
func ObserveCompletedDeleted(backend string, count int) {
	completedDeletes.WithLabelValues(backend).Observe(float64(count))
}

// ObserveLogin increments the login attempt counter
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}
