package services

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_request_total",
			Help: "Total HTTP requests handled",
		},
		[]string{"route"},
	)

	requestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_request_errors_total",
			Help: "HTTP requests answered with status >= 400",
		},
		[]string{"route"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orchestrator_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	workflowCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_workflow_total",
			Help: "Workflows processed, labelled by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	workflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orchestrator_workflow_duration_seconds",
			Help:    "End to end workflow processing time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

// Local totals back the /healthz payload. The Prometheus client does not
// expose counter values for reading, so these are tracked separately.
var (
	totalRequests int64
	totalErrors   int64
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestErrors)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(workflowCount)
	prometheus.MustRegister(workflowDuration)
}

/**
 * Increment the request counter for a route
 * @param {string} route - Route template of the handled request
 */
func IncrementRequestCount(route string) {
	requestCount.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalRequests, 1)
}

/**
 * Increment the error counter for a route
 * @param {string} route - Route template of the handled request
 */
func IncrementErrorCount(route string) {
	requestErrors.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalErrors, 1)
}

/**
 * Record the handling duration of one request
 * @param {string} route - Route template of the handled request
 * @param {float64} seconds - Handling duration in seconds
 */
func RecordRequestDuration(route string, seconds float64) {
	requestDuration.WithLabelValues(route).Observe(seconds)
}

/**
 * Record one processed workflow
 * @param {string} workflowType - Workflow type string
 * @param {bool} success - Whether the workflow succeeded
 * @param {float64} seconds - Processing duration in seconds
 */
func RecordWorkflow(workflowType string, success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	workflowCount.WithLabelValues(workflowType, outcome).Inc()
	workflowDuration.WithLabelValues(workflowType).Observe(seconds)
}

// GetTotalRequestCount returns the request total since process start.
func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

// GetTotalErrorCount returns the error total since process start.
func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&totalErrors)
}
