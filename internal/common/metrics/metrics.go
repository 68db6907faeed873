// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of processed submissions by outcome",
		},
		[]string{"outcome", "reason"},
	)

	StepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_step_failures_total",
			Help: "Total number of failed pipeline steps",
		},
		[]string{"step", "error_code"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"step"},
	)

	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_store_operations_total",
			Help: "Total number of key-value namespace operations",
		},
		[]string{"backend", "operation", "status"},
	)
)

func RecordSubmission(outcome, reason string) {
	SubmissionsTotal.WithLabelValues(outcome, reason).Inc()
}

func RecordStepFailure(step, errorCode string) {
	StepFailures.WithLabelValues(step, errorCode).Inc()
}

func ObserveStep(step string, d time.Duration) {
	StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordStoreOperation counts one namespace call; err decides the status label.
func RecordStoreOperation(backend, operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, status).Inc()
}
