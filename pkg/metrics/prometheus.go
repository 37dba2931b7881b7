package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	operations    *prometheus.CounterVec
	gateRejected  prometheus.Counter
	executorErrs  *prometheus.CounterVec
	executorTimes *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		operations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_operations_total",
				Help: "Total number of query operations by outcome",
			},
			[]string{"operation", "context", "outcome"},
		),
		gateRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tradegate_gate_rejections_total",
				Help: "Aggregate requests rejected by the contributor threshold",
			},
		),
		executorErrs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_executor_errors_total",
				Help: "Total number of query-executor call failures",
			},
			[]string{"operation"},
		),
		executorTimes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradegate_executor_duration_seconds",
				Help:    "Duration of query-executor round-trips in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordOperation records a completed facade operation.
func (r *Recorder) RecordOperation(operation, context, outcome string) {
	r.operations.WithLabelValues(operation, context, outcome).Inc()
}

// RecordGateRejection records a contributor-threshold rejection.
func (r *Recorder) RecordGateRejection() {
	r.gateRejected.Inc()
}

// RecordExecutorError records a failed executor round-trip.
func (r *Recorder) RecordExecutorError(operation string) {
	r.executorErrs.WithLabelValues(operation).Inc()
}

// ObserveExecutorDuration records the latency of an executor round-trip.
func (r *Recorder) ObserveExecutorDuration(operation string, d time.Duration) {
	r.executorTimes.WithLabelValues(operation).Observe(d.Seconds())
}
