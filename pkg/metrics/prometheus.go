package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations  *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	trackedUsers prometheus.Gauge
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudguard_evaluations_total",
				Help: "Total transaction evaluations by outcome",
			},
			[]string{"outcome"},
		),
		alerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudguard_alerts_total",
				Help: "Total alerts raised, labelled by triggering reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudguard_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		trackedUsers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fraudguard_tracked_users",
				Help: "Number of users with a live behavioral profile",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fraudguard_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation records a completed evaluation by outcome
// (alert or clear).
func (r *Recorder) RecordEvaluation(outcome string) {
	r.evaluations.WithLabelValues(outcome).Inc()
}

// RecordAlert records a raised alert for each contributing reason.
func (r *Recorder) RecordAlert(reason string) {
	r.alerts.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTrackedUsers records the current behavioral profile count.
func (r *Recorder) RecordTrackedUsers(n int) {
	r.trackedUsers.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
