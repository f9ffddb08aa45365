package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ScoringLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudguard",
			Subsystem: "scoring",
			Name:      "latency_seconds",
			Help:      "Latency of scoring sidecar calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	ScoringErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudguard",
			Subsystem: "scoring",
			Name:      "errors_total",
			Help:      "Errors by scoring sidecar call",
		},
		[]string{"call"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ScoringLatency, ScoringErrors)
	})
}
