package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	TrainingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fitpull",
			Subsystem: "training",
			Name:      "latency_seconds",
			Help:      "Latency of training endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TrainingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitpull",
			Subsystem: "training",
			Name:      "errors_total",
			Help:      "Errors by training endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(TrainingLatency, TrainingErrors)
	})
}
