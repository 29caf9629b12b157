package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FitPull/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	outcomes        *prometheus.CounterVec
	fitDuration     *prometheus.HistogramVec
	persistFailures prometheus.Counter
	lastVolatility  *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		outcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitpull_symbol_outcomes_total",
				Help: "Terminal outcomes of per-symbol training runs",
			},
			[]string{"code"},
		),
		fitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitpull_fit_duration_seconds",
				Help:    "Duration of model fitting calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"symbol"},
		),
		persistFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fitpull_persist_failures_total",
				Help: "Total failed writes of fitted parameters to the sink",
			},
		),
		lastVolatility: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fitpull_last_garch_volatility",
				Help: "Last fitted conditional volatility for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordOutcome counts a terminal per-symbol outcome.
func (r *Recorder) RecordOutcome(code models.OutcomeCode) {
	r.outcomes.WithLabelValues(string(code)).Inc()
}

// RecordFitDuration records one fitting call's latency in seconds.
func (r *Recorder) RecordFitDuration(symbol string, seconds float64) {
	r.fitDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordPersistFailure counts a failed sink write.
func (r *Recorder) RecordPersistFailure() {
	r.persistFailures.Inc()
}

// RecordLastVolatility records the most recent fitted volatility.
func (r *Recorder) RecordLastVolatility(symbol string, sigma float64) {
	r.lastVolatility.WithLabelValues(symbol).Set(sigma)
}
