package repository

import (
	"context"

	"FitPull/internal/domain/models"
)

// PriceSource provides historical close prices for a symbol, chronological
// ascending. An empty slice with a nil error means no data exists; a non-nil
// error means the fetch itself failed and must not be conflated with absence.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbol string) ([]float64, error)
}

// MetricsStore is the result sink: append-only writes keyed by symbol,
// latest-by-timestamp reads.
type MetricsStore interface {
	Save(ctx context.Context, symbol string, m models.NormalizedMetrics) error
	Latest(ctx context.Context, symbol string) (*models.LatestMetrics, error)
	Health(ctx context.Context) error
}

// ErrNotFound is returned by Latest when no record exists for a symbol.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "no metrics found" }

// JobStore persists deferred-batch job records.
type JobStore interface {
	Save(ctx context.Context, job *models.TrainingJob) error
	Get(ctx context.Context, id string) (*models.TrainingJob, error)
}

// Publisher emits normalized-metrics events after persistence. Best-effort:
// callers log failures and move on.
type Publisher interface {
	PublishMetrics(ctx context.Context, sm models.SymbolMetrics) error
	Close() error
}

// Metrics records operational counters for the training pipeline.
type Metrics interface {
	RecordOutcome(code models.OutcomeCode)
	RecordFitDuration(symbol string, seconds float64)
	RecordPersistFailure()
	RecordLastVolatility(symbol string, sigma float64)
}
