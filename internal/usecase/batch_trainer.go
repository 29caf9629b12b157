package usecase

import (
	"context"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	applogger "FitPull/pkg/logger"
)

// BatchTrainer drives a training batch over a list of symbols, one symbol at
// a time in input order. A failure on one symbol never aborts the batch.
type BatchTrainer struct {
	trainer   *SymbolTrainer
	store     domrepo.MetricsStore
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewBatchTrainer(
	trainer *SymbolTrainer,
	store domrepo.MetricsStore,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *BatchTrainer {
	return &BatchTrainer{
		trainer:   trainer,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		l:         l,
	}
}

// RunSync processes the batch inline and returns the successful records in
// input order. Nothing is persisted; skipped and failed symbols appear only
// in the summary.
func (b *BatchTrainer) RunSync(ctx context.Context, symbols []string) ([]models.SymbolMetrics, models.BatchSummary) {
	var summary models.BatchSummary
	results := make([]models.SymbolMetrics, 0, len(symbols))

	for _, symbol := range symbols {
		outcome, norm := b.trainer.Train(ctx, symbol)
		summary.Add(outcome)
		if outcome.Code == models.OutcomeSuccess && norm != nil {
			results = append(results, models.SymbolMetrics{Symbol: symbol, NormalizedMetrics: *norm})
		}
	}

	b.logSummary("sync batch finished", len(symbols), summary)
	return results, summary
}

// RunStore processes the batch for a deferred job: successful records are
// persisted to the sink and published downstream.
func (b *BatchTrainer) RunStore(ctx context.Context, symbols []string) models.BatchSummary {
	var summary models.BatchSummary

	for _, symbol := range symbols {
		outcome, norm := b.trainer.Train(ctx, symbol)
		summary.Add(outcome)

		if outcome.Code != models.OutcomeSuccess || norm == nil {
			continue
		}

		// A persist failure does not demote the training outcome; the fit
		// itself succeeded and the record stays in the summary as a success.
		if err := b.store.Save(ctx, symbol, *norm); err != nil {
			summary.PersistFailures++
			b.metrics.RecordPersistFailure()
			b.l.Error("persist metrics failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
			continue
		}

		sm := models.SymbolMetrics{Symbol: symbol, NormalizedMetrics: *norm}
		if err := b.publisher.PublishMetrics(ctx, sm); err != nil {
			b.l.Warn("publish metrics failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
		}
	}

	b.logSummary("stored batch finished", len(symbols), summary)
	return summary
}

func (b *BatchTrainer) logSummary(msg string, total int, s models.BatchSummary) {
	b.l.Info(msg,
		applogger.Int("symbols", total),
		applogger.Int("succeeded", s.Succeeded),
		applogger.Int("skipped", s.Skipped),
		applogger.Int("failed", s.Failed),
		applogger.Int("persist_failures", s.PersistFailures))
}
