package usecase

import (
	"context"
	"time"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	domsvc "FitPull/internal/domain/service"
	"FitPull/internal/services/features"
	"FitPull/internal/services/params"
	applogger "FitPull/pkg/logger"
)

// SymbolTrainer runs the fetch -> validate -> fit -> normalize sequence for
// one symbol. Every step is a hard gate: the first failure short-circuits to
// a terminal outcome and nothing propagates past this component.
type SymbolTrainer struct {
	source  domrepo.PriceSource
	fitter  domsvc.ModelFitter
	metrics domrepo.Metrics
	minObs  int
	l       *applogger.Logger
}

func NewSymbolTrainer(
	source domrepo.PriceSource,
	fitter domsvc.ModelFitter,
	metrics domrepo.Metrics,
	minObs int,
	l *applogger.Logger,
) *SymbolTrainer {
	if minObs <= 0 {
		minObs = 10
	}
	return &SymbolTrainer{source: source, fitter: fitter, metrics: metrics, minObs: minObs, l: l}
}

// Train processes a single symbol. The returned metrics are non-nil only for
// OutcomeSuccess.
func (t *SymbolTrainer) Train(ctx context.Context, symbol string) (models.BatchOutcome, *models.NormalizedMetrics) {
	prices, err := t.source.FetchPrices(ctx, symbol)
	if err != nil {
		t.l.Error("price fetch failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
		return t.outcome(symbol, models.OutcomeFetchFailed, err.Error()), nil
	}
	if len(prices) == 0 {
		t.l.Warn("skipping symbol: no price data found",
			applogger.String("symbol", symbol))
		return t.outcome(symbol, models.OutcomeSkippedNoData, ""), nil
	}
	if len(prices) < t.minObs {
		t.l.Warn("skipping symbol: not enough price points to train",
			applogger.String("symbol", symbol),
			applogger.Int("points", len(prices)))
		return t.outcome(symbol, models.OutcomeSkippedInsufficientData, ""), nil
	}

	returns := features.LogReturns(prices)
	// The fitter enforces its own minimum; checking here keeps short series
	// from ever crossing the service boundary.
	if len(returns) < t.minObs {
		t.l.Warn("skipping symbol: not enough return observations",
			applogger.String("symbol", symbol),
			applogger.Int("observations", len(returns)))
		return t.outcome(symbol, models.OutcomeSkippedInsufficientData, ""), nil
	}

	start := time.Now()
	fitted, err := t.fitter.Fit(ctx, returns)
	t.metrics.RecordFitDuration(symbol, time.Since(start).Seconds())
	if err != nil {
		t.l.Error("training failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
		return t.outcome(symbol, models.OutcomeTrainingFailed, err.Error()), nil
	}
	if !fitted.Success {
		t.l.Error("training failed",
			applogger.String("symbol", symbol),
			applogger.String("reason", fitted.Error))
		return t.outcome(symbol, models.OutcomeTrainingFailed, fitted.Error), nil
	}

	norm := params.Normalize(fitted)
	t.metrics.RecordLastVolatility(symbol, norm.GarchVolatility)
	return t.outcome(symbol, models.OutcomeSuccess, ""), &norm
}

func (t *SymbolTrainer) outcome(symbol string, code models.OutcomeCode, reason string) models.BatchOutcome {
	t.metrics.RecordOutcome(code)
	return models.BatchOutcome{Symbol: symbol, Code: code, Reason: reason}
}
