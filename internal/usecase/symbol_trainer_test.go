package usecase

import (
	"context"
	"errors"
	"testing"

	"FitPull/internal/domain/models"
	applogger "FitPull/pkg/logger"
)

type fakePriceSource struct {
	prices map[string][]float64
	errs   map[string]error
}

func (f *fakePriceSource) FetchPrices(_ context.Context, symbol string) ([]float64, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.prices[symbol], nil
}

type fakeFitter struct {
	calls  int
	series []float64
	result models.FittedModel
	err    error
}

func (f *fakeFitter) Fit(_ context.Context, series []float64) (models.FittedModel, error) {
	f.calls++
	f.series = series
	return f.result, f.err
}

type fakeMetrics struct {
	outcomes        map[models.OutcomeCode]int
	persistFailures int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{outcomes: make(map[models.OutcomeCode]int)}
}

func (f *fakeMetrics) RecordOutcome(code models.OutcomeCode) { f.outcomes[code]++ }
func (f *fakeMetrics) RecordFitDuration(string, float64) {}
func (f *fakeMetrics) RecordPersistFailure() { f.persistFailures++ }
func (f *fakeMetrics) RecordLastVolatility(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// risingPrices returns n strictly increasing positive prices.
func risingPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newTestTrainer(src *fakePriceSource, fit *fakeFitter, m *fakeMetrics, t *testing.T) *SymbolTrainer {
	return NewSymbolTrainer(src, fit, m, 10, testLogger(t))
}

func TestTrainSuccess(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"AAPL": risingPrices(20)}}
	fit := &fakeFitter{result: models.FittedModel{
		Success:      true,
		Coefficients: map[string]float64{"ar_coeff": 0.4, "garch_volatility": 1.2},
	}}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, norm := tr.Train(context.Background(), "AAPL")
	if outcome.Code != models.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", outcome.Code, outcome.Reason)
	}
	if norm == nil {
		t.Fatal("expected normalized metrics")
	}
	if norm.ArCoeff != 0.4 || norm.GarchVolatility != 1.2 {
		t.Fatalf("unexpected normalized record: %+v", norm)
	}
	if fit.calls != 1 {
		t.Fatalf("expected one fit call, got %d", fit.calls)
	}
	if len(fit.series) != 19 {
		t.Fatalf("expected 19 returns, got %d", len(fit.series))
	}
}

func TestTrainNoData(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{}}
	fit := &fakeFitter{}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, norm := tr.Train(context.Background(), "GHOST")
	if outcome.Code != models.OutcomeSkippedNoData {
		t.Fatalf("expected skipped_no_data, got %s", outcome.Code)
	}
	if norm != nil {
		t.Fatal("expected nil metrics")
	}
	if fit.calls != 0 {
		t.Fatal("fitter must not be called without data")
	}
}

func TestTrainInsufficientPrices(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"X": risingPrices(9)}}
	fit := &fakeFitter{}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, _ := tr.Train(context.Background(), "X")
	if outcome.Code != models.OutcomeSkippedInsufficientData {
		t.Fatalf("expected skipped_insufficient_data, got %s", outcome.Code)
	}
	if fit.calls != 0 {
		t.Fatal("fitter must not be called below the price threshold")
	}
}

func TestTrainInsufficientReturns(t *testing.T) {
	// Ten prices clear the price gate but only yield nine returns.
	src := &fakePriceSource{prices: map[string][]float64{"X": risingPrices(10)}}
	fit := &fakeFitter{}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, _ := tr.Train(context.Background(), "X")
	if outcome.Code != models.OutcomeSkippedInsufficientData {
		t.Fatalf("expected skipped_insufficient_data, got %s", outcome.Code)
	}
	if fit.calls != 0 {
		t.Fatal("fitter must not be called below the return threshold")
	}
}

func TestTrainFetchError(t *testing.T) {
	src := &fakePriceSource{errs: map[string]error{"X": errors.New("connection refused")}}
	fit := &fakeFitter{}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, _ := tr.Train(context.Background(), "X")
	if outcome.Code != models.OutcomeFetchFailed {
		t.Fatalf("expected fetch_failed, got %s", outcome.Code)
	}
	if outcome.Reason == "" {
		t.Fatal("expected failure reason")
	}
}

func TestTrainFitterError(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"X": risingPrices(20)}}
	fit := &fakeFitter{err: errors.New("optimizer diverged")}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, norm := tr.Train(context.Background(), "X")
	if outcome.Code != models.OutcomeTrainingFailed {
		t.Fatalf("expected training_failed, got %s", outcome.Code)
	}
	if norm != nil {
		t.Fatal("expected nil metrics on fit error")
	}
}

func TestTrainFitterReportedFailure(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"X": risingPrices(20)}}
	fit := &fakeFitter{result: models.FittedModel{Success: false, Error: "singular matrix"}}
	tr := newTestTrainer(src, fit, newFakeMetrics(), t)

	outcome, _ := tr.Train(context.Background(), "X")
	if outcome.Code != models.OutcomeTrainingFailed {
		t.Fatalf("expected training_failed, got %s", outcome.Code)
	}
	if outcome.Reason != "singular matrix" {
		t.Fatalf("expected fitter error as reason, got %q", outcome.Reason)
	}
}

func TestTrainRecordsOutcomes(t *testing.T) {
	m := newFakeMetrics()
	src := &fakePriceSource{prices: map[string][]float64{"A": risingPrices(20)}}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	tr := newTestTrainer(src, fit, m, t)

	tr.Train(context.Background(), "A")
	tr.Train(context.Background(), "B")

	if m.outcomes[models.OutcomeSuccess] != 1 {
		t.Fatalf("expected one success outcome, got %d", m.outcomes[models.OutcomeSuccess])
	}
	if m.outcomes[models.OutcomeSkippedNoData] != 1 {
		t.Fatalf("expected one skipped outcome, got %d", m.outcomes[models.OutcomeSkippedNoData])
	}
}
