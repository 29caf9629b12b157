package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
)

type fakeStore struct {
	mu      sync.Mutex
	saved   []string
	saveErr map[string]error
	latest  map[string]*models.LatestMetrics
}

func newFakeStore() *fakeStore {
	return &fakeStore{saveErr: make(map[string]error), latest: make(map[string]*models.LatestMetrics)}
}

func (f *fakeStore) Save(_ context.Context, symbol string, _ models.NormalizedMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.saveErr[symbol]; ok {
		return err
	}
	f.saved = append(f.saved, symbol)
	return nil
}

func (f *fakeStore) Latest(_ context.Context, symbol string) (*models.LatestMetrics, error) {
	if lm, ok := f.latest[symbol]; ok {
		return lm, nil
	}
	return nil, domrepo.ErrNotFound
}

func (f *fakeStore) Health(context.Context) error { return nil }

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishMetrics(_ context.Context, sm models.SymbolMetrics) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, sm.Symbol)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestBatch(t *testing.T, src *fakePriceSource, fit *fakeFitter, store *fakeStore, pub *fakePublisher) *BatchTrainer {
	m := newFakeMetrics()
	trainer := NewSymbolTrainer(src, fit, m, 10, testLogger(t))
	return NewBatchTrainer(trainer, store, pub, m, testLogger(t))
}

func TestRunSyncMixedBatch(t *testing.T) {
	src := &fakePriceSource{
		prices: map[string][]float64{
			"AAPL": risingPrices(20),
			"MSFT": risingPrices(3),
			"GOOG": risingPrices(20),
		},
		errs: map[string]error{"TSLA": errors.New("timeout")},
	}
	fit := &fakeFitter{result: models.FittedModel{
		Success:      true,
		Coefficients: map[string]float64{"ar_coeff": 0.2},
	}}
	store := newFakeStore()
	pub := &fakePublisher{}
	b := newTestBatch(t, src, fit, store, pub)

	results, summary := b.RunSync(context.Background(), []string{"AAPL", "MSFT", "TSLA", "GOOG", "NONE"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Symbol != "AAPL" || results[1].Symbol != "GOOG" {
		t.Fatalf("results out of input order: %+v", results)
	}
	if summary.Succeeded != 2 || summary.Skipped != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Outcomes) != 5 {
		t.Fatalf("expected outcome per symbol, got %d", len(summary.Outcomes))
	}
	if len(store.saved) != 0 {
		t.Fatalf("sync mode must not persist, got %v", store.saved)
	}
	if len(pub.published) != 0 {
		t.Fatalf("sync mode must not publish, got %v", pub.published)
	}
}

func TestRunSyncEmptyBatch(t *testing.T) {
	b := newTestBatch(t, &fakePriceSource{}, &fakeFitter{}, newFakeStore(), &fakePublisher{})
	results, summary := b.RunSync(context.Background(), nil)
	if len(results) != 0 || len(summary.Outcomes) != 0 {
		t.Fatalf("expected empty run, got %+v", summary)
	}
}

func TestRunStorePersistFailureKeepsOutcome(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"AAPL": risingPrices(20)}}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	store := newFakeStore()
	store.saveErr["AAPL"] = errors.New("insert failed")
	pub := &fakePublisher{}
	b := newTestBatch(t, src, fit, store, pub)

	summary := b.RunStore(context.Background(), []string{"AAPL"})

	if summary.Succeeded != 1 {
		t.Fatalf("persist failure must not demote the outcome: %+v", summary)
	}
	if summary.PersistFailures != 1 {
		t.Fatalf("expected one persist failure, got %d", summary.PersistFailures)
	}
	if len(pub.published) != 0 {
		t.Fatal("must not publish a record that was not persisted")
	}
}

func TestRunStorePersists(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{
		"A": risingPrices(15),
		"B": risingPrices(15),
	}}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	store := newFakeStore()
	pub := &fakePublisher{}
	b := newTestBatch(t, src, fit, store, pub)

	summary := b.RunStore(context.Background(), []string{"A", "B"})
	if summary.Succeeded != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected both records persisted, got %v", store.saved)
	}
	if len(pub.published) != 2 {
		t.Fatalf("expected both records published, got %v", pub.published)
	}
}

func TestRunStorePublishFailureIsBestEffort(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"A": risingPrices(15)}}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	store := newFakeStore()
	b := newTestBatch(t, src, fit, store, &fakePublisher{err: errors.New("broker down")})

	summary := b.RunStore(context.Background(), []string{"A"})
	if summary.Succeeded != 1 || summary.Failed != 0 || summary.PersistFailures != 0 {
		t.Fatalf("publish failure must not affect the summary: %+v", summary)
	}
	if len(store.saved) != 1 {
		t.Fatalf("record must still be persisted, got %v", store.saved)
	}
}
