package usecase

import (
	"context"
	"errors"
	"testing"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
)

type fakeJobStore struct {
	jobs map[string]*models.TrainingJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*models.TrainingJob)}
}

func (f *fakeJobStore) Save(_ context.Context, job *models.TrainingJob) error {
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, id string) (*models.TrainingJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func TestTrainBatchJobHandle(t *testing.T) {
	src := &fakePriceSource{
		prices: map[string][]float64{"A": risingPrices(15)},
		errs:   map[string]error{"B": errors.New("timeout")},
	}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	batch := newTestBatch(t, src, fit, newFakeStore(), &fakePublisher{})

	jobs := newFakeJobStore()
	rec := models.NewTrainingJob("job-1", []string{"A", "B"})
	if err := jobs.Save(context.Background(), rec); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	j := NewTrainBatchJob(batch, jobs, testLogger(t))
	payload := map[string]interface{}{"job_id": "job-1", "symbols": []interface{}{"A", "B"}}
	if err := j.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle must not return an error: %v", err)
	}

	got, err := jobs.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != models.JobFailedPartial {
		t.Fatalf("expected failed_partial, got %s", got.Status)
	}
	if got.Succeeded != 1 || got.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
}

func TestTrainBatchJobCleanRun(t *testing.T) {
	src := &fakePriceSource{prices: map[string][]float64{"A": risingPrices(15)}}
	fit := &fakeFitter{result: models.FittedModel{Success: true}}
	batch := newTestBatch(t, src, fit, newFakeStore(), &fakePublisher{})

	jobs := newFakeJobStore()
	_ = jobs.Save(context.Background(), models.NewTrainingJob("job-2", []string{"A"}))

	j := NewTrainBatchJob(batch, jobs, testLogger(t))
	payload := map[string]interface{}{"job_id": "job-2", "symbols": []interface{}{"A"}}
	if err := j.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := jobs.Get(context.Background(), "job-2")
	if got.Status != models.JobDone {
		t.Fatalf("expected done, got %s", got.Status)
	}
}

func TestTrainBatchJobBadPayload(t *testing.T) {
	batch := newTestBatch(t, &fakePriceSource{}, &fakeFitter{}, newFakeStore(), &fakePublisher{})
	j := NewTrainBatchJob(batch, newFakeJobStore(), testLogger(t))

	// Malformed payloads are dropped, not retried.
	if err := j.Handle(context.Background(), 42); err != nil {
		t.Fatalf("expected nil for bad payload, got %v", err)
	}
}
