package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	"FitPull/internal/usecase"
	applogger "FitPull/pkg/logger"
)

type stubPriceSource struct {
	prices map[string][]float64
}

func (s *stubPriceSource) FetchPrices(_ context.Context, symbol string) ([]float64, error) {
	return s.prices[symbol], nil
}

type stubFitter struct {
	result models.FittedModel
}

func (s *stubFitter) Fit(context.Context, []float64) (models.FittedModel, error) {
	return s.result, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordOutcome(models.OutcomeCode) {}
func (stubMetrics) RecordFitDuration(string, float64) {}
func (stubMetrics) RecordPersistFailure() {}
func (stubMetrics) RecordLastVolatility(string, float64) {}

type stubStore struct {
	latest map[string]*models.LatestMetrics
}

func (s *stubStore) Save(context.Context, string, models.NormalizedMetrics) error { return nil }

func (s *stubStore) Latest(_ context.Context, symbol string) (*models.LatestMetrics, error) {
	if lm, ok := s.latest[symbol]; ok {
		return lm, nil
	}
	return nil, domrepo.ErrNotFound
}

func (s *stubStore) Health(context.Context) error { return nil }

type stubPublisher struct{}

func (stubPublisher) PublishMetrics(context.Context, models.SymbolMetrics) error { return nil }
func (stubPublisher) Close() error                                               { return nil }

type stubJobStore struct {
	jobs map[string]*models.TrainingJob
}

func (s *stubJobStore) Save(_ context.Context, job *models.TrainingJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *stubJobStore) Get(_ context.Context, id string) (*models.TrainingJob, error) {
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return nil, domrepo.ErrNotFound
}

type stubQueue struct {
	msgType  string
	payloads []interface{}
	err      error
}

func (s *stubQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.msgType = msgType
	s.payloads = append(s.payloads, payload)
	return nil
}

func prices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newTestHandler(t *testing.T, store *stubStore, jobs *stubJobStore, q *stubQueue) (*TrainingHandler, *echo.Echo) {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src := &stubPriceSource{prices: map[string][]float64{"AAPL": prices(20)}}
	fit := &stubFitter{result: models.FittedModel{
		Success:      true,
		Coefficients: map[string]float64{"ar_coeff": 0.3, "garch_volatility": 1.1},
	}}
	trainer := usecase.NewSymbolTrainer(src, fit, stubMetrics{}, 10, l)
	batch := usecase.NewBatchTrainer(trainer, store, stubPublisher{}, stubMetrics{}, l)

	h := NewTrainingHandler(l, batch, store, jobs, q)
	h.SetRateLimit(1000, 1000)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTrainSyncEmptySymbols(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{}, &stubJobStore{jobs: map[string]*models.TrainingJob{}}, &stubQueue{})

	rec := doJSON(e, http.MethodPost, "/api/train/sync", `{"symbols":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty symbol list, got %d", rec.Code)
	}
}

func TestTrainSyncMissingBody(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{}, &stubJobStore{jobs: map[string]*models.TrainingJob{}}, &stubQueue{})

	rec := doJSON(e, http.MethodPost, "/api/train/sync", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing symbols, got %d", rec.Code)
	}
}

func TestTrainSyncReturnsResults(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{}, &stubJobStore{jobs: map[string]*models.TrainingJob{}}, &stubQueue{})

	rec := doJSON(e, http.MethodPost, "/api/train/sync", `{"symbols":["AAPL","GHOST"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data models.TrainSyncResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != "Processing complete" {
		t.Fatalf("unexpected status %q", env.Data.Status)
	}
	if len(env.Data.Results) != 1 || env.Data.Results[0].Symbol != "AAPL" {
		t.Fatalf("expected one AAPL result, got %+v", env.Data.Results)
	}
	if env.Data.Results[0].ArCoeff != 0.3 {
		t.Fatalf("unexpected coefficients: %+v", env.Data.Results[0])
	}
}

func TestTrainBatchQueues(t *testing.T) {
	jobs := &stubJobStore{jobs: map[string]*models.TrainingJob{}}
	q := &stubQueue{}
	_, e := newTestHandler(t, &stubStore{}, jobs, q)

	rec := doJSON(e, http.MethodPost, "/api/train/batch", `{"symbols":["AAPL","MSFT"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data models.TrainBatchAck `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != "Batch processing started" || env.Data.Queued != 2 {
		t.Fatalf("unexpected ack: %+v", env.Data)
	}
	if env.Data.JobID == "" {
		t.Fatal("expected a job id")
	}
	if q.msgType != usecase.TrainBatchType || len(q.payloads) != 1 {
		t.Fatalf("expected one queued message of type %s", usecase.TrainBatchType)
	}
	if _, ok := jobs.jobs[env.Data.JobID]; !ok {
		t.Fatal("job record must exist before the ack is sent")
	}
}

func TestTrainBatchEnqueueFailureMarksJobFailed(t *testing.T) {
	jobs := &stubJobStore{jobs: map[string]*models.TrainingJob{}}
	q := &stubQueue{err: errors.New("queue unavailable")}
	_, e := newTestHandler(t, &stubStore{}, jobs, q)

	rec := doJSON(e, http.MethodPost, "/api/train/batch", `{"symbols":["AAPL"]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	if len(jobs.jobs) != 1 {
		t.Fatalf("expected one job record, got %d", len(jobs.jobs))
	}
	for _, job := range jobs.jobs {
		if job.Status != models.JobFailed {
			t.Fatalf("job left in status %q after enqueue failure", job.Status)
		}
	}
}

func TestResultsFound(t *testing.T) {
	store := &stubStore{latest: map[string]*models.LatestMetrics{
		"AAPL": {
			Symbol:          "AAPL",
			ArCoeff:         0.25,
			MaCoeff:         -0.1,
			GarchVolatility: 1.5,
			CalculatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	_, e := newTestHandler(t, store, &stubJobStore{jobs: map[string]*models.TrainingJob{}}, &stubQueue{})

	rec := doJSON(e, http.MethodGet, "/api/results/AAPL", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var env struct {
		Data models.LatestMetrics `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Symbol != "AAPL" || env.Data.ArCoeff != 0.25 {
		t.Fatalf("unexpected payload: %+v", env.Data)
	}
}

func TestResultsNotFound(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{}, &stubJobStore{jobs: map[string]*models.TrainingJob{}}, &stubQueue{})

	rec := doJSON(e, http.MethodGet, "/api/results/GHOST", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestJobLookup(t *testing.T) {
	jobs := &stubJobStore{jobs: map[string]*models.TrainingJob{}}
	rec1 := models.NewTrainingJob("abc", []string{"AAPL"})
	jobs.jobs[rec1.ID] = rec1
	_, e := newTestHandler(t, &stubStore{}, jobs, &stubQueue{})

	rec := doJSON(e, http.MethodGet, "/api/jobs/abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/jobs/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
