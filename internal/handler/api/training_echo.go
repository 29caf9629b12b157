package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	icache "FitPull/internal/service/cache"
	"FitPull/internal/service/metrics"
	"FitPull/internal/service/ratelimit"
	"FitPull/internal/usecase"
	xhttp "FitPull/pkg/http"
	applogger "FitPull/pkg/logger"
	"FitPull/pkg/queue"
)

// TrainingHandler exposes the training endpoints over Echo.
type TrainingHandler struct {
	logger *applogger.Logger
	batch  *usecase.BatchTrainer
	store  domrepo.MetricsStore
	jobs   domrepo.JobStore
	queue  queue.QueueService
	cache  icache.BytesCache
	rl     *ratelimit.Limiter

	resultTTL    time.Duration
	rlCapacity   float64
	rlRefillRate float64
}

func NewTrainingHandler(
	logger *applogger.Logger,
	batch *usecase.BatchTrainer,
	store domrepo.MetricsStore,
	jobs domrepo.JobStore,
	q queue.QueueService,
) *TrainingHandler {
	metrics.Register()
	return &TrainingHandler{
		logger:       logger,
		batch:        batch,
		store:        store,
		jobs:         jobs,
		queue:        q,
		rl:           ratelimit.New(),
		resultTTL:    15 * time.Second,
		rlCapacity:   5,
		rlRefillRate: 2,
	}
}

// SetCache enables response caching for the results endpoint.
func (h *TrainingHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.resultTTL = ttl
	}
}

// SetRateLimit overrides the per-client token bucket parameters.
func (h *TrainingHandler) SetRateLimit(capacity, refillPerSec float64) {
	if capacity > 0 {
		h.rlCapacity = capacity
	}
	if refillPerSec > 0 {
		h.rlRefillRate = refillPerSec
	}
}

func (h *TrainingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/train/sync", h.TrainSync)
	g.POST("/train/batch", h.TrainBatch)
	g.GET("/results/:symbol", h.Results)
	g.GET("/jobs/:id", h.Job)
	g.GET("/health", h.Health)
}

// TrainSync runs the whole batch inline and returns the successful records.
func (h *TrainingHandler) TrainSync(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.TrainingLatency.WithLabelValues("train_sync").Observe(time.Since(start).Seconds())
	}()

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results, summary := h.batch.RunSync(c.Request().Context(), req.Symbols)
	if summary.Failed > 0 {
		metrics.TrainingErrors.WithLabelValues("train_sync").Add(float64(summary.Failed))
	}

	return xhttp.SuccessResponse(c, models.TrainSyncResponse{
		Status:  "Processing complete",
		Results: results,
	})
}

// TrainBatch records a job, enqueues the batch, and acknowledges immediately.
func (h *TrainingHandler) TrainBatch(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.TrainingLatency.WithLabelValues("train_batch").Observe(time.Since(start).Seconds())
	}()

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	job := models.NewTrainingJob(uuid.NewString(), req.Symbols)
	if err := h.jobs.Save(ctx, job); err != nil {
		metrics.TrainingErrors.WithLabelValues("train_batch").Inc()
		h.logger.Error("save job record failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	payload := models.TrainBatchPayload{JobID: job.ID, Symbols: req.Symbols}
	if err := h.queue.PublishMessage(ctx, usecase.TrainBatchType, payload); err != nil {
		metrics.TrainingErrors.WithLabelValues("train_batch").Inc()
		h.logger.Error("enqueue batch failed",
			applogger.String("job_id", job.ID),
			applogger.Error(err))
		job.MarkFailed()
		if serr := h.jobs.Save(ctx, job); serr != nil {
			h.logger.Error("mark job failed",
				applogger.String("job_id", job.ID),
				applogger.Error(serr))
		}
		return xhttp.InternalServerErrorResponse(c)
	}

	h.logger.Info("batch queued",
		applogger.String("job_id", job.ID),
		applogger.Int("symbols", len(req.Symbols)))

	return xhttp.AcceptedResponse(c, models.TrainBatchAck{
		Status: "Batch processing started",
		JobID:  job.ID,
		Queued: len(req.Symbols),
	})
}

// Results returns the most recently stored parameters for a symbol.
func (h *TrainingHandler) Results(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.TrainingLatency.WithLabelValues("results").Observe(time.Since(start).Seconds())
	}()

	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}

	if !h.rl.Allow(c.RealIP()+":results", h.rlCapacity, h.rlRefillRate) {
		h.logger.Warn("results rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}

	cacheKey := "results:" + symbol
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("results cache_get_error", applogger.Error(err))
		} else if ok {
			var cached models.LatestMetrics
			if err := json.Unmarshal(b, &cached); err == nil {
				h.logger.Debug("results cache_hit", applogger.String("key", cacheKey))
				return xhttp.SuccessResponse(c, cached)
			}
		}
	}

	latest, err := h.store.Latest(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return xhttp.NotFoundResponse(c, "no metrics found for symbol")
		}
		metrics.TrainingErrors.WithLabelValues("results").Inc()
		h.logger.Error("results query failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	if h.cache != nil {
		if b, err := json.Marshal(latest); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, h.resultTTL); err != nil {
				h.logger.Warn("results cache_set_error", applogger.Error(err))
			}
		}
	}

	return xhttp.SuccessResponse(c, latest)
}

// Job returns the record of a deferred batch.
func (h *TrainingHandler) Job(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "job id required")
	}

	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return xhttp.NotFoundResponse(c, "job not found")
		}
		h.logger.Error("job query failed",
			applogger.String("job_id", id),
			applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.SuccessResponse(c, job)
}

// Health reports sink connectivity.
func (h *TrainingHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("sink unreachable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

var _ xhttp.Handler = (*TrainingHandler)(nil)
