package usecase

import (
	"context"
	"time"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	applogger "FitPull/pkg/logger"
	"FitPull/pkg/queue"
)

// TrainBatchType identifies deferred batch messages on the queue.
const TrainBatchType = "train_batch"

// TrainBatchJob consumes deferred batch messages and runs them through the
// batch trainer, tracking progress in the job store.
type TrainBatchJob struct {
	batch *BatchTrainer
	jobs  domrepo.JobStore
	l     *applogger.Logger
}

func NewTrainBatchJob(batch *BatchTrainer, jobs domrepo.JobStore, l *applogger.Logger) *TrainBatchJob {
	return &TrainBatchJob{batch: batch, jobs: jobs, l: l}
}

func (j *TrainBatchJob) Name() string { return "train-batch" }
func (j *TrainBatchJob) Type() string { return TrainBatchType }

// Handle always returns nil: per-symbol failures are recorded in the job
// record and re-running a whole batch would double-write the survivors.
func (j *TrainBatchJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[models.TrainBatchPayload](payload)
	if err != nil {
		j.l.Error("invalid batch payload", applogger.Error(err))
		return nil
	}

	j.l.Info("deferred batch started",
		applogger.String("job_id", p.JobID),
		applogger.Int("symbols", len(p.Symbols)))

	j.markRunning(ctx, p.JobID)

	summary := j.batch.RunStore(ctx, p.Symbols)

	job, err := j.jobs.Get(ctx, p.JobID)
	if err != nil {
		j.l.Error("load job record failed",
			applogger.String("job_id", p.JobID),
			applogger.Error(err))
		return nil
	}
	job.ApplySummary(summary)
	if err := j.jobs.Save(ctx, job); err != nil {
		j.l.Error("save job record failed",
			applogger.String("job_id", p.JobID),
			applogger.Error(err))
	}

	return nil
}

func (j *TrainBatchJob) markRunning(ctx context.Context, id string) {
	job, err := j.jobs.Get(ctx, id)
	if err != nil {
		j.l.Warn("job record missing at start",
			applogger.String("job_id", id),
			applogger.Error(err))
		return
	}
	job.Status = models.JobRunning
	job.UpdatedAt = time.Now().UTC()
	if err := j.jobs.Save(ctx, job); err != nil {
		j.l.Warn("mark job running failed",
			applogger.String("job_id", id),
			applogger.Error(err))
	}
}

var _ queue.Job = (*TrainBatchJob)(nil)
