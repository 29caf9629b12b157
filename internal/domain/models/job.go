package models

import "time"

// JobStatus is the lifecycle state of a deferred training batch.
type JobStatus string

const (
	JobPending       JobStatus = "pending"
	JobRunning       JobStatus = "running"
	JobDone          JobStatus = "done"
	JobFailed        JobStatus = "failed"
	JobFailedPartial JobStatus = "failed_partial"
)

// TrainingJob is the queryable record of a deferred batch. It is created
// before the batch is enqueued so callers can poll for progress instead of
// guessing whether a fire-and-forget batch is still running.
type TrainingJob struct {
	ID              string    `json:"id"`
	Symbols         []string  `json:"symbols"`
	Status          JobStatus `json:"status"`
	Succeeded       int       `json:"succeeded"`
	Skipped         int       `json:"skipped"`
	Failed          int       `json:"failed"`
	PersistFailures int       `json:"persist_failures"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewTrainingJob creates a pending job record for the given symbols.
func NewTrainingJob(id string, symbols []string) *TrainingJob {
	now := time.Now().UTC()
	return &TrainingJob{
		ID:        id,
		Symbols:   symbols,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkFailed terminates a job that never reached the queue. A pending record
// with no matching queue message would otherwise report a batch that will
// never run.
func (j *TrainingJob) MarkFailed() {
	j.Status = JobFailed
	j.UpdatedAt = time.Now().UTC()
}

// ApplySummary finalizes the job from a completed batch summary.
func (j *TrainingJob) ApplySummary(s BatchSummary) {
	j.Succeeded = s.Succeeded
	j.Skipped = s.Skipped
	j.Failed = s.Failed
	j.PersistFailures = s.PersistFailures
	if s.Failed > 0 || s.PersistFailures > 0 {
		j.Status = JobFailedPartial
	} else {
		j.Status = JobDone
	}
	j.UpdatedAt = time.Now().UTC()
}
