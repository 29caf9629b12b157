package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
)

const jobKeyPrefix = "fitpull:jobs:"

// Job records expire after a week; the durable outcome lives in ClickHouse.
const jobTTL = 7 * 24 * time.Hour

// RedisJobStore persists deferred-batch job records as JSON values.
type RedisJobStore struct {
	cli *redis.Client
}

func NewRedisJobStore(cli *redis.Client) *RedisJobStore {
	return &RedisJobStore{cli: cli}
}

func (s *RedisJobStore) Save(ctx context.Context, job *models.TrainingJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.cli.Set(ctx, jobKeyPrefix+job.ID, b, jobTTL).Err(); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.TrainingJob, error) {
	b, err := s.cli.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domrepo.ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	var job models.TrainingJob
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

var _ domrepo.JobStore = (*RedisJobStore)(nil)
