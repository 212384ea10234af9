// Package jobstore persists job records in Redis as JSON blobs with a
// configurable retention TTL. The store is the single source of truth for
// job state; status reads always hit Redis.
package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetscribe/meet-transcriber/internal/models"
)

const keyPrefix = "job:"

// ErrNotFound is returned when no record exists for a job id (unknown or
// expired past the retention window).
var ErrNotFound = errors.New("job not found")

// Store reads and writes job records.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Store retaining records for ttl after each write.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(jobID string) string {
	return keyPrefix + jobID
}

// Get loads a job record by id.
func (s *Store) Get(ctx context.Context, jobID string) (*models.Job, error) {
	data, err := s.client.Get(ctx, key(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}

	var job models.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// Save writes a job record, refreshing the retention TTL.
func (s *Store) Save(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, key(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// UpdateProgress loads the job, advances its progress checkpoint and message,
// and persists immediately so polling reflects live progress.
func (s *Store) UpdateProgress(ctx context.Context, jobID string, progress float64, message string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Progress = progress
	if message != "" {
		job.Message = message
	}
	return s.Save(ctx, job)
}

// Ping reports whether the backing Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
