package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meetscribe/meet-transcriber/internal/config"
)

// Client enqueues transcription work.
type Client struct {
	client *asynq.Client
}

// NewClient creates a queue client against the configured Redis.
func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueTranscription schedules exactly one processing run for the job id.
// Redelivery on worker loss is the queue's retry policy, not the job
// lifecycle's.
func (c *Client) EnqueueTranscription(jobID string) error {
	return c.enqueue(TypeTranscriptionProcess, TranscriptionProcessPayload{JobID: jobID},
		asynq.MaxRetry(2), asynq.Timeout(60*time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
