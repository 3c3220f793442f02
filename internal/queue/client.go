package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// RedisConfig holds the connection settings for the task queue broker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Client enqueues transcription tasks.
type Client struct {
	client *asynq.Client
}

// NewClient creates a queue client.
func NewClient(cfg RedisConfig) *Client {
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

// EnqueueTranscribe schedules a pipeline run for the transcript. The
// generous timeout accommodates long recordings.
func (c *Client) EnqueueTranscribe(payload TranscribePayload) error {
	return c.enqueue(TypeTranscriptTranscribe, payload,
		asynq.MaxRetry(3), asynq.Timeout(60*time.Minute))
}

func (c *Client) enqueue(taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
