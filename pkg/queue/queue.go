package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrJobNotFound = errors.New("job not found")

// QueueService enqueues jobs and reports their status.
type QueueService interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) (string, error)
	Status(ctx context.Context, id string) (*Status, error)
}

// QueueConfig contains the configuration for the queue
type QueueConfig struct {
	Workers    int           // number of workers
	RetryLimit int           // number of maximum retries
	RetryDelay time.Duration // time delay between retries
	ResultTTL  time.Duration // how long job status and results are kept
}

// Message represents a message in the queue
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

type State string

const (
	StateQueued   State = "queued"
	StateRunning  State = "running"
	StateRetrying State = "retrying"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// Status is the externally visible record of a job.
type Status struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	State     State           `json:"state"`
	Attempts  int             `json:"attempts"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Finished reports whether the job reached a terminal state.
func (s Status) Finished() bool { return s.State == StateDone || s.State == StateFailed }
