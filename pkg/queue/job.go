package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Job defines a queue job handler.
type Job interface {
	// Name returns the unique identifier of the job.
	Name() string

	// Type returns the type of message that the job handles.
	Type() string

	// Handle processes the payload. The returned value is stored as the job's result.
	Handle(ctx context.Context, payload json.RawMessage) (interface{}, error)
}

// DecodePayload unmarshals a raw job payload into T.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &result, nil
}
