package queue

import "context"

// Job consumes one message type from the queue.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type this job consumes.
	Type() string

	// Handle processes one payload. A returned error triggers a retry
	// until the retry limit is hit.
	Handle(ctx context.Context, payload interface{}) error
}
