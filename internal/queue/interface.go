package queue

import (
	"context"
)

// JobQueue carries journal reflection jobs between the API and the worker.
type JobQueue interface {
	// Enqueue publishes job, honouring its NotBefore when the broker can delay.
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams reflection jobs until ctx is cancelled. Every message
	// must be settled with Ack or Nack; prefetchCount caps unsettled ones.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error

	// HealthCheck reports whether the broker connection is usable.
	HealthCheck(ctx context.Context) error
}

// Publisher is the enqueue side of a JobQueue
type Publisher interface {
	Enqueue(ctx context.Context, job *Job) error
}
