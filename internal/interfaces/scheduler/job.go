package scheduler

import "context"

// Job is a unit of work executed by the worker pool.
type Job interface {
	// Execute runs the job. It must honor ctx cancellation.
	Execute(ctx context.Context) error

	// Description is used in logs and span attributes.
	Description() string
}
