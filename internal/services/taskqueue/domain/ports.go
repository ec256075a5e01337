package domain

import (
	"context"
	"time"
)

// EnqueuePort is the cross-module seam other services use to submit work
// without depending on the queue's internals.
type EnqueuePort interface {
	Enqueue(ctx context.Context, userID, url string, tags []string) (Task, error)
}

// QueuePort is the worker-side contract: lease a unit of work, then report its
// outcome.
type QueuePort interface {
	EnqueuePort

	// Lease atomically claims up to one PENDING task whose next_delivery has
	// elapsed, stamping next_delivery := now+visibility so other workers skip
	// it until the lease expires. Returns (Task{}, false, nil) when nothing is
	// ready.
	Lease(ctx context.Context, workerID string, visibility time.Duration) (Task, bool, error)

	// AckDone marks a task DONE with its produced summary.
	AckDone(ctx context.Context, taskID, summary string) error

	// AckRetry records a failed attempt, bumping retries and rescheduling
	// next_delivery per the backoff schedule, or moving the task to FAIL once
	// the retry budget is exhausted.
	AckRetry(ctx context.Context, taskID, reason string) error

	// AckFatal moves a task straight to FAIL, bypassing the retry budget, for
	// errors that are known non-transient (e.g. 4xx from the source URL).
	AckFatal(ctx context.Context, taskID, reason string) error

	// ReapStaleLeases reclaims leases left behind by a crashed worker so they
	// don't sit idle until their visibility window elapses on its own. Meant
	// to be called once per process, before the poll loop starts.
	ReapStaleLeases(ctx context.Context) (int64, error)
}
