// Package repo provides postgres access for the durable ingestion task queue.
package repo

import (
	"context"
	"time"

	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"
)

// RowTask is a bookmark_task row as stored.
type RowTask struct {
	TaskID       string
	UserID       string
	URL          string
	Status       string
	Tags         []string
	Summary      string
	NextDelivery time.Time
	Retries      int
	FailReason   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repo is the task queue's postgres contract.
type Repo interface {
	Insert(ctx context.Context, t RowTask) error
	// Lease claims up to one PENDING row with next_delivery <= now, ordered by
	// next_delivery then created_at, and pushes next_delivery out by
	// visibility so it isn't picked up again until the lease would expire.
	Lease(ctx context.Context, visibility time.Duration) (RowTask, bool, error)
	MarkDone(ctx context.Context, taskID, summary string) error
	// BumpRetry atomically increments retries and returns the new count, so
	// the caller can decide whether the budget is spent without a separate
	// read.
	BumpRetry(ctx context.Context, taskID, reason string) (int, error)
	Reschedule(ctx context.Context, taskID string, nextDelivery time.Time) error
	MarkFail(ctx context.Context, taskID, reason string) error
	// ReapStaleLeases pulls every PENDING row's next_delivery back to now,
	// reclaiming leases left over from a worker that crashed mid-task. It is
	// meant to be called once, at worker startup, before the poll loop begins
	// leasing work.
	ReapStaleLeases(ctx context.Context) (int64, error)
}

type (
	// PG creates bound queries for a given Queryer.
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder.
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation.
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Insert(ctx context.Context, t RowTask) error {
	const sql = `
insert into bookmark_task (task_id, user_id, url, status, tags, next_delivery, retries, created_at, updated_at)
values ($1, $2, $3, 'PENDING', $4, now(), 0, now(), now())`
	_, err := r.q.Exec(ctx, sql, t.TaskID, t.UserID, t.URL, t.Tags)
	if err != nil {
		return perr.FromPostgresWithField(err, "enqueue task")
	}
	return nil
}

// Lease is grounded on the consent_verifications leasing CTE: select ready
// rows FOR UPDATE SKIP LOCKED, then push their visibility window out in the
// same statement so a second concurrent worker's SKIP LOCKED scan simply
// passes over them.
func (r *queries) Lease(ctx context.Context, visibility time.Duration) (RowTask, bool, error) {
	const sql = `
with ready as (
    select task_id
    from bookmark_task
    where status = 'PENDING' and next_delivery <= now()
    order by next_delivery asc, created_at asc
    limit 1
    for update skip locked
), upd as (
    update bookmark_task t
    set next_delivery = now() + $1::interval, updated_at = now()
    where t.task_id in (select task_id from ready)
    returning t.*
)
select task_id, user_id, url, status, tags, coalesce(summary, ''), next_delivery,
       retries, coalesce(fail_reason, ''), created_at, updated_at
from upd`
	var t RowTask
	err := r.q.QueryRow(ctx, sql, visibility.String()).Scan(
		&t.TaskID, &t.UserID, &t.URL, &t.Status, &t.Tags, &t.Summary, &t.NextDelivery,
		&t.Retries, &t.FailReason, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if perr.IsNoRows(err) {
			return RowTask{}, false, nil
		}
		return RowTask{}, false, perr.FromPostgresWithField(err, "lease task")
	}
	return t, true, nil
}

func (r *queries) MarkDone(ctx context.Context, taskID, summary string) error {
	const sql = `
update bookmark_task
set status = 'DONE', summary = nullif($2, ''), updated_at = now()
where task_id = $1`
	ct, err := r.q.Exec(ctx, sql, taskID, summary)
	if err != nil {
		return perr.FromPostgresWithField(err, "mark task done")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("task %s not found", taskID)
	}
	return nil
}

func (r *queries) BumpRetry(ctx context.Context, taskID, reason string) (int, error) {
	const sql = `
update bookmark_task
set retries = retries + 1, fail_reason = nullif($2, ''), updated_at = now()
where task_id = $1
returning retries`
	var retries int
	err := r.q.QueryRow(ctx, sql, taskID, reason).Scan(&retries)
	if err != nil {
		if perr.IsNoRows(err) {
			return 0, perr.NotFoundf("task %s not found", taskID)
		}
		return 0, perr.FromPostgresWithField(err, "bump task retry")
	}
	return retries, nil
}

func (r *queries) Reschedule(ctx context.Context, taskID string, nextDelivery time.Time) error {
	const sql = `
update bookmark_task
set next_delivery = $2, updated_at = now()
where task_id = $1`
	ct, err := r.q.Exec(ctx, sql, taskID, nextDelivery)
	if err != nil {
		return perr.FromPostgresWithField(err, "reschedule task")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("task %s not found", taskID)
	}
	return nil
}

func (r *queries) MarkFail(ctx context.Context, taskID, reason string) error {
	const sql = `
update bookmark_task
set status = 'FAIL', fail_reason = nullif($2, ''), updated_at = now()
where task_id = $1`
	ct, err := r.q.Exec(ctx, sql, taskID, reason)
	if err != nil {
		return perr.FromPostgresWithField(err, "mark task fail")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("task %s not found", taskID)
	}
	return nil
}

// ReapStaleLeases resets next_delivery to now() for every PENDING row still
// parked in the future. That covers rows a previous process leased and never
// acked, which would otherwise wait out the visibility window, and also rows
// AckRetry rescheduled with a backoff delay, which become ready at once.
func (r *queries) ReapStaleLeases(ctx context.Context) (int64, error) {
	const sql = `
update bookmark_task
set next_delivery = now(), updated_at = now()
where status = 'PENDING' and next_delivery > now()`
	ct, err := r.q.Exec(ctx, sql)
	if err != nil {
		return 0, perr.FromPostgresWithField(err, "reap stale leases")
	}
	return ct.RowsAffected(), nil
}
