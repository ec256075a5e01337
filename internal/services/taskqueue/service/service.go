// Package service implements the Task Queue (component D): a durable,
// competitively leased work queue over bookmark_task, handing out retry
// backoff and terminal-state transitions per the ingestion pipeline's needs.
package service

import (
	"context"
	"time"

	"bookmarkhub/internal/core/textproc"
	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"
	"bookmarkhub/internal/services/taskqueue/domain"
	"bookmarkhub/internal/services/taskqueue/repo"

	"github.com/google/uuid"
)

// Config tunes the retry/lease schedule.
type Config struct {
	MaxRetries int
	RetryBase  time.Duration
	RetryCap   time.Duration
}

// DefaultConfig mirrors the spec's retry budget: five attempts, 30s base
// backoff capped at 15 minutes.
func DefaultConfig() Config {
	return Config{MaxRetries: domain.MaxRetries, RetryBase: 30 * time.Second, RetryCap: 15 * time.Minute}
}

// Svc implements domain.QueuePort over a bound Repo.
type Svc struct {
	cfg  Config
	repo repo.Repo
}

// New creates a new task queue service.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Svc {
	if db == nil {
		panic("taskqueue.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("taskqueue.Service requires a non nil Repo binder")
	}
	return &Svc{cfg: cfg, repo: binder.Bind(db)}
}

// Enqueue creates a new PENDING task ready for immediate lease.
func (s *Svc) Enqueue(ctx context.Context, userID, url string, tags []string) (domain.Task, error) {
	id, err := textproc.BookmarkID(url)
	if err != nil {
		return domain.Task{}, perr.InvalidArgf("invalid url %q: %v", url, err)
	}
	row := repo.RowTask{
		TaskID: uuid.NewString() + ":" + id,
		UserID: userID,
		URL:    url,
		Tags:   textproc.NormalizeTags(tags),
		Status: string(domain.StatusPending),
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return domain.Task{}, err
	}
	now := time.Now().UTC()
	return domain.Task{
		TaskID: row.TaskID, UserID: userID, URL: url, Status: domain.StatusPending,
		Tags: row.Tags, NextDelivery: now, CreatedAt: now, UpdatedAt: now,
	}, nil
}

// Lease claims at most one ready task, extending its visibility window so
// concurrent workers skip it until the lease would expire.
func (s *Svc) Lease(ctx context.Context, workerID string, visibility time.Duration) (domain.Task, bool, error) {
	row, found, err := s.repo.Lease(ctx, visibility)
	if err != nil || !found {
		return domain.Task{}, found, err
	}
	return toDomain(row), true, nil
}

// AckDone marks a task DONE with its produced summary.
func (s *Svc) AckDone(ctx context.Context, taskID, summary string) error {
	return s.repo.MarkDone(ctx, taskID, summary)
}

// AckRetry bumps the retry count and reschedules the task, or moves it to
// FAIL once the retry budget is spent.
func (s *Svc) AckRetry(ctx context.Context, taskID, reason string) error {
	retries, err := s.repo.BumpRetry(ctx, taskID, reason)
	if err != nil {
		return err
	}
	if retries >= s.cfg.MaxRetries {
		return s.repo.MarkFail(ctx, taskID, reason)
	}
	next := time.Now().UTC().Add(backoff(retries, s.cfg.RetryBase, s.cfg.RetryCap))
	return s.repo.Reschedule(ctx, taskID, next)
}

// AckFatal moves a task straight to FAIL.
func (s *Svc) AckFatal(ctx context.Context, taskID, reason string) error {
	return s.repo.MarkFail(ctx, taskID, reason)
}

// ReapStaleLeases reclaims leases left behind by a crashed worker.
func (s *Svc) ReapStaleLeases(ctx context.Context) (int64, error) {
	return s.repo.ReapStaleLeases(ctx)
}

func toDomain(r repo.RowTask) domain.Task {
	return domain.Task{
		TaskID: r.TaskID, UserID: r.UserID, URL: r.URL, Status: domain.Status(r.Status),
		Tags: r.Tags, Summary: r.Summary, NextDelivery: r.NextDelivery, Retries: r.Retries,
		FailReason: r.FailReason, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}
