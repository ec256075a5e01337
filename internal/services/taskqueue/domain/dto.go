// Package domain holds the Task Queue's (component D) entity types and port
// contracts: a durable, competitively leased queue over the bookmark_task
// table.
package domain

import "time"

// Status is a task's lifecycle state. Transitions are monotonic: PENDING may
// become DONE or FAIL; DONE and FAIL are terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
	StatusFail    Status = "FAIL"
)

// MaxRetries is the retry budget before a task goes FAIL.
const MaxRetries = 5

// Task is one row of the bookmark_task table.
type Task struct {
	TaskID       string
	UserID       string
	URL          string
	Status       Status
	Tags         []string
	Summary      string
	NextDelivery time.Time
	Retries      int
	FailReason   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
