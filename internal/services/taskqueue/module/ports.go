package module

import dom "bookmarkhub/internal/services/taskqueue/domain"

// Ports holds the ports exposed by the task queue module.
type Ports struct {
	Queue    dom.QueuePort
	Enqueuer dom.EnqueuePort
}
