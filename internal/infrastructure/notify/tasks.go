// Package notify delivers "document issued" notifications through an
// asynq queue. The API process enqueues; the worker sends the email.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"salesdocs/internal/domain/documents"
)

const (
	// QueueNotifications holds outgoing notification tasks.
	QueueNotifications = "notifications"
	// TaskDocumentIssued is sent once per issued quote or invoice.
	TaskDocumentIssued = "document:issued"

	maxRetry = 10
)

// NewDocumentIssuedTask constructs the queue task for ev.
func NewDocumentIssuedTask(ev documents.DocumentIssued) (*asynq.Task, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", TaskDocumentIssued, err)
	}
	return asynq.NewTask(TaskDocumentIssued, data,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxRetry),
		// One notification per document status: a re-enqueue after a
		// retried request is dropped by the queue.
		asynq.TaskID(fmt.Sprintf("%s:%s:%s", TaskDocumentIssued, ev.DocumentID, ev.Status)),
	), nil
}
