package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"salesdocs/internal/domain/documents"
	"salesdocs/pkg/logger"
)

// Enqueuer is the part of *asynq.Client the notifier uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier implements documents.Notifier by enqueueing a task.
type Notifier struct {
	queue Enqueuer
}

var _ documents.Notifier = (*Notifier)(nil)

func NewNotifier(queue Enqueuer) *Notifier {
	return &Notifier{queue: queue}
}

// DocumentIssued enqueues the notification. A duplicate task id means the
// notification is already queued and is not an error.
func (n *Notifier) DocumentIssued(ctx context.Context, ev documents.DocumentIssued) error {
	task, err := NewDocumentIssuedTask(ev)
	if err != nil {
		return err
	}
	info, err := n.queue.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Debug(ctx, "notification already queued", "code", ev.Code)
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskDocumentIssued, err)
	}
	logger.Debug(ctx, "notification queued", "code", ev.Code, "task_id", info.ID)
	return nil
}

// Close releases the queue client when it holds resources.
func (n *Notifier) Close() error {
	if c, ok := n.queue.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
