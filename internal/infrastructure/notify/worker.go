package notify

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

// Worker wraps the asynq server that consumes notification tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewWorker registers handler for TaskDocumentIssued.
func NewWorker(redisOpts asynq.RedisClientOpt, concurrency int, handler asynq.Handler) *Worker {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueNotifications: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.Handle(TaskDocumentIssued, handler)
	return &Worker{server: srv, mux: mux}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
