package tasks

import (
	"context"
	"log/slog"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands badge evaluation to the worker. When the queue is
// unreachable it evaluates inline so no award is lost.
type QueueDispatcher struct {
	client   Enqueuer
	fallback badges.Dispatcher
	logger   *slog.Logger
}

func NewQueueDispatcher(client Enqueuer, fallback badges.Dispatcher, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, fallback: fallback, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, profileID uuid.UUID, trigger badges.Trigger) error {
	task, err := NewBadgeEvaluateTask(BadgeEvaluatePayload{ProfileID: profileID, Trigger: trigger})
	if err != nil {
		return err
	}

	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		d.logger.Warn("enqueue badge evaluation failed, evaluating inline",
			"profile_id", profileID,
			"trigger", trigger,
			"error", err,
		)
		if d.fallback == nil {
			return err
		}
		return d.fallback.Dispatch(ctx, profileID, trigger)
	}
	return nil
}

var _ badges.Dispatcher = (*QueueDispatcher)(nil)
