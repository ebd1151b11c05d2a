package tasks

import (
	"encoding/json"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/queue"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeBadgeEvaluate  = "badges:evaluate"
	TypeEventsCloseout = "events:closeout"
)

// BadgeEvaluatePayload asks the worker to re-check one profile's badges.
type BadgeEvaluatePayload struct {
	ProfileID uuid.UUID      `json:"profile_id"`
	Trigger   badges.Trigger `json:"trigger"`
}

func NewBadgeEvaluateTask(payload BadgeEvaluatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBadgeEvaluate, data,
		asynq.Queue(queue.QueueBadges),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewEventsCloseoutTask has no payload: every ended event is closed.
func NewEventsCloseoutTask() *asynq.Task {
	return asynq.NewTask(TypeEventsCloseout, nil,
		asynq.Queue(queue.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
}
