package tasks

import (
	"fmt"

	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/hibiken/asynq"
)

// Registrar is the part of *asynq.Scheduler used to install periodic tasks.
type Registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// RegisterSchedule installs the periodic event closeout.
func RegisterSchedule(r Registrar, closeoutCron string) (string, error) {
	if err := util.ValidateCronExpr(closeoutCron); err != nil {
		return "", fmt.Errorf("closeout schedule: %w", err)
	}
	id, err := r.Register(closeoutCron, NewEventsCloseoutTask())
	if err != nil {
		return "", fmt.Errorf("registering closeout: %w", err)
	}
	return id, nil
}
