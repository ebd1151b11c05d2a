package queue

import (
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/pkg/config"
	"github.com/hibiken/asynq"
)

// Queue names. Badge evaluation is user visible so it gets most of the
// worker's attention; maintenance ticks can wait.
const (
	QueueBadges      = "badges"
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
	}
}

func NewClient(cfg *config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

func NewServer(cfg *config.RedisConfig, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueBadges:      6,
				QueueDefault:     3,
				QueueMaintenance: 1,
			},
		},
	)
}

func NewScheduler(cfg *config.RedisConfig) *asynq.Scheduler {
	return asynq.NewScheduler(redisOpt(cfg), &asynq.SchedulerOpts{
		Location: time.UTC,
	})
}
