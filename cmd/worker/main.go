package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/tasks"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/config"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/queue"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, "worker")
	slog.SetDefault(logger)

	logger.Info("starting VolunteerSync worker", "concurrency", cfg.Worker.Concurrency)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	handler := tasks.NewHandler(logger, badges.NewService(db, logger), events.NewService(db, logger))
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := tasks.RegisterSchedule(scheduler, cfg.Worker.CloseoutCron)
	if err != nil {
		logger.Error("failed to register schedule", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	next, _ := util.NextCronTime(cfg.Worker.CloseoutCron, time.Now())
	logger.Info("scheduled event closeout", "cron", cfg.Worker.CloseoutCron, "entry_id", entryID, "next_run", next)

	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency)
	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		scheduler.Shutdown()
		os.Exit(1)
	}
	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	logger.Info("worker stopped")
}
