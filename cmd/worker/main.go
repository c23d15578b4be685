// Command worker runs the asynq delivery worker for outbound jobs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kpi_coach_backend/internal/dispatch/repository"
	"kpi_coach_backend/internal/scheduler"
	"kpi_coach_backend/platform/config"
	"kpi_coach_backend/platform/db"
	"kpi_coach_backend/platform/logger"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	if cfg.GetRedisURL() == "" {
		log.Error("REDIS_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database connect failed", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	connOpt, err := scheduler.RedisConnOpt(cfg)
	if err != nil {
		log.Error("redis config invalid", "error", err.Error())
		os.Exit(1)
	}

	queue := cfg.GetAsynqQueueName()
	srv := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{queue: 1},
	})

	jobs := repository.NewJobRepo(pool)
	deliverHandler := scheduler.NewDeliverHandler(jobs, scheduler.NewLogDeliverer(log), log)

	mux := asynq.NewServeMux()
	mux.Handle(scheduler.TaskOutboundDeliver, deliverHandler)

	go func() {
		<-ctx.Done()
		log.Info("worker shutting down")
		srv.Shutdown()
	}()

	log.Info("worker started", "queue", queue, "concurrency", cfg.GetAsynqConcurrency())
	if err := srv.Run(mux); err != nil {
		log.Error("worker failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
