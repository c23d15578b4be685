// Command api runs the coaching-engine HTTP service: the suggestion and
// KPI-target API, the trusted ingest endpoint, and the outbound-job bridge.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kpi_coach_backend/internal/coach"
	"kpi_coach_backend/internal/dispatch"
	"kpi_coach_backend/internal/scheduler"
	"kpi_coach_backend/internal/server"
	"kpi_coach_backend/platform/config"
	"kpi_coach_backend/platform/db"
	"kpi_coach_backend/platform/logger"
	"kpi_coach_backend/platform/validator"

	"github.com/hibiken/asynq"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config may itself be broken; plain stderr is all we have.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The database may still be coming up when the service starts; retry
	// with backoff before giving up.
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrationsDir)
	}); err != nil {
		log.Error("migrations failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("database migrations complete")

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database connect failed", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	validate := validator.New()

	coachModule := coach.NewModule(pool, validate, log)
	dispatchModule := dispatch.NewModule(pool, validate, log)

	engine := server.NewRouter(cfg, log, db.NewPoolAdapter(pool), coachModule, dispatchModule)
	app := server.NewApp(cfg.GetHTTPAddr(), engine, log)

	// The bridge is optional: without Redis the API still serves, and
	// queued jobs wait for a deployment that has it.
	if cfg.GetRedisURL() != "" {
		connOpt, err := scheduler.RedisConnOpt(cfg)
		if err != nil {
			log.Error("redis config invalid", "error", err.Error())
			os.Exit(1)
		}
		client := asynq.NewClient(connOpt)
		defer client.Close()

		bridge := scheduler.NewBridge(dispatchModule.Jobs(), client, cfg.GetAsynqQueueName(), log)
		go bridge.Run(ctx)
	} else {
		log.Warn("REDIS_URL not set; outbound bridge disabled")
	}

	if err := app.Run(ctx); err != nil {
		log.Error("http server failed", "error", err.Error())
		os.Exit(1)
	}

	// Give the bridge a moment to finish its tick before the pool closes.
	time.Sleep(100 * time.Millisecond)
	log.Info("shutdown complete")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
