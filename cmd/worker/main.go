// The worker drains the Redis job queue: audit events recorded on the
// decision path are persisted here, off the request path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forgegate-inc/forgegate/internal/infrastructure/config"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/database"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/jobs"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/repository"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting audit worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Errorw("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	auditRepo := repository.NewAuditEventRepository(database.Get(), log)
	queue := jobs.NewQueue(redisClient, "forgegate", 24*time.Hour, log)
	worker := jobs.NewWorker(queue, log)

	worker.Register(jobs.JobKindAuditEvent, func(ctx context.Context, job jobs.Job) error {
		event, err := jobs.EventFromJob(job)
		if err != nil {
			return err
		}
		return auditRepo.Record(ctx, event)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		log.Errorw("worker stopped with error", "error", err)
		os.Exit(1)
	}
}
