package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	workerPkg "deadline-notify/internal/infra/worker"
	"deadline-notify/internal/observability/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker exited with error", slog.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		return fmt.Errorf("load worker configuration: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Any("alert_days", workerConfig.AlertDays),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("max_display", workerConfig.MaxDisplay),
		slog.Int("message_budget", workerConfig.MessageBudget),
		slog.Bool("dry_run", workerConfig.DryRun),
		slog.Int("health_port", workerConfig.HealthPort))

	pipeline, err := workerPkg.BuildPipeline(workerConfig, workerPkg.PipelineOptions{DryRunOutput: os.Stdout}, logger)
	if err != nil {
		return err
	}
	logger.Info("announcement pipeline initialized", slog.Int("sources", pipeline.Sources))

	startMetricsServer(ctx, logger, pipeline.Notify)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := workerPkg.NewJob(pipeline.Announcer, workerConfig, workerMetrics, healthServer, logger)
	scheduler, err := workerPkg.NewScheduler(ctx, workerConfig, job, logger)
	if err != nil {
		return err
	}

	if workerConfig.RunOnStart {
		_, _ = job.Run(ctx)
	}

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Time("next_run", scheduler.Next()))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown signal received")

	// Let an in-flight pass finish its current message.
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	return nil
}
