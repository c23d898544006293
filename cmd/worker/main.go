package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/devotional/internal/config"
	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/logger"
	"github.com/benvon/devotional/internal/queue"
	"github.com/benvon/devotional/internal/services/ai"
	"github.com/benvon/devotional/internal/telemetry"
	"github.com/benvon/devotional/internal/workers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "devotional-worker"

	backfillInterval = 15 * time.Minute
	dlqGCInterval    = time.Hour
	dlqRetention     = 7 * 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLoggerWithFile(debugMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if err := run(cfg, zapLogger, debugMode); err != nil {
		zapLogger.Error("worker_exited_with_error", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
	zapLogger.Info("worker_exited")
}

func run(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) error {
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Bool("ai_configured", cfg.AIConfigured()),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	_, shutdownTracing := telemetry.Setup(ctx, cfg.OTELEnabled, serviceName, cfg.OTELEndpoint, zapLogger)
	defer shutdownTracing()

	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	zapLogger.Info("connected_to_database")

	journalRepo := database.NewJournalRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	var gen ai.Generator
	if cfg.AIConfigured() {
		gen = ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	} else {
		zapLogger.Warn("ai_not_configured_storing_offline_reflections")
	}
	gateway := ai.NewGateway(gen, ai.WithLogger(zapLogger))

	worker := workers.NewReflectionWorker(gateway, journalRepo, jobQueue, zapLogger)
	backfill := workers.NewReflectionBackfill(jobQueue, journalRepo, zapLogger)
	gc := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqRetention, zapLogger)

	msgs, errs, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}
	zapLogger.Info("worker_started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx, msgs, errs)
	})
	g.Go(func() error {
		backfill.Start(gctx, backfillInterval)
		return nil
	})
	g.Go(func() error {
		gc.Start(gctx)
		return nil
	})

	err = g.Wait()
	zapLogger.Info("worker_shutting_down")
	return err
}
