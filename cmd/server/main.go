package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/devotional/internal/cache"
	"github.com/benvon/devotional/internal/config"
	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/handlers"
	"github.com/benvon/devotional/internal/logger"
	"github.com/benvon/devotional/internal/middleware"
	"github.com/benvon/devotional/internal/queue"
	"github.com/benvon/devotional/internal/services/ai"
	"github.com/benvon/devotional/internal/session"
	"github.com/benvon/devotional/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "devotional-api"

	// pruneInterval is how often idle sessions and conversations are dropped
	pruneInterval = 10 * time.Minute

	shutdownTimeout = 30 * time.Second
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLoggerWithFile(debugMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if err := run(cfg, zapLogger, debugMode); err != nil {
		zapLogger.Error("server_exited_with_error", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
	zapLogger.Info("server_exited")
}

func run(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("ai_configured", cfg.AIConfigured()),
		zap.String("ai_model", cfg.AIModel),
		zap.String("timezone", cfg.Timezone.String()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracing, shutdownTracing := telemetry.Setup(ctx, cfg.OTELEnabled, serviceName, cfg.OTELEndpoint, zapLogger)
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
	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	zapLogger.Info("connected_to_database", zap.Int("migrations_applied", applied))

	// Redis is optional: it backs the verse cache and the shared rate limit store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Warn("redis_unavailable_continuing_without_cache", zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
				}
			}()
			zapLogger.Info("connected_to_redis")
		}
	}

	// RabbitMQ is optional: without it journal reflections are generated inline
	var jobQueue *queue.RabbitMQQueue
	if cfg.RabbitMQURL != "" {
		jobQueue, err = connectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Warn("rabbitmq_unavailable_reflections_inline", zap.Error(err))
			jobQueue = nil
		} else {
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	}

	gateway := newGateway(cfg, redisClient, zapLogger, debugMode)

	manager := session.NewManager(database.NewProfileRepository(db), gateway,
		session.WithLocation(cfg.Timezone),
		session.WithLogger(zapLogger),
	)
	defer manager.Close()
	mentor := ai.NewMentorService(gateway)

	healthChecker := handlers.NewHealthChecker(db)
	if redisClient != nil {
		healthChecker.WithCheck("redis", handlers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	var publisher queue.Publisher
	if jobQueue != nil {
		healthChecker.WithCheck("queue", jobQueue)
		publisher = jobQueue
	}

	rateLimit, err := middleware.RateLimit(redisClient, cfg.RateLimit, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, outermost first
	if tracing {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL, zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"), zapLogger).RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.DeviceID(zapLogger))
	api.Use(rateLimit)
	handlers.NewOnboardingHandler(manager, zapLogger).RegisterRoutes(api)
	handlers.NewProfileHandler(manager, zapLogger).RegisterRoutes(api)
	handlers.NewDevotionalHandler(manager, zapLogger).RegisterRoutes(api)
	handlers.NewPlanHandler(manager, zapLogger).RegisterRoutes(api)
	handlers.NewMentorHandler(mentor).RegisterRoutes(api)
	handlers.NewJournalHandler(database.NewJournalRepository(db), gateway, publisher, cfg.Timezone, zapLogger).RegisterRoutes(api)

	// Preflight requests are answered by the CORS middleware
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		manager.StartPruner(gctx, pruneInterval, cfg.SessionIdleTimeout)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := mentor.PruneIdle(cfg.SessionIdleTimeout); n > 0 {
					zapLogger.Debug("mentor_sessions_pruned", zap.Int("count", n))
				}
			}
		}
	})

	return g.Wait()
}

// newGateway builds the content gateway. Without a credential it runs
// offline and every operation returns its fallback.
func newGateway(cfg *config.Config, redisClient *redis.Client, zapLogger *zap.Logger, debugMode bool) *ai.Gateway {
	opts := []ai.GatewayOption{ai.WithLogger(zapLogger)}
	if redisClient != nil {
		opts = append(opts, ai.WithVerseCache(cache.NewVerseCache(redisClient, cfg.VerseCacheTTL)))
	}

	if !cfg.AIConfigured() {
		zapLogger.Warn("ai_not_configured_running_offline")
		return ai.NewGateway(nil, opts...)
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, zapLogger, debugMode)
	gen, err := registry.GetProvider("openai", map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_running_offline", zap.Error(err))
		return ai.NewGateway(nil, opts...)
	}
	return ai.NewGateway(gen, opts...)
}

// connectRabbitMQ retries with exponential backoff to ride out broker startup
func connectRabbitMQ(ctx context.Context, url string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	const (
		maxRetries   = 5
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := min(initialDelay*time.Duration(1<<uint(attempt)), maxDelay)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", maxRetries, lastErr)
}
