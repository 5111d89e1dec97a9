package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/cmd/mainconfig"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/api/router"
	appconfig "github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/config"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/intake"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/leads"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/observability/metrics"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

func main() {
	// .env is optional; real environments inject config directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting quote intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	intakeMetrics := metrics.NewIntakeMetrics(nil)

	// Session storage: Postgres when configured, in-memory otherwise.
	var (
		sessionStore intake.SessionStore
		leadsRepo    leads.Repository
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		sessionStore = intake.NewPostgresStore(db)

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		sessionStore = intake.NewMemoryStore()
		leadsRepo = leads.NewInMemoryRepository()
	}

	// Photo annotations live in Redis with a TTL matching the session window.
	var annotations intake.AnnotationStore
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		annotations = intake.NewRedisAnnotationStore(redisClient)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Completion providers: Bedrock primary, Gemini secondary.
	var completion intake.CompletionClient
	bedrockClient := intake.NewBedrockCompletionClient(bedrockruntime.NewFromConfig(awsCfg))
	completion = bedrockClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := intake.NewGeminiCompletionClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		completion = intake.NewFallbackCompletionClient(bedrockClient, gemini, logger)
	}

	pipeline := intake.NewPipeline(completion, cfg.BedrockModelID, logger,
		intake.WithPipelineTimeout(cfg.CompletionTimeout),
		intake.WithPipelineMetrics(intakeMetrics),
	)

	engine := intake.NewEngine(sessionStore, pipeline, logger,
		intake.WithAnnotations(annotations),
		intake.WithEngineMetrics(intakeMetrics),
		intake.WithIdleTimeout(cfg.SessionIdleTimeout),
	)

	// Route session work through the queue so turns survive dispatcher
	// pressure; development uses the in-memory queue.
	var queue interface {
		intake.Service
		Shutdown(ctx context.Context) error
	}
	if cfg.UseMemoryQueue || cfg.IntakeQueueURL == "" {
		queue = intake.NewDispatcher(engine, intake.NewMemoryQueue(0), logger,
			intake.WithWorkerCount(cfg.WorkerCount))
	} else {
		sqsQueue := intake.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.IntakeQueueURL)
		queue = intake.NewDispatcher(engine, sqsQueue, logger,
			intake.WithWorkerCount(cfg.WorkerCount))
	}

	intakeHandler := intake.NewHandler(queue, logger)
	leadsHandler := leads.NewHandler(leadsRepo, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intakeHandler,
		IntakeService:      queue,
		LeadsHandler:       leadsHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		RateLimitPerSecond: 5,
		RateLimitBurst:     20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
