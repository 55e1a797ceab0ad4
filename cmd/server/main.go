package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisAdapter "github.com/srijonashraf/sellswipe-server/internal/adapter/cache/redis"
	natsAdapter "github.com/srijonashraf/sellswipe-server/internal/adapter/messaging/nats"
	mongoRepo "github.com/srijonashraf/sellswipe-server/internal/adapter/repository/mongodb"
	minioAdapter "github.com/srijonashraf/sellswipe-server/internal/adapter/storage/minio"

	"github.com/srijonashraf/sellswipe-server/internal/config"
	"github.com/srijonashraf/sellswipe-server/internal/mailer"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
	"github.com/srijonashraf/sellswipe-server/internal/platform/tracer"
	httpPort "github.com/srijonashraf/sellswipe-server/internal/port/http"
	"github.com/srijonashraf/sellswipe-server/internal/usecase"

	"github.com/joho/godotenv"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "sellswipe-server"

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Initialize Logger
	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	// 2. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Configuration loaded successfully",
		zap.String("http_port", cfg.HTTP.Port),
		zap.Bool("mongo_uri_set", cfg.Mongo.URI != ""),
		zap.String("nats_url", cfg.NATS.URL),
		zap.String("metrics_port", cfg.Metrics.Port),
	)

	// 3. Initialize OpenTelemetry Tracer
	var tp *sdktrace.TracerProvider
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		tp = tracer.InitTracer(serviceName)
		defer func() {
			appLogger.Info("Shutting down tracer provider...")
			ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := tp.Shutdown(ctxShutdown); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
		appLogger.Info("OpenTelemetry Tracer initialized.")
	} else {
		appLogger.Info("OpenTelemetry Tracer not initialized (OTEL_EXPORTER_OTLP_ENDPOINT not set).")
	}

	// 4. Connect to MongoDB
	mongoClient, err := mongoRepo.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	appLogger.Info("Successfully connected to MongoDB.")

	// 5. Initialize Redis Cache
	redisClient, err := redisAdapter.NewRedisClient(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	cacheRepo := redisAdapter.NewRedisCacheRepository(redisClient, appLogger)
	appLogger.Info("Redis cache initialized.")

	// 6. Initialize NATS Publisher
	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATS.URL, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()
	appLogger.Info("NATS Publisher initialized.")

	// 7. Initialize MinIO Asset Storage
	assetStorage, err := minioAdapter.NewStorage(&cfg.MinIO, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize MinIO storage", zap.Error(err))
	}
	appLogger.Info("MinIO asset storage initialized.", zap.String("bucket", cfg.MinIO.Bucket))

	// 8. Initialize SMTP Mailer
	mailSender, err := mailer.NewSMTPSender(&cfg.SMTP, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize SMTP mailer", zap.Error(err))
	}
	appLogger.Info("SMTP mailer initialized.")

	// 9. Initialize Repositories
	postRepo, err := mongoRepo.NewPostRepository(mongoClient, cfg.Mongo.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize PostRepository", zap.Error(err))
	}
	userRepo, err := mongoRepo.NewUserRepository(mongoClient, cfg.Mongo.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize UserRepository", zap.Error(err))
	}
	searchRepo := mongoRepo.NewSearchRepository(mongoClient, cfg.Mongo.Database, appLogger)
	appLogger.Info("Repositories initialized.")

	// 10. Initialize Metrics
	metricsManager := metrics.NewMetricsManager(serviceName)
	if cfg.Metrics.Port != "" {
		go func() {
			appLogger.Info("Starting Prometheus metrics server", zap.String("port", cfg.Metrics.Port))
			if err := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("Prometheus metrics server not started (metrics port not set).")
	}

	// 11. Initialize Usecases
	imageManager := usecase.NewImageLifecycleManager(assetStorage, appLogger)
	postUsecase := usecase.NewPostUsecase(postRepo, imageManager, natsPublisher, cacheRepo, metricsManager, appLogger)
	moderationUsecase := usecase.NewModerationUsecase(postRepo, userRepo, natsPublisher, mailSender, cacheRepo, metricsManager, appLogger)
	searchUsecase := usecase.NewSearchUsecase(searchRepo, postRepo, cacheRepo, appLogger)
	appLogger.Info("Usecases initialized.")

	// 12. Initialize HTTP Handlers and Router
	handler := httpPort.NewHandler(postUsecase, searchUsecase, moderationUsecase, cfg.Uploads.TempDir, metricsManager, appLogger)
	adminHandler := httpPort.NewAdminHandler(moderationUsecase, metricsManager, appLogger)
	router := httpPort.NewRouter(handler, adminHandler, metricsManager)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	appLogger.Info("HTTP server stopped.")

	appLogger.Info("Application shutting down...")
	appLogger.Sync()
}
