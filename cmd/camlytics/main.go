package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"camlytics/internal/auth"
	"camlytics/internal/client"
	"camlytics/internal/config"
	"camlytics/internal/db"
	"camlytics/internal/dedupe"
	"camlytics/internal/events"
	httphandler "camlytics/internal/http"
	"camlytics/internal/http/middleware"
	"camlytics/internal/logger"
	"camlytics/internal/repository"
	"camlytics/internal/service"
	"camlytics/internal/storage"
	"camlytics/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to load AWS config")
	}

	visionClient := vision.New(awsCfg)
	imageStore := storage.NewImageStore(awsCfg, cfg.AWS.S3Bucket, cfg.AWS.PresignTTL)

	var publisher *events.Publisher
	if cfg.AWS.SQSEventsQueueURL != "" {
		publisher = events.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.AWS.SQSEventsQueueURL, appLogger)
	} else {
		appLogger.Warn().Msg("SQS_EVENTS_QUEUE_URL not configured, detection events disabled")
	}

	var repeatChecker *dedupe.Checker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repeatChecker = dedupe.NewChecker(rdb, cfg.Detection.DedupeWindow)
	}

	complianceClient := client.NewComplianceClient(cfg)
	if !complianceClient.Enabled() {
		appLogger.Warn().Msg("COMPLIANCE_SERVICE_URL not configured, compliance stays UNKNOWN")
	}

	detectionRepo := repository.NewDetectionRepository(database)
	hub := httphandler.NewHub(appLogger)
	go hub.Run()

	detectionService := service.NewDetectionService(
		detectionRepo,
		visionClient,
		imageStore,
		complianceClient,
		publisher,
		repeatChecker,
		hub,
		cfg.Detection.DedupeWindow,
		appLogger,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(detectionService, hub, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting camlytics service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
