package main

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"

	"ows-backend/internal/ai"
	"ows-backend/internal/config"
	"ows-backend/internal/logger"
	"ows-backend/internal/queue"
	"ows-backend/internal/repository"
	"ows-backend/internal/storage"
	"ows-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(disconnectCtx)
	}()
	db := mongoClient.Database(cfg.DBName)

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.MediaBucket, cfg.S3Endpoint)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	var geminiClient *ai.GeminiClient
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client:", err)
		}
		defer geminiClient.Close()
	}

	mediaRepo := repository.NewMediaRepository(db)
	contentRepo := repository.NewContentRepository(db)
	ticketStore := repository.NewTicketStore(rdb)

	dispatcher := queue.NewClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	defer dispatcher.Close()

	mediaService := services.NewMediaService(store, mediaRepo, ticketStore, dispatcher, cfg, nil)
	processor := queue.NewTaskProcessor(store, mediaService, geminiClient, cfg)

	// Periodic reclaim of expired-ticket uploads and delete leftovers.
	sweeper := services.NewSweepService(store, cfg.SweepMinAge, mediaRepo, contentRepo)
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.SweepInterval).Do(func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := sweeper.Sweep(sweepCtx); err != nil {
			logger.Error("sweep pass failed", "error", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule sweep:", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskDeriveThumbnail, processor.HandleThumbnailTask)
	mux.HandleFunc(queue.TaskDeriveSummary, processor.HandleSummaryTask)

	logger.Info("starting derivation worker",
		"redis", redisOpt.Addr,
		"sweep_interval", cfg.SweepInterval.String())

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
