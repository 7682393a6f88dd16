package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ows-backend/internal/config"
	"ows-backend/internal/logger"
	"ows-backend/internal/queue"
	"ows-backend/internal/repository"
	"ows-backend/internal/storage"
	"ows-backend/internal/telemetry"
	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/routes"
	"ows-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	// Tracing is optional: without a collector endpoint spans are dropped
	// locally.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTracer(ctx, "ows-backend", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				shutdown(shutdownCtx)
			}()
		}
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	}

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

	mediaRepo := repository.NewMediaRepository(db)
	contentRepo := repository.NewContentRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	ticketStore := repository.NewTicketStore(rdb)

	dispatcher := queue.NewClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	defer dispatcher.Close()

	mediaService := services.NewMediaService(store, mediaRepo, ticketStore, dispatcher, cfg, metrics)

	auditor := models.NewAuditLogger(db.Collection("audit_events"))
	defer auditor.Close()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	router.Use(middleware.AuditMiddleware(auditor))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.GET("/ready", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Ping(checkCtx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
			return
		}
		if err := rdb.Ping(checkCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	roleMiddleware := middleware.NewRoleMiddleware()

	routes.SetupMediaRoutes(router, mediaService, authMiddleware, roleMiddleware)
	routes.SetupDerivationRoutes(router, mediaService, cfg)
	routes.SetupShowRoutes(router, contentRepo, mediaService, authMiddleware, roleMiddleware)
	routes.SetupVenueRoutes(router, contentRepo, authMiddleware, roleMiddleware)
	routes.SetupUpdateRoutes(router, contentRepo, mediaService, authMiddleware, roleMiddleware)
	routes.SetupPressRoutes(router, contentRepo, store, cfg, authMiddleware, roleMiddleware)
	routes.SetupCategoryRoutes(router, contentRepo, authMiddleware, roleMiddleware)
	routes.SetupEmbedRoutes(router, mediaService, contentRepo, apiKeyRepo)
	routes.SetupAdminRoutes(router, apiKeyRepo, authMiddleware, roleMiddleware)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
