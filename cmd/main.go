package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/internal/handler"
	"github.com/streamhive/streamhive/internal/middleware"
	"github.com/streamhive/streamhive/internal/repository"
	"github.com/streamhive/streamhive/internal/router"
	"github.com/streamhive/streamhive/internal/service"
	"github.com/streamhive/streamhive/pkg/circuit"
	"github.com/streamhive/streamhive/pkg/database"
	"github.com/streamhive/streamhive/pkg/logger"
	"github.com/streamhive/streamhive/pkg/redis"
	"github.com/streamhive/streamhive/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config.Database)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Redis is optional; the cache layer degrades to misses without it.
	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient, err = redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.GetLogger().Info("Redis client initialized")
		}
	}

	// Media storage behind a circuit breaker.
	mediaBreaker := circuit.NewBreaker("s3-media", circuit.DefaultConfig(), logger.GetLogger())

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mediaStore, err := storage.NewS3Store(startupCtx, config.Media, mediaBreaker)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)

	// Services
	jwtService := service.NewJWTService(config.JWT)
	cacheService := service.NewCacheService(redisClient)
	userService := service.NewUserService(userRepo, videoRepo, jwtService, mediaStore, cacheService)
	videoService := service.NewVideoService(videoRepo, userRepo, mediaStore, cacheService)
	commentService := service.NewCommentService(commentRepo, videoRepo)
	tweetService := service.NewTweetService(tweetRepo, userRepo)
	playlistService := service.NewPlaylistService(playlistRepo, videoRepo, userRepo)

	// Handlers
	stager := handler.NewUploadStager(config.Upload)
	authHandler := handler.NewAuthHandler(userService, stager, config)
	userHandler := handler.NewUserHandler(userService, stager)
	videoHandler := handler.NewVideoHandler(videoService, stager)
	commentHandler := handler.NewCommentHandler(commentService)
	tweetHandler := handler.NewTweetHandler(tweetService)
	playlistHandler := handler.NewPlaylistHandler(playlistService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(jwtService, userRepo)
	handler.RegisterValidators()

	engine := router.NewRouter(
		authHandler,
		userHandler,
		videoHandler,
		commentHandler,
		tweetHandler,
		playlistHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: engine,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server stopped")
}
