package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/cache"
	"github.com/Baaaki/campus-market/internal/config"
	"github.com/Baaaki/campus-market/internal/database"
	"github.com/Baaaki/campus-market/internal/handler"
	"github.com/Baaaki/campus-market/internal/middleware"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/internal/validation"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.InitWithOptions(logger.Options{
		Development: !cfg.IsProduction(),
		File:        cfg.LogFile,
	}); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.RegisterGin(cfg.InstitutionalDomain)

	ctx := context.Background()

	database.Connect(cfg)
	database.Migrate()

	// Redis is optional: without it facets are not cached and auth is not rate limited
	var redisClient *redis.Client
	var facetCache cache.FacetCache = cache.NoopFacetCache{}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			redisClient = client
			defer redisClient.Close()
			facetCache = cache.NewRedisFacetCache(redisClient, cache.DefaultFacetTTL)
			logger.Log.Info("Redis connected")
		}
	}

	store, storagePath := newObjectStore(ctx, cfg)

	// Activity events also go to NATS when configured
	var publisher activity.Publisher
	if cfg.NATSURL != "" {
		natsPublisher, err := activity.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			logger.Log.Warn("NATS unavailable, activity events stay local", zap.Error(err))
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
			logger.Log.Info("NATS connected", zap.String("subject", activity.Subject))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	favoriteRepo := repository.NewFavoriteRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	activityRepo := repository.NewActivityRepository(database.DB)

	recorder := activity.NewRecorder(activityRepo, publisher)
	validate := validation.New(cfg.InstitutionalDomain)

	// Initialize services
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	productService := service.NewProductService(productRepo, favoriteRepo, store, facetCache, recorder, validate, cfg.PageSize)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo, cfg.PageSize)
	conversationService := service.NewConversationService(conversationRepo, messageRepo, productRepo)
	activityService := service.NewActivityService(activityRepo)

	routes := &handler.RouteConfig{
		JWTSecret:     cfg.JWTSecret,
		IsProduction:  cfg.IsProduction(),
		CORSOrigins:   cfg.CORSOrigins,
		StoragePath:   storagePath,
		Auth:          handler.NewAuthHandler(authService),
		Products:      handler.NewProductHandler(productService, favoriteService, conversationService),
		Favorites:     handler.NewFavoriteHandler(favoriteService),
		Conversations: handler.NewConversationHandler(conversationService),
		Admin:         handler.NewAdminHandler(authService, productService, activityService, cfg.PageSize),
	}
	if redisClient != nil {
		routes.AuthLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			Prefix:      "auth",
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
		})
	}

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           routes.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.ServerPort))
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server failed", zap.Error(err))
		}
	case sig := <-signals:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}

	// Let pending audit writes finish before their connections close
	recorder.Wait()
	logger.Log.Info("Server stopped")
}

// newObjectStore picks the image driver. The returned path is non-empty for
// the local driver, whose files the router serves itself.
func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, string) {
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		logger.Log.Info("Using S3 storage", zap.String("bucket", cfg.S3Bucket))
		return s3, ""
	default:
		local, err := storage.NewLocalStorage(cfg.StoragePath)
		if err != nil {
			logger.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		logger.Log.Info("Using local storage", zap.String("path", local.BasePath()))
		return local, local.BasePath()
	}
}
