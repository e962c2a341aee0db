package main

import (
	"context"
	"log"

	"teamhub/config"
	"teamhub/internal/handler"
	"teamhub/internal/presence"
	"teamhub/internal/redis"
	"teamhub/internal/repository"
	"teamhub/internal/server"
	"teamhub/internal/services"
	"teamhub/internal/storage"
	"teamhub/pkg/database"
	"teamhub/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	// Database
	database.Connect(cfg)
	defer database.Close()
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}
	if err := database.ApplyRawMigrations("migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	seedCfg := database.DefaultSeedConfig()
	if cfg.SeedAdminPassword != "" {
		seedCfg.AdminPassword = cfg.SeedAdminPassword
	}
	if err := database.Seed(seedCfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Redis is optional; the cache and rate limiter degrade to no-ops
	// without it.
	var cache *redis.CacheStore
	var limiter *redis.RateLimiter
	if cfg.RedisHost != "" {
		redis.Initialize(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		cache = redis.NewCacheStore(redis.GetClient(), redis.DefaultCacheConfig())
		limiter = redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())
	}

	// Object storage is optional; attachment downloads require it.
	var store *storage.Client
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		store = s3Client
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	roomRepo := repository.NewRoomRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	taskRepo := repository.NewTaskRepository(database.DB)

	// Hub and services
	registry := presence.NewRegistry()
	hub := server.NewHub(registry, cache)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryMin)
	chatService := services.NewChatService(userRepo, roomRepo, messageRepo, registry, cache, store, hub)
	taskService := services.NewTaskService(taskRepo, userRepo)

	go hub.Run()
	defer hub.Stop()

	// HTTP surface
	handlers := &server.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Chat:      handler.NewChatHandler(chatService),
		Task:      handler.NewTaskHandler(taskService),
		Admin:     handler.NewAdminHandler(chatService, authService, userRepo),
		WebSocket: server.NewWebSocketHandler(hub, authService, chatService),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
