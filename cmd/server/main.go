package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/tasks"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/config"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/crypto"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/queue"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, "server")
	slog.SetDefault(logger)

	logger.Info("starting VolunteerSync server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Production schemas are applied with the admin migrate command.
	if cfg.Server.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient.Close()
		redisClient = nil
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}
	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, using generated key - emergency contacts will be unreadable after restart")
	}

	// Badge evaluation goes through the worker when Redis is up and runs
	// inline otherwise.
	badgeService := badges.NewService(db, logger)
	var dispatcher badges.Dispatcher = badges.NewInlineDispatcher(badgeService)
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		dispatcher = tasks.NewQueueDispatcher(asynqClient, dispatcher, logger)
	}

	var limiter middleware.LimitStore
	var memoryStore *middleware.MemoryStore
	if cfg.RateLimit.Distributed && redisClient != nil {
		limiter = middleware.NewRedisStore(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	} else {
		if cfg.RateLimit.Distributed {
			logger.Warn("distributed rate limiting requested without Redis, limiting per instance")
		}
		memoryStore = middleware.NewMemoryStore(cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
		limiter = memoryStore
	}

	var google auth.IdentityProvider
	if cfg.OAuth.GoogleEnabled() {
		google = auth.NewGoogleProvider(&cfg.OAuth)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		BadgeService:   badgeService,
		Dispatcher:     dispatcher,
		Sealer:         encryptor,
		Google:         google,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimiter:    limiter,
		SecureCookies:  !cfg.Server.IsDevelopment(),
		TokenTTL:       cfg.JWT.Expiry(),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if memoryStore != nil {
		memoryStore.Close()
	}
	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
