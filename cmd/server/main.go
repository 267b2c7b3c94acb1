package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lasroun/collectgate/internal/config"
	httpServer "github.com/lasroun/collectgate/internal/http"
	"github.com/lasroun/collectgate/internal/http/middleware"
	"github.com/lasroun/collectgate/internal/provider/fedapay"
	"github.com/lasroun/collectgate/internal/realtime/websocket"
	redisRepo "github.com/lasroun/collectgate/internal/repository/redis"
	"github.com/lasroun/collectgate/internal/service"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env when present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set log level based on environment
	if cfg.App.Env == "development" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("starting collectgate",
		"version", cfg.App.Version,
		"environment", cfg.App.Env,
		"fedapay_env", cfg.FedaPay.Environment,
	)

	// Initialize Redis client
	ctx := context.Background()
	redisClient, err := initRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cache := redisRepo.NewCache(redisClient)
	pubsub := redisRepo.NewPubSub(redisClient, logger)

	// Initialize FedaPay client
	fedapayClient := fedapay.NewClient(cfg.FedaPay)

	// Initialize collect service
	collectService := service.NewCollectService(
		fedapayClient,
		cfg.FedaPay.Environment,
		cfg.FedaPay.WebhookSecret,
		pubsub,
		logger,
	)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(pubsub, logger)
	go wsHub.Run()
	wsHandler := websocket.NewHandler(wsHub, logger)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuth(cfg.Auth, logger)

	// Initialize HTTP server
	server := httpServer.NewServer(
		cfg,
		collectService,
		authMiddleware,
		cache,
		wsHandler,
		logger,
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wsHub.Stop()

	logger.Info("server stopped")
}

// initRedis initializes the Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("redis connected",
		"addr", cfg.Addr,
		"db", cfg.DB,
	)

	return client, nil
}
