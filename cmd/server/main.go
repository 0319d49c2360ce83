package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/danghamo/presence/internal/api"
	"github.com/danghamo/presence/pkg/config"
	"github.com/danghamo/presence/pkg/redisx"
)

func main() {
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting presence tracking server",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Server.Environment),
	)

	var redisClient *redisx.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient, err = redisx.NewClient(redisURL, log)
	} else {
		redisClient, err = redisx.NewClientFromConfig(&cfg.Redis, log)
	}
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	serverConfig := api.ServerConfig{
		Port:        cfg.Server.Port,
		Host:        cfg.Server.Host,
		ReadTimeout: 15 * time.Second,
		// SSE streams stay open indefinitely, so no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	apiServer := api.NewServer(serverConfig, cfg, log, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
