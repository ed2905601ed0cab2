package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"reviewpulse/internal/api"
	"reviewpulse/internal/app"
	"reviewpulse/internal/config"
	"reviewpulse/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("REVIEWPULSE_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, false)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	a, closeFn, err := app.Build(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}
	defer closeFn()

	if n, err := a.LoadReviews(context.Background()); err != nil {
		logger.Warn("initial review load failed", zap.Error(err))
	} else {
		logger.Info("reviews loaded", zap.Int("count", n))
	}

	server := api.NewServer(a, logger.Named("api"))

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
