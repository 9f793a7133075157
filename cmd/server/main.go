package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/config"
	"github.com/Muhammadurasheed/genesis-os-26/internal/monitor"
	"github.com/Muhammadurasheed/genesis-os-26/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	// Initialize logger
	var logger *zap.Logger
	var err error
	if os.Getenv("DEBUG") == "true" {
		logger, err = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load("./config")
	if err != nil {
		logger.Fatal("Failed to load config file", zap.Error(err))
	}

	// Wire the monitoring subsystem
	svc, err := monitor.NewService(cfg.Monitoring, logger)
	if err != nil {
		logger.Fatal("Failed to create monitoring service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		logger.Fatal("Failed to start monitoring service", zap.Error(err))
	}

	// Start the HTTP server
	srv := server.New(cfg.Server, svc, logger)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Agent service started",
		zap.Int("port", cfg.Server.Port),
		zap.Int("alert_rules", len(cfg.Monitoring.Rules)))

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	svc.Stop()

	logger.Info("Server shutting down gracefully")
}
