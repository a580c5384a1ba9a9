package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/config"
	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(config.UserServerAddress)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	server, err := di.InitializeUserServer(ctx, cfg, "user-server")
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer func() { _ = server.Logger.Sync() }()

	if err := server.Run(ctx); err != nil {
		server.Logger.Error("Server stopped with error", zap.Error(err))
		_ = server.Logger.Sync()
		os.Exit(1)
	}
	server.Logger.Info("Server stopped")
}
