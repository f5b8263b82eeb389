package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/rollcall-gateway/internal/config"
	"github.com/tjfontaine/rollcall-gateway/pkg/gateway"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// log.level in the config file is applied by the gateway, also on reload.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Config file changes to log.level and pagination.max_pages apply
	// without a restart.
	gw, err := gateway.New(
		gateway.WithFileConfig(config.DefaultFile),
		gateway.WithLogger(logger),
		gateway.WithLevelVar(level),
	)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gw.Run(ctx, 30*time.Second); err != nil {
		logger.Error("gateway stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
