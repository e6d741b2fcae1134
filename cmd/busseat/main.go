package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	_ "github.com/kirinyoku/busseat/docs"
	"github.com/kirinyoku/busseat/internal/app"
	"github.com/kirinyoku/busseat/internal/config"
	"github.com/kirinyoku/busseat/internal/logger"
)

// @title Busseat API
// @version 1.0
// @description Seat inventory, holds, fares and ticket sales for intercity bus trips.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Path, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	zap.ReplaceGlobals(log)

	ctx := context.Background()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to create application", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		log.Error("application finished with error", zap.Error(err))
		os.Exit(1)
	}
}
