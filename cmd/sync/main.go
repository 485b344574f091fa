// Command sync runs one product analytics sync for a shop and prints the
// JSON result to stdout. Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	app "github.com/sellerpulse/backend/internal/application/analytics"
	"github.com/sellerpulse/backend/internal/bootstrap"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/config"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		shopID   string
		start    string
		end      string
		logLevel string
	)
	flag.StringVar(&shopID, "shop", "", "Shop ID (required)")
	flag.StringVar(&start, "start", "", "Start date YYYY-MM-DD (required)")
	flag.StringVar(&end, "end", "", "End date YYYY-MM-DD (default: start)")
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	if shopID == "" || start == "" {
		flag.Usage()
		return 2
	}
	if end == "" {
		end = start
	}

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}

	// stdout carries the result
	log, err := logger.New(logger.StderrConfig(logLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	id, err := uuid.Parse(shopID)
	if err != nil {
		log.Error("Invalid shop id", zap.String("shop", shopID), zap.Error(err))
		return 2
	}
	startDate, err := domain.ParseDate(start)
	if err != nil {
		log.Error("Invalid start date", zap.String("start", start))
		return 2
	}
	endDate, err := domain.ParseDate(end)
	if err != nil {
		log.Error("Invalid end date", zap.String("end", end))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()

	svc, closeSync, err := bootstrap.NewSyncService(ctx, cfg, db, bootstrap.SyncDeps{}, log)
	if err != nil {
		log.Error("Failed to initialize sync service", zap.Error(err))
		return 1
	}
	defer func() {
		_ = closeSync()
	}()

	result, err := svc.Sync(ctx, app.SyncCommand{
		ShopID:    id,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		log.Error("Sync rejected", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("Failed to write result", zap.Error(err))
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}
