// Command bridge is the child side of the page fetch protocol: it reads one
// JSON request on stdin, makes the signed vendor call and writes exactly one
// JSON value to stdout. The exit code is 0 on success and 1 otherwise.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sellerpulse/backend/internal/bootstrap"
	"github.com/sellerpulse/backend/internal/infrastructure/bridge"
	"github.com/sellerpulse/backend/internal/infrastructure/config"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	// stdout is the protocol channel; nothing else may write there
	log, err := logger.New(logger.StderrConfig(envOr("SELLERPULSE_LOG_LEVEL", "warn")))
	if err != nil {
		return failWith(bridge.ErrorTypeInternal, "logger: "+err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", zap.Error(err))
		return failWith(bridge.ErrorTypeInternal, err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, closeClient, err := bootstrap.NewTikTokClient(cfg, log)
	if err != nil {
		log.Error("Failed to initialize vendor client", zap.Error(err))
		return failWith(bridge.ErrorTypeInternal, err.Error())
	}
	defer func() {
		_ = closeClient()
	}()

	srv := bridge.NewServer(bridge.NewProductListHandler(client), cfg.Bridge.IdleTimeout, log)
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

// failWith writes a failure envelope for errors before the server runs
func failWith(errorType, message string) int {
	_ = json.NewEncoder(os.Stdout).Encode(bridge.Failure(errorType, message))
	return 1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
