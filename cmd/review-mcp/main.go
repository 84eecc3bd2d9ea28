package main

import (
	"fmt"
	"os"

	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/config"
	"github.com/jwulff/transcript-review/internal/mcpserver"
	"github.com/jwulff/transcript-review/internal/observability"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol.
	observability.InitLogger(cfg.LogLevel, os.Stderr)
	logger := observability.Logger()

	client := api.NewClient(cfg.BackendURL, api.Options{
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
	})

	logger.Info().Str("backend_url", cfg.BackendURL).Msg("mcp server starting")
	if err := mcpserver.New(client, version).ServeStdio(); err != nil {
		logger.Error().Err(err).Msg("mcp server stopped")
		os.Exit(1)
	}
}
