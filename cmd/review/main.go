package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/app"
	"github.com/jwulff/transcript-review/internal/config"
	"github.com/jwulff/transcript-review/internal/observability"
	"github.com/jwulff/transcript-review/internal/playback"
	"github.com/jwulff/transcript-review/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; logs go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	observability.InitLogger(cfg.LogLevel, logFile)
	logger := observability.Logger()
	logger.Info().
		Str("backend_url", cfg.BackendURL).
		Str("player", cfg.Player).
		Str("cache_path", cfg.CachePath).
		Msg("transcript review starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observability.ServeMetrics(ctx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
	}

	// The cache is optional; without it transcripts are fetched every time.
	var cache app.Cache
	st, err := store.Open(cfg.CachePath)
	if err != nil {
		logger.Warn().Err(err).Msg("cache unavailable")
	} else {
		defer st.Close()
		cache = st
	}

	client := api.NewClient(cfg.BackendURL, api.Options{
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
	})

	opts := app.Options{
		PollInterval: cfg.PollInterval,
		PlaybackTick: cfg.PlaybackTick,
		SeekStep:     cfg.SeekStep,
	}
	if cfg.Player != "none" {
		opts.NewSink = func(url string) (playback.Sink, error) {
			sink, err := playback.NewExecSink(cfg.Player, url)
			if err != nil {
				return nil, err
			}
			return sink, nil
		}
	}

	p := tea.NewProgram(app.New(client, cache, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("tui exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Msg("transcript review stopped")
}
