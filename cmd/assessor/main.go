package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the API key")
	dryRun := flag.Bool("dry-run", false, "score and classify without submitting")
	watch := flag.Bool("watch", false, "re-run whenever the config file changes")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("patientrisk-assessor starting", "config", *configPath, "dry_run", *dryRun)

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *watch && *configPath == "" {
		slog.Error("-watch requires -config")
		os.Exit(2)
	}
	slog.Info("config loaded",
		"base_url", cfg.API.BaseURL,
		"page_size", cfg.Fetch.PageSize,
		"rule", cfg.Scoring.HighRiskRule,
		"webhooks", len(cfg.Notify.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*watch {
		if err := runOnce(ctx, cfg, *dryRun); err != nil {
			os.Exit(1)
		}
		return
	}

	// Reloads are queued and handled one at a time; a newer config replaces
	// one still waiting.
	reloads := make(chan *config.Config, 1)
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			select {
			case <-reloads:
			default:
			}
			reloads <- updated
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
			cancel()
		}
	}()

	_ = runOnce(ctx, cfg, *dryRun)
	for {
		select {
		case <-ctx.Done():
			slog.Info("patientrisk-assessor shutting down")
			return
		case updated := <-reloads:
			_ = runOnce(ctx, updated, *dryRun)
		}
	}
}

// runOnce resolves the API key for cfg and runs the pipeline.
func runOnce(ctx context.Context, cfg *config.Config, dryRun bool) error {
	key := cfg.API.Auth.Key()
	if key == "" {
		err := fmt.Errorf("environment variable %s is not set", cfg.API.Auth.KeyEnv)
		slog.Error("missing API key", "err", err)
		return err
	}

	res, err := pipeline.Run(ctx, pipeline.Options{Config: cfg, APIKey: key, DryRun: dryRun})
	if err != nil {
		return err
	}
	if dryRun {
		slog.Info("assessment", "run_id", res.RunID, "result", res.Assessment)
	}
	return nil
}
