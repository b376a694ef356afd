package config

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/fsnotify/fsnotify"
)

// setting names one reloadable value of the assessor config.
type setting struct {
	key   string
	value func(*Config) any
}

// settings lists what Diff compares, in config file order.
var settings = []setting{
	{"api.base_url", func(c *Config) any { return c.API.BaseURL }},
	{"api.timeout", func(c *Config) any { return c.API.Timeout }},
	{"api.auth.header", func(c *Config) any { return c.API.Auth.Header }},
	{"api.auth.key_env", func(c *Config) any { return c.API.Auth.KeyEnv }},
	{"fetch.page_size", func(c *Config) any { return c.Fetch.PageSize }},
	{"fetch.max_retries", func(c *Config) any { return c.Fetch.MaxRetries }},
	{"fetch.retry_delay", func(c *Config) any { return c.Fetch.RetryDelay }},
	{"fetch.rate_limit", func(c *Config) any { return c.Fetch.RateLimit }},
	{"scoring.high_risk_rule", func(c *Config) any { return c.Scoring.HighRiskRule }},
	{"submit.enabled", func(c *Config) any { return c.Submit.Enabled }},
	{"output.results_file", func(c *Config) any { return c.Output.ResultsFile }},
	{"output.metrics_file", func(c *Config) any { return c.Output.MetricsFile }},
	{"notify.webhooks", func(c *Config) any { return c.Notify.Webhooks }},
}

// Diff returns the keys of the settings that differ between prev and next.
// A nil prev reports every setting.
func Diff(prev, next *Config) []string {
	var changed []string
	for _, s := range settings {
		if prev == nil || !reflect.DeepEqual(s.value(prev), s.value(next)) {
			changed = append(changed, s.key)
		}
	}
	return changed
}

// Watch monitors path and calls onChange with the newly loaded Config each
// time a write or recreate changes at least one setting. Saves that leave
// every setting as it was are logged and ignored. It runs until ctx is
// cancelled.
//
// If a reload fails (e.g. invalid YAML) the error is logged and onChange is
// not called, so the caller keeps its previous config.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	current, err := Load(path)
	if err != nil {
		slog.Warn("config: initial load for watch failed", "path", path, "err", err)
	}
	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Atomic saves replace the inode.
			_ = watcher.Add(path)

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			changed := Diff(current, cfg)
			if len(changed) == 0 {
				slog.Debug("config: file saved without changes", "path", path)
				continue
			}

			slog.Info("config: reloaded",
				"path", path,
				"changed", changed,
				"base_url", cfg.API.BaseURL,
				"high_risk_rule", cfg.Scoring.HighRiskRule,
				"page_size", cfg.Fetch.PageSize,
				"submit_enabled", cfg.Submit.Enabled,
			)
			current = cfg
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
