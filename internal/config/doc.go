// Package config loads and watches the assessor configuration file.
//
// Top-level types:
//   - Config{API, Fetch, Scoring, Submit, Output, Notify}: full tree parsed from YAML
//   - APIConfig: base_url, timeout, auth (header + key_env)
//   - AuthConfig: Key() resolves the API key from the named environment variable
//   - FetchConfig: page_size, max_retries, retry_delay, rate_limit backoff
//   - ScoringConfig: high_risk_rule (conditional | cumulative)
//   - OutputConfig: optional results and metrics file paths
//   - NotifyConfig: webhook targets (slack | teams | http), URLs from env
//
// Default() returns the built-in configuration (the public assessment service,
// page size 10, 5 transient retries 1.5s apart, 2s→30s rate-limit backoff).
// Load(path) reads a YAML file over those defaults and validates the result.
// LoadDotEnv loads a .env file into the process environment when present.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. Atomic-save editors replace the inode,
// so the watch is re-added after every event.
package config
