package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultBaseURL           = "https://assessment.ksensetech.com/api"
	DefaultKeyEnv            = "API_KEY"
	DefaultKeyHeader         = "x-api-key"
	DefaultTimeout           = 10 * time.Second
	DefaultPageSize          = 10
	DefaultMaxRetries        = 5
	DefaultRetryDelay        = 1500 * time.Millisecond
	DefaultRateLimitInitial  = 2 * time.Second
	DefaultRateLimitMax      = 30 * time.Second
	DefaultRateLimitFactor   = 2.0
	DefaultRateLimitAttempts = 20
)

// Config is the top-level assessor configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Scoring ScoringConfig `yaml:"scoring"`
	Submit  SubmitConfig  `yaml:"submit"`
	Output  OutputConfig  `yaml:"output"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// APIConfig describes the remote assessment service.
type APIConfig struct {
	// BaseURL is the service root; /patients and /submit-assessment hang off it.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures the API key header.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig names the header carrying the API key and the environment
// variable holding its value. The key itself never lives in the file.
type AuthConfig struct {
	Header string `yaml:"header"`
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// FetchConfig controls pagination and retries of the listing endpoint.
type FetchConfig struct {
	// PageSize is sent as the limit query parameter.
	PageSize int `yaml:"page_size"`

	// MaxRetries is the number of consecutive transient failures after which
	// the fetch stops and returns the records gathered so far.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the fixed wait between transient failures.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// RateLimit configures the backoff applied to HTTP 429 responses.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a truncated exponential backoff policy.
type RateLimitConfig struct {
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	Multiplier float64       `yaml:"multiplier"`

	// MaxAttempts caps consecutive 429 responses for one page.
	MaxAttempts int `yaml:"max_attempts"`
}

// ScoringConfig selects the classification rules.
type ScoringConfig struct {
	// HighRiskRule is one of: conditional | cumulative.
	HighRiskRule string `yaml:"high_risk_rule"`
}

// SubmitConfig controls the submission stage.
type SubmitConfig struct {
	// Enabled turns submission off when false; -dry-run overrides it.
	Enabled bool `yaml:"enabled"`
}

// OutputConfig lists optional local artefacts of a run.
type OutputConfig struct {
	// ResultsFile receives the assessment as indented JSON.
	ResultsFile string `yaml:"results_file"`

	// MetricsFile receives a Prometheus text-format report of the run,
	// suitable for the node_exporter textfile collector.
	MetricsFile string `yaml:"metrics_file"`
}

// NotifyConfig holds webhook targets notified after each run.
type NotifyConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Default returns the built-in configuration, already valid.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
			Auth: AuthConfig{
				Header: DefaultKeyHeader,
				KeyEnv: DefaultKeyEnv,
			},
		},
		Fetch: FetchConfig{
			PageSize:   DefaultPageSize,
			MaxRetries: DefaultMaxRetries,
			RetryDelay: DefaultRetryDelay,
			RateLimit: RateLimitConfig{
				Initial:     DefaultRateLimitInitial,
				Max:         DefaultRateLimitMax,
				Multiplier:  DefaultRateLimitFactor,
				MaxAttempts: DefaultRateLimitAttempts,
			},
		},
		Scoring: ScoringConfig{HighRiskRule: "conditional"},
		Submit:  SubmitConfig{Enabled: true},
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if cfg.API.Auth.Header == "" {
		return fmt.Errorf("api.auth.header is required")
	}
	if cfg.API.Auth.KeyEnv == "" {
		return fmt.Errorf("api.auth.key_env is required")
	}
	if cfg.Fetch.PageSize <= 0 {
		return fmt.Errorf("fetch.page_size must be positive")
	}
	if cfg.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("fetch.max_retries must be positive")
	}
	if cfg.Fetch.RetryDelay < 0 {
		return fmt.Errorf("fetch.retry_delay must not be negative")
	}
	rl := cfg.Fetch.RateLimit
	if rl.Initial < 0 || rl.Max < rl.Initial {
		return fmt.Errorf("fetch.rate_limit: need 0 <= initial <= max")
	}
	if rl.Multiplier < 1 {
		return fmt.Errorf("fetch.rate_limit.multiplier must be >= 1")
	}
	if rl.MaxAttempts <= 0 {
		return fmt.Errorf("fetch.rate_limit.max_attempts must be positive")
	}
	switch cfg.Scoring.HighRiskRule {
	case "conditional", "cumulative":
	default:
		return fmt.Errorf("scoring.high_risk_rule: unknown rule %q", cfg.Scoring.HighRiskRule)
	}
	for i, wh := range cfg.Notify.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("notify.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("notify.webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}
