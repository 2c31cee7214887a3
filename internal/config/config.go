// Package config defines client configuration and how it is loaded.
//
// Conventions:
// - Config is a plain struct tagged for koanf; New returns the defaults.
// - Load layers defaults, an optional YAML file, an optional .env file and
//   the process environment, in that order of precedence.
// - Validation failures wrap the sentinels in errors.go.
package config

import (
	"time"
)

// Default values.
const (
	DefaultBaseURL    = "https://api.opensanctions.org"
	DefaultDataset    = "default"
	DefaultTimeoutMS  = 30_000
	DefaultUserAgent  = "osmatch/1.0"
	DefaultMetricsJob = "osmatch"
)

// Config contains process configuration.
type Config struct {
	// APIKey is sent verbatim in the Authorization header. Required.
	APIKey string `koanf:"api_key"`

	// BaseURL is the scheme and host of the matching service.
	BaseURL string `koanf:"base_url"`

	// Dataset selects the collection matched against, e.g. "default" or "sanctions".
	Dataset string `koanf:"dataset"`

	// TimeoutMS bounds a single match request, including reading the body.
	TimeoutMS int `koanf:"timeout_ms"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// UserAgent is sent with every request.
	UserAgent string `koanf:"user_agent"`

	// PushgatewayURL, when set, receives the run's metrics on exit.
	PushgatewayURL string `koanf:"pushgateway_url"`

	// MetricsJob is the Pushgateway job name.
	MetricsJob string `koanf:"metrics_job"`
}

// New creates a Config holding the defaults. The API key has no default.
func New() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Dataset:    DefaultDataset,
		TimeoutMS:  DefaultTimeoutMS,
		LogLevel:   "info",
		UserAgent:  DefaultUserAgent,
		MetricsJob: DefaultMetricsJob,
	}
}

// Timeout returns TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
