// Package config loads and validates runtime configuration from
// environment variables and flags.
package config

import "time"

// Config holds all runtime configuration for a batch run.
type Config struct {
	API   APIConfig
	Batch BatchConfig
	Files FileConfig
	Log   LogConfig
}

// APIConfig holds the remote Dify endpoint settings.
type APIConfig struct {
	// Key is the Dify API key. Required; absence is a startup error.
	Key string `mapstructure:"api_key"`

	// BaseURL is the Dify endpoint base URL.
	BaseURL string `mapstructure:"base_url"`

	// User is the user identifier sent with every request.
	User string `mapstructure:"user"`

	// Timeout is the per-request timeout. Generation can be slow, so the
	// default is ten minutes.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BatchConfig holds the pipeline settings.
type BatchConfig struct {
	// Workers is the fixed worker-pool size.
	Workers int `mapstructure:"workers"`

	// MaxRetries is the maximum number of attempts per query.
	MaxRetries int `mapstructure:"max_retries"`

	// BackoffUnit is the base delay unit for exponential backoff.
	BackoffUnit time.Duration `mapstructure:"backoff_unit"`
}

// FileConfig holds input and output file paths.
type FileConfig struct {
	Input    string `mapstructure:"input"`
	Results  string `mapstructure:"results"`
	Failures string `mapstructure:"failures"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}
