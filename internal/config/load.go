package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the environment nor flags provide a value.
const (
	DefaultBaseURL     = "https://api.dify.ai"
	DefaultUser        = "dify-user"
	DefaultTimeout     = 600 * time.Second
	DefaultWorkers     = 10
	DefaultMaxRetries  = 3
	DefaultBackoffUnit = time.Second
	DefaultInput       = "query.txt"
	DefaultResults     = "result.txt"
	DefaultFailures    = "failed_queries.txt"
)

// Load reads configuration from DIFY_* environment variables on top of
// built-in defaults and validates it. Flag values already bound to the
// viper instance take precedence over the environment.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.user", DefaultUser)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("batch.workers", DefaultWorkers)
	v.SetDefault("batch.max_retries", DefaultMaxRetries)
	v.SetDefault("batch.backoff_unit", DefaultBackoffUnit)
	v.SetDefault("files.input", DefaultInput)
	v.SetDefault("files.results", DefaultResults)
	v.SetDefault("files.failures", DefaultFailures)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("DIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		API: APIConfig{
			Key:     v.GetString("api.key"),
			BaseURL: v.GetString("api.base_url"),
			User:    v.GetString("api.user"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Batch: BatchConfig{
			Workers:     v.GetInt("batch.workers"),
			MaxRetries:  v.GetInt("batch.max_retries"),
			BackoffUnit: v.GetDuration("batch.backoff_unit"),
		},
		Files: FileConfig{
			Input:    v.GetString("files.input"),
			Results:  v.GetString("files.results"),
			Failures: v.GetString("files.failures"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make a run
// impossible. Called at startup so bad configuration aborts before any
// query is processed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return fmt.Errorf("api key is required (set DIFY_API_KEY)")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.API.BaseURL, err)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", c.Batch.Workers)
	}
	if c.Batch.MaxRetries < 1 {
		return fmt.Errorf("max retries must be >= 1 (got %d)", c.Batch.MaxRetries)
	}
	if c.Batch.BackoffUnit <= 0 {
		return fmt.Errorf("backoff unit must be positive (got %v)", c.Batch.BackoffUnit)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %v)", c.API.Timeout)
	}
	return nil
}
