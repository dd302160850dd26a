package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadMissingKey(t *testing.T) {
	_, err := Load(viper.New())
	if err == nil {
		t.Fatal("expected error when api key is missing")
	}
	if !strings.Contains(err.Error(), "DIFY_API_KEY") {
		t.Errorf("expected error to mention DIFY_API_KEY, got %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DIFY_API_KEY", "app-secret")
	t.Setenv("DIFY_API_BASE_URL", "https://dify.example.com")
	t.Setenv("DIFY_BATCH_WORKERS", "4")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Key != "app-secret" {
		t.Errorf("expected api key from env, got %q", cfg.API.Key)
	}
	if cfg.API.BaseURL != "https://dify.example.com" {
		t.Errorf("expected base url from env, got %q", cfg.API.BaseURL)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Batch.Workers)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIFY_API_KEY", "app-secret")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.User != DefaultUser {
		t.Errorf("expected default user, got %q", cfg.API.User)
	}
	if cfg.API.Timeout != 600*time.Second {
		t.Errorf("expected 600s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Batch.Workers != DefaultWorkers {
		t.Errorf("expected %d workers, got %d", DefaultWorkers, cfg.Batch.Workers)
	}
	if cfg.Batch.MaxRetries != DefaultMaxRetries {
		t.Errorf("expected %d retries, got %d", DefaultMaxRetries, cfg.Batch.MaxRetries)
	}
	if cfg.Files.Input != "query.txt" || cfg.Files.Results != "result.txt" || cfg.Files.Failures != "failed_queries.txt" {
		t.Errorf("unexpected default file paths: %+v", cfg.Files)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			API: APIConfig{
				Key:     "app-secret",
				BaseURL: DefaultBaseURL,
				User:    DefaultUser,
				Timeout: DefaultTimeout,
			},
			Batch: BatchConfig{
				Workers:     DefaultWorkers,
				MaxRetries:  DefaultMaxRetries,
				BackoffUnit: DefaultBackoffUnit,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty key", func(c *Config) { c.API.Key = "  " }, true},
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }, true},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, true},
		{"zero retries", func(c *Config) { c.Batch.MaxRetries = 0 }, true},
		{"negative backoff", func(c *Config) { c.Batch.BackoffUnit = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
