package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yangzhihuimee/difybatch/internal/config"
)

// SetupBatchFlags adds the pipeline flags to a command. Values are bound
// into viper, so environment variables fill in anything not set on the
// command line.
func SetupBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", config.DefaultInput, "Input file with one query per line")
	cmd.Flags().StringP("results", "o", config.DefaultResults, "Result output file")
	cmd.Flags().StringP("failures", "f", config.DefaultFailures, "Failed-queries output file")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent workers")
	cmd.Flags().Int("max-retries", config.DefaultMaxRetries, "Maximum attempts per query")
	cmd.Flags().Duration("backoff-unit", config.DefaultBackoffUnit, "Base delay unit for exponential backoff")
}

// SetupAPIFlags adds the remote-endpoint flags to a command.
func SetupAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", config.DefaultBaseURL, "Dify endpoint base URL")
	cmd.Flags().String("user", config.DefaultUser, "User identifier sent with every request")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Per-request timeout")
}

// SetupLogFlags adds logging flags to a command.
func SetupLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().Bool("pretty", false, "Human-readable log output instead of JSON")
}

// SetupUploadFlags adds artifact-upload flags to a command.
func SetupUploadFlags(cmd *cobra.Command, flags *UploadFlags) {
	cmd.Flags().StringVar(&flags.Provider, "upload-provider", "", "Artifact upload provider (e.g. minio)")
	cmd.Flags().StringArrayVar(&flags.Settings, "upload-setting", nil, "Upload provider setting as key=value (repeatable)")
}

// SetupNotifyFlags adds notification flags to a command.
func SetupNotifyFlags(cmd *cobra.Command, flags *NotifyFlags) {
	cmd.Flags().BoolVar(&flags.NoNotify, "no-notify", false, "Skip the desktop completion notification")
}

// bindConfigFlags wires the command's flags into a viper instance so flag
// values override DIFY_* environment variables, which override defaults.
func bindConfigFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"files.input":        "input",
		"files.results":      "results",
		"files.failures":     "failures",
		"batch.workers":      "workers",
		"batch.max_retries":  "max-retries",
		"batch.backoff_unit": "backoff-unit",
		"api.base_url":       "base-url",
		"api.user":           "user",
		"api.timeout":        "timeout",
		"log.level":          "log-level",
		"log.pretty":         "pretty",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// parseSettings converts repeated key=value flags into a map.
func parseSettings(pairs []string) (map[string]string, error) {
	settings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected key=value", pair)
		}
		settings[key] = value
	}
	return settings, nil
}
