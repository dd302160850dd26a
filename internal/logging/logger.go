// Package logging configures structured logging for the batch runner
// using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output is the destination writer (default: os.Stderr).
	Output io.Writer
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var out io.Writer = cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Component returns a logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
