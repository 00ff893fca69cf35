package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/logging"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the run's logger from the resolved config. Debug and
// trace add the caller to every event.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level := determineLogLevel(cfg)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   cfg.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

// determineLogLevel resolves --log-level (or LOG_LEVEL) first, then -q,
// then -v. -q wins over -v when both are given.
func determineLogLevel(cfg *config.Config) string {
	switch {
	case cfg.LogLevel != "":
		level := validateLogLevel(cfg.LogLevel)
		if level != cfg.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: unknown log level %q, using %q\n", cfg.LogLevel, level)
		}
		return level
	case cfg.Quiet:
		if cfg.Verbose {
			fmt.Fprintln(os.Stderr, "Warning: --verbose ignored with --quiet")
		}
		return "warn"
	case cfg.Verbose:
		return "debug"
	}
	return "info"
}

// validateLogLevel is case-sensitive; anything but a lowercase level name
// becomes info.
func validateLogLevel(level string) string {
	if slices.Contains(logLevels, level) {
		return level
	}
	return "info"
}
