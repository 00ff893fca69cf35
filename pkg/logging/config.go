package logging

import (
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helgo/places/pkg/constants"
)

// Config selects the level, encoding and destination of a logger built by
// NewLoggerFromConfig. The CLI fills it from flags and PLACES_* settings.
type Config struct {
	Level string // trace, debug, info, warn, error, off
	// Format is json, console or auto. Auto picks console only when
	// writing to a terminal on stderr.
	Format string
	// Output is stderr, stdout, discard or a file path opened for append.
	Output    string
	NoColor   bool
	AddCaller bool
	// Fields are attached to every event, e.g. the city of a build.
	Fields map[string]any
}

// DefaultConfig is info level, auto format, on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
		Fields:  map[string]any{},
	}
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level to
// match. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	with := zerolog.New(encoderFor(cfg, destination(cfg.Output))).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		with = with.Caller()
	}
	// Sorted so file output is stable between runs.
	for _, k := range slices.Sorted(maps.Keys(cfg.Fields)) {
		with = with.Interface(k, cfg.Fields[k])
	}
	return with.Logger()
}

// destination falls back to stderr when a log file cannot be opened, so a
// bad --log-output never hides the run's own errors.
func destination(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func encoderFor(cfg *Config, out io.Writer) io.Writer {
	console := false
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty", "text":
		console = true
	case "", "auto":
		console = out == os.Stderr && stderrIsTerminal()
	}
	if !console {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

// parseLevel accepts zerolog names plus "warning" and "off". Anything else
// is info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
