// Package logging provides structured logging for the places pipeline using zerolog.
//
// Terminals get a human-readable console writer, everything else gets JSON
// lines on stderr. Batch passes log one summary line with counts; per-record
// rejections and misses are logged at debug level.
//
//	log := logging.Default()
//	log.Info().Str("source", "osm").Int("accepted", 212).Msg("Build finished")
//
//	ctx = logging.WithSource(ctx, "wikidata")
//	logging.FromContext(ctx).Debug().Str("place_id", id).Msg("No candidate within radius")
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger serves code that has no context logger, such as response
// body cleanup in the transport layer.
var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   envOr("LOG_LEVEL", levelFromDebugEnv()),
	Format:  envOr("LOG_FORMAT", "auto"),
	Output:  "stderr",
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the process-wide logger.
func Default() *zerolog.Logger { return &defaultLogger }

// SetDefault replaces the process-wide logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New returns a JSON logger on w at the current global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}

// Warn starts a warning on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// levelFromDebugEnv honours DEBUG=1 when LOG_LEVEL is unset.
func levelFromDebugEnv() string {
	if os.Getenv("DEBUG") != "" {
		return "debug"
	}
	return "info"
}
