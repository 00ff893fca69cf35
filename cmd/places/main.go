// Command places builds and enriches the city places dataset.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helgo/places/cmd/places/app"
)

// Set through -ldflags "-X main.version=..." by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	a, err := app.New(version, commit, date, builtBy)
	app.ExitOnError(err)

	// Ctrl-C cancels the run; enrich saves the fills made so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := a.Execute(ctx, os.Args[1:])
	if runErr == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		a.Logger().Error().Err(err).Msg("Shutdown failed")
	}
	app.ExitOnError(runErr)
}
