package app

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/cmd/places/cmd/build"
	"github.com/helgo/places/cmd/places/cmd/enrich"
	"github.com/helgo/places/cmd/places/cmd/generate"
	"github.com/helgo/places/cmd/places/cmd/stats"
	"github.com/helgo/places/cmd/places/cmd/validate"
	"github.com/helgo/places/cmd/places/cmd/version"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(build.NewCommand(a))
	rootCmd.AddCommand(enrich.NewCommand(a))

	// Generation commands
	rootCmd.AddCommand(generate.NewDescribeCommand(a))
	rootCmd.AddCommand(generate.NewEmbedCommand(a))

	// Inspection commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(stats.NewCommand(a))

	rootCmd.AddCommand(version.NewCommand(a))
}
