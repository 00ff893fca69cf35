package app

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/cmd/output"
	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/logging"
)

// Execute runs one places invocation. args excludes the program name.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "places",
		Short:   "Build and enrich a canonical city places dataset",
		Version: a.Version(),
		Long: `places builds a canonical dataset of points of interest for one city.

It pulls records from OpenStreetMap and the zuerich.com catalog, classifies
and normalizes them into a fixed vocabulary, merges them into an id-keyed
dataset without ever overwriting existing values, fills gaps from Wikidata,
and attaches generated descriptions and embeddings.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Dataset Commands:"},
		&cobra.Group{ID: "generate", Title: "Generation Commands:"},
		&cobra.Group{ID: "inspect", Title: "Inspection Commands:"},
	)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./.places.yaml or $HOME/.places.yaml)")
	flags.String("dataset", "", "dataset path (overrides config)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, text")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	root.SetVersionTemplate("places {{.Version}}\n")

	a.registerCommands(root)
	return root
}

// setupCommand rereads config when --config is set, folds the global flags
// into it and puts a logger tagged with a fresh run_id on the context.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := flag[string](cmd, "config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.config = cfg
		a.tables = nil
	}

	format := flag[string](cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	a.config.UpdateFromFlags(
		flag[bool](cmd, "verbose"),
		flag[bool](cmd, "quiet"),
		flag[bool](cmd, "no-color"),
		format,
		flag[string](cmd, "log-level"),
		flag[string](cmd, "dataset"),
	)
	if a.config.Format == "" {
		a.config.Format = string(output.DetectFormat(""))
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	ctx := logging.WithLogger(cmd.Context(), a.logger)
	cmd.SetContext(logging.WithRunID(ctx, uuid.NewString()))
	return nil
}

// ExitOnError prints err to stderr and exits 1. nil is a no-op.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	_, _ = os.Stderr.WriteString(err.Error() + "\n")
	os.Exit(1)
}

// flag reads a persistent flag registered in rootCommand. A missing flag
// or a type mismatch is a bug in this file, so it panics.
func flag[T string | bool](cmd *cobra.Command, name string) T {
	var (
		v   any
		err error
	)
	var zero T
	switch any(zero).(type) {
	case string:
		v, err = cmd.Flags().GetString(name)
	case bool:
		v, err = cmd.Flags().GetBool(name)
	}
	if err != nil {
		panic("flag " + name + ": " + err.Error())
	}
	return v.(T)
}
