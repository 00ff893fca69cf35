package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/output"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/places"
)

// LoadDataset reads the configured dataset. A missing file yields an empty
// dataset; fresh skips reading altogether.
func LoadDataset(app appcontext.Interface, fresh bool) (*places.Dataset, error) {
	if fresh {
		return places.New(), nil
	}
	return places.LoadOrNew(app.Config().Dataset)
}

// RequireDataset reads the configured dataset for passes that work on
// existing places. A missing file is a NotFoundError.
func RequireDataset(app appcontext.Interface) (*places.Dataset, error) {
	return places.Load(app.Config().Dataset)
}

// SaveDataset writes ds unless this is a dry run. The target is the
// --output flag when set, else the configured dataset path.
func SaveDataset(cmd *cobra.Command, app appcontext.Interface, ds *places.Dataset, flags *ChangeFlags) error {
	if flags.DryRun {
		app.Logger().Info().Msg("Dry run, dataset not written")
		return nil
	}
	path := app.Config().Dataset
	if flags.Output != "" {
		path = flags.Output
	}
	if err := ds.Save(path); err != nil {
		return err
	}
	app.Logger().Info().Str("path", path).Int("places", ds.Len()).Msg("Dataset saved")
	return nil
}

// Print writes data to the command's output in the configured format,
// using rows for table output.
func Print(cmd *cobra.Command, app appcontext.Interface, data any, rows table.Data) error {
	return output.Print(cmd.OutOrStdout(), output.Format(app.OutputFormat()), data, rows)
}

// PrintChanges lists changes when flags ask for them. Structured formats
// already carry the changes inside the printed result.
func PrintChanges(cmd *cobra.Command, app appcontext.Interface, changes []merge.Change, flags *ChangeFlags) error {
	if !flags.Track() || len(changes) == 0 {
		return nil
	}
	switch output.Format(app.OutputFormat()) {
	case output.FormatJSON, output.FormatYAML:
		return nil
	}
	return Print(cmd, app, changes, table.ChangesToTableData(changes))
}
