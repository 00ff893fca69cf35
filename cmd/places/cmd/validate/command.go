// Package validate provides the validate command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/places"
)

// NewCommand creates the validate command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "inspect",
		Short:   "Check the dataset against the vocabulary",
		Long: `Validate checks every place for required fields, a known category, tags
from the allowed vocabulary, coordinates in range and a consistent
embedding dimension. It exits non-zero when any issue is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := places.Load(app.Config().Dataset)
			if err != nil {
				return err
			}
			tables, err := app.Tables()
			if err != nil {
				return err
			}

			issues := places.NewValidator(tables).Dataset(ds)
			if len(issues) == 0 {
				app.Logger().Info().Int("places", ds.Len()).Msg("Dataset is valid")
				return nil
			}
			if err := cmdutil.Print(cmd, app, issues, table.IssuesToTableData(issues)); err != nil {
				return err
			}
			return errors.NewValidationError("dataset", app.Config().Dataset, fmt.Sprintf("%d issues found", len(issues)))
		},
	}
}
