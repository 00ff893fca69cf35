// Package stats provides the stats command.
package stats

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/pkg/places"
)

// NewCommand creates the stats command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		GroupID: "inspect",
		Short:   "Summarize the dataset per category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := places.Load(app.Config().Dataset)
			if err != nil {
				return err
			}
			tables, err := app.Tables()
			if err != nil {
				return err
			}
			rows := table.CategoryRows(ds, tables)
			return cmdutil.Print(cmd, app, rows, table.CategoriesToTableData(rows))
		},
	}
}
