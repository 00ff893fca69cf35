// Package build provides the build command, which folds source records
// into the dataset.
package build

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
)

// Flags holds build-specific flags.
type Flags struct {
	Input            string
	SaveRaw          bool
	Fresh            bool
	LimitPerCategory int
	SkipUnclassified bool
	LimitCategories  int
	Changes          *cmdutil.ChangeFlags
}

// NewCommand creates the build command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:       "build <osm|zurich|all>",
		GroupID:   "core",
		Short:     "Fold source records into the dataset",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"osm", "zurich", "all"},
		Long: `Build fetches records from a source, classifies and normalizes them and
merges them into the dataset.

Merging never overwrites a present value: new places are inserted, existing
places only gain missing fields and tags. Each category accepts at most
--limit-per-category new places per run.

"all" runs zurich before osm, so the curated catalog fills contested fields
first.`,
		Example: `  places build osm                         # Fetch from Overpass and merge
  places build zurich --limit-categories 3 # Only the first three catalog categories
  places build osm --input data/raw/osm.json --dry-run
  places build all --save-raw --changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Input, "input", "",
		"Replay records from a snapshot file instead of fetching")
	cmd.Flags().BoolVar(&flags.SaveRaw, "save-raw", false,
		"Save fetched records as a snapshot under raw_dir")
	cmd.Flags().BoolVar(&flags.Fresh, "fresh", false,
		"Start from an empty dataset instead of the existing file")
	cmd.Flags().IntVar(&flags.LimitPerCategory, "limit-per-category", -1,
		"New places accepted per category (default from config, 0 means unlimited)")
	cmd.Flags().BoolVar(&flags.SkipUnclassified, "skip-unclassified", false,
		"Reject records no rule classifies instead of using the fallback category")
	cmd.Flags().IntVar(&flags.LimitCategories, "limit-categories", 0,
		"Only fetch the first N zuerich.com categories (0 means all)")
	flags.Changes = cmdutil.AddChangeFlags(cmd)

	return cmd
}
