// Package enrich provides the enrich command, which fills missing contact
// fields from Wikidata.
package enrich

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
)

// Flags holds enrich-specific flags.
type Flags struct {
	MaxKm    float64
	Limit    int
	Sleep    time.Duration
	Locality string
	Changes  *cmdutil.ChangeFlags
}

// NewCommand creates the enrich command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "enrich",
		GroupID: "core",
		Short:   "Fill missing contact fields from Wikidata",
		Args:    cobra.NoArgs,
		Long: `Enrich looks up places that lack a website, phone, address or photo
on Wikidata and fills the empty fields from the best candidate within
--max-km of the place. Present values are never replaced.

--limit caps the number of lookups, not the number of places scanned.`,
		Example: `  places enrich                  # Use configured limits
  places enrich --limit 20 --dry-run --changes
  places enrich --max-km 0.5 --sleep 1s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().Float64Var(&flags.MaxKm, "max-km", -1,
		"Maximum distance to accept a candidate (default from config)")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", -1,
		"Maximum lookups (default from config, 0 means unlimited)")
	cmd.Flags().DurationVar(&flags.Sleep, "sleep", 0,
		"Pause between Wikidata requests (default from config)")
	cmd.Flags().StringVar(&flags.Locality, "locality", "",
		"Locality appended to search terms (default from config)")
	flags.Changes = cmdutil.AddChangeFlags(cmd)

	return cmd
}
