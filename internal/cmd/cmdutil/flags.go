// Package cmdutil provides flags and helpers shared by places commands.
package cmdutil

import (
	"github.com/spf13/cobra"
)

// ChangeFlags controls whether a pass writes and what it reports.
type ChangeFlags struct {
	DryRun  bool
	Changes bool
	Output  string
}

// AddChangeFlags adds write and reporting flags to a command that modifies
// the dataset.
func AddChangeFlags(cmd *cobra.Command) *ChangeFlags {
	flags := &ChangeFlags{}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Run the pass and list changes without writing the dataset")
	cmd.Flags().BoolVar(&flags.Changes, "changes", false,
		"List every change made")
	cmd.Flags().StringVar(&flags.Output, "output", "",
		"Write the dataset here instead of back to --dataset")

	return flags
}

// Track reports whether changes must be recorded.
func (f *ChangeFlags) Track() bool {
	return f.DryRun || f.Changes
}

// SelectionFlags picks the places a generation pass covers.
type SelectionFlags struct {
	Missing bool
	Limit   int
}

// AddSelectionFlags adds place selection flags to a command.
func AddSelectionFlags(cmd *cobra.Command) *SelectionFlags {
	flags := &SelectionFlags{}

	cmd.Flags().BoolVar(&flags.Missing, "missing", true,
		"Only places without the generated field")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0,
		"Limit number of places (0 means all)")

	return flags
}
