package generate

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/internal/generate/batch"
	"github.com/helgo/places/pkg/enrich"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
)

func newMergeCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var file string
	var changes *cmdutil.ChangeFlags

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Attach a downloaded batch output to the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = outputPath(app, kind)
			}
			f, err := os.Open(file)
			if err != nil {
				if os.IsNotExist(err) {
					return errors.NewNotFoundError("batch output", file)
				}
				return errors.WrapIO("open", file, err)
			}
			defer f.Close() //nolint:errcheck

			res, err := batch.ParseResults(f, file)
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				app.Logger().Warn().Int("failed", res.Failed).Msg("Batch output has failed requests")
			}

			ds, err := cmdutil.RequireDataset(app)
			if err != nil {
				return err
			}
			return attach(cmd, app, ds, kind, res.Texts, res.Vectors, sources.OpenAI, changes)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Batch output (default <batch_dir>/<kind>-output.jsonl)")
	changes = cmdutil.AddChangeFlags(cmd)
	return cmd
}

func newRunCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var name string
	var sel *cmdutil.SelectionFlags
	var changes *cmdutil.ChangeFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate synchronously and attach the output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(cmd.Context(), "generate")
			p, src, err := newProvider(app, name)
			if err != nil {
				return err
			}
			ctx = logging.WithSource(ctx, string(src))

			ds, err := cmdutil.RequireDataset(app)
			if err != nil {
				return err
			}
			ps := generate.Select(ds, kind, generate.Selection{Missing: sel.Missing, Limit: sel.Limit})
			if len(ps) == 0 {
				logging.FromContext(ctx).Info().Msg("Nothing to generate")
				return nil
			}

			var (
				texts   map[string]string
				vectors map[string][]float64
				genErr  error
			)
			if kind == generate.Descriptions {
				texts, genErr = generate.Describe(ctx, p, ps)
			} else {
				vectors, genErr = generate.Embed(ctx, p, ps, app.Config().EmbedChunk)
			}
			// Output produced before an interruption is still attached.
			if genErr != nil && len(texts) == 0 && len(vectors) == 0 {
				return genErr
			}
			if err := attach(cmd, app, ds, kind, texts, vectors, src, changes); err != nil {
				return err
			}
			return genErr
		},
	}
	cmd.Flags().StringVarP(&name, "provider", "p", ProviderOpenAI, "Model provider (openai or gemini)")
	sel = cmdutil.AddSelectionFlags(cmd)
	changes = cmdutil.AddChangeFlags(cmd)
	return cmd
}

// attach stores generated output on ds, saves it and reports the result.
func attach(cmd *cobra.Command, app appcontext.Interface, ds *places.Dataset, kind generate.Kind,
	texts map[string]string, vectors map[string][]float64, src sources.ID, flags *cmdutil.ChangeFlags) error {
	var res enrich.AttachResult
	if kind == generate.Descriptions {
		res = enrich.AttachDescriptions(ds, texts, src)
	} else {
		res = enrich.AttachEmbeddings(ds, vectors, app.Config().EmbeddingDim, src)
	}
	if !flags.Track() {
		res.Changes = nil
	}
	if res.Stats.Rejected > 0 {
		app.Logger().Warn().Int("rejected", res.Stats.Rejected).Msg("Vectors with a mismatched dimension were rejected")
	}

	if err := cmdutil.SaveDataset(cmd, app, ds, flags); err != nil {
		return err
	}
	if err := cmdutil.Print(cmd, app, res, table.AttachToTableData(res)); err != nil {
		return err
	}
	return cmdutil.PrintChanges(cmd, app, res.Changes, flags)
}
