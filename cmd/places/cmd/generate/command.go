// Package generate provides the describe and embed commands, which produce
// generated descriptions and embeddings through the OpenAI Batch API or a
// synchronous provider.
package generate

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/generate"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(app appcontext.Interface) *cobra.Command {
	cmd := newKindCommand(app, generate.Descriptions)
	cmd.Use = "describe"
	cmd.Short = "Generate short descriptions for places"
	cmd.Long = `Describe produces a one-sentence description per place and stores it as
aiDescription.

The batch workflow is build, submit, poll, download and merge. Each step
reads the previous step's file under batch_dir, so steps can run hours
apart. "run" generates synchronously for small selections.`
	cmd.Example = `  places describe build --limit 50
  places describe submit
  places describe poll --wait
  places describe download
  places describe merge
  places describe run --provider gemini --limit 10`
	return cmd
}

// NewEmbedCommand creates the embed command.
func NewEmbedCommand(app appcontext.Interface) *cobra.Command {
	cmd := newKindCommand(app, generate.Embeddings)
	cmd.Use = "embed"
	cmd.Short = "Generate embedding vectors for places"
	cmd.Long = `Embed produces a vector per place from its name, category, tags and
description, and stores it with the dataset's embedding dimension.

All vectors in a dataset share one dimension; a vector of another length
is rejected at merge.`
	cmd.Example = `  places embed build
  places embed submit
  places embed poll --wait
  places embed download
  places embed merge
  places embed run --provider openai`
	return cmd
}

func newKindCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "generate",
		Args:    cobra.NoArgs,
	}
	cmd.AddCommand(
		newBuildCommand(app, kind),
		newSubmitCommand(app, kind),
		newPollCommand(app, kind),
		newDownloadCommand(app, kind),
		newMergeCommand(app, kind),
		newRunCommand(app, kind),
	)
	return cmd
}
