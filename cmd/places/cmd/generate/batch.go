package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/internal/generate/batch"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
)

func newBuildCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var output string
	var sel *cmdutil.SelectionFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the batch request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := cmdutil.RequireDataset(app)
			if err != nil {
				return err
			}
			ps := generate.Select(ds, kind, generate.Selection{Missing: sel.Missing, Limit: sel.Limit})
			if len(ps) == 0 {
				app.Logger().Info().Str("kind", string(kind)).Msg("Nothing to generate")
				return nil
			}

			path := output
			if path == "" {
				path = requestsPath(app, kind)
			}
			data, err := batch.EncodeJSONL(batch.BuildLines(ps, kind, models(app)))
			if err != nil {
				return err
			}
			if err := writeFile(path, data); err != nil {
				return err
			}
			app.Logger().Info().Str("path", path).Int("requests", len(ps)).Msg("Wrote batch requests")
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Request file (default <batch_dir>/<kind>.jsonl)")
	sel = cmdutil.AddSelectionFlags(cmd)
	return cmd
}

func newSubmitCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload the request file and create a batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(cmd.Context(), "submit")
			if input == "" {
				input = requestsPath(app, kind)
			}
			data, err := os.ReadFile(input)
			if err != nil {
				if os.IsNotExist(err) {
					return errors.NewNotFoundError("batch requests", input)
				}
				return errors.WrapIO("read", input, err)
			}
			lines, err := batch.ReadJSONL(bytes.NewReader(data), input)
			if err != nil {
				return err
			}

			client, err := openAIClient(app)
			if err != nil {
				return err
			}
			job, err := client.Submit(ctx, kind, lines)
			if err != nil {
				return err
			}
			if err := batch.SaveJob(jobPath(app, kind), job); err != nil {
				return err
			}
			logging.FromContext(ctx).Info().Str("batch_id", job.ID).Int("requests", job.Requests).Msg("Submitted batch")
			return cmdutil.Print(cmd, app, job, table.JobToTableData(job))
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Request file (default <batch_dir>/<kind>.jsonl)")
	return cmd
}

func newPollCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var wait bool
	var interval, timeout time.Duration

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Show the status of the submitted batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(cmd.Context(), "poll")
			path := jobPath(app, kind)
			job, err := batch.LoadJob(path)
			if err != nil {
				return err
			}
			client, err := openAIClient(app, batch.WithPoll(interval, timeout))
			if err != nil {
				return err
			}

			var waitErr error
			if wait {
				b, err := client.Wait(ctx, job.ID)
				if b.ID == "" && err != nil {
					return err
				}
				job.Update(b)
				waitErr = err
			} else {
				b, err := client.Status(ctx, job.ID)
				if err != nil {
					return err
				}
				job.Update(b)
			}

			if err := batch.SaveJob(path, job); err != nil {
				return err
			}
			if err := cmdutil.Print(cmd, app, job, table.JobToTableData(job)); err != nil {
				return err
			}
			return waitErr
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until the batch finishes")
	cmd.Flags().DurationVar(&interval, "interval", constants.BatchPollInterval, "Poll interval with --wait")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.BatchPollTimeout, "Give up waiting after this long")
	return cmd
}

func newDownloadCommand(app appcontext.Interface, kind generate.Kind) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the output of a completed batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(cmd.Context(), "download")
			job, err := batch.LoadJob(jobPath(app, kind))
			if err != nil {
				return err
			}
			client, err := openAIClient(app)
			if err != nil {
				return err
			}
			b, err := client.Status(ctx, job.ID)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := client.Download(ctx, b, &buf); err != nil {
				return err
			}
			if output == "" {
				output = outputPath(app, kind)
			}
			if err := writeFile(output, buf.Bytes()); err != nil {
				return err
			}
			logging.FromContext(ctx).Info().Str("path", output).Int("bytes", buf.Len()).Msg("Downloaded batch output")
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Output file (default <batch_dir>/<kind>-output.jsonl)")
	return cmd
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
