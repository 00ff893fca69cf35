package enrich

import (
	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/internal/sources/wikidata"
	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/enrich"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/sources"
)

// Execute runs one enrichment pass over the configured dataset.
func Execute(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	ctx := logging.WithSource(cmd.Context(), string(sources.Wikidata))
	cfg := app.Config()

	maxKm := cfg.MaxKm
	if flags.MaxKm >= 0 {
		maxKm = flags.MaxKm
	}
	limit := cfg.EnrichLimit
	if flags.Limit >= 0 {
		limit = flags.Limit
	}
	sleep := cfg.WikidataSleep
	if flags.Sleep > 0 {
		sleep = flags.Sleep
	}
	locality := cfg.Locality
	if flags.Locality != "" {
		locality = flags.Locality
	}

	client := wikidata.New(
		wikidata.WithEndpoints(cfg.Endpoints.Wikidata, cfg.Endpoints.Commons),
		wikidata.WithHTTPClient(transport.New(string(sources.Wikidata),
			transport.WithTimeout(cfg.HTTPTimeout),
			transport.WithUserAgent(cfg.UserAgent),
			transport.WithInterval(sleep),
			transport.WithRetries(constants.MaxRetries, constants.RetryBackoff),
		)))

	enricher, err := enrich.NewEnricher(client, client,
		enrich.WithLimit(limit),
		enrich.WithMaxKm(maxKm),
		enrich.WithLocality(locality),
		enrich.WithSource(sources.Wikidata),
		enrich.WithChangeTracking(flags.Changes.Track()),
	)
	if err != nil {
		return err
	}

	ds, err := cmdutil.RequireDataset(app)
	if err != nil {
		return err
	}

	rep, runErr := enricher.Run(ctx, ds)
	if runErr != nil && !errors.IsCanceled(runErr) {
		return runErr
	}

	// An interrupted walk still saves the fields filled so far.
	if err := cmdutil.SaveDataset(cmd, app, ds, flags.Changes); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if err := cmdutil.Print(cmd, app, rep, table.EnrichToTableData(rep)); err != nil {
		return err
	}
	return cmdutil.PrintChanges(cmd, app, rep.Changes, flags.Changes)
}
