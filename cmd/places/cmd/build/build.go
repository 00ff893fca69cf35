package build

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/cmd/cmdutil"
	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/internal/sources/local"
	"github.com/helgo/places/internal/sources/osm"
	"github.com/helgo/places/internal/sources/zurich"
	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/normalize"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
)

// Execute runs one build.
func Execute(cmd *cobra.Command, app appcontext.Interface, target string, flags *Flags) error {
	ctx := cmd.Context()
	cfg := app.Config()

	ids, err := targetIDs(target)
	if err != nil {
		return err
	}
	if flags.Input != "" && len(ids) > 1 {
		return errors.NewValidationError("input", flags.Input, "a snapshot replays one source; name it instead of all")
	}

	tables, err := app.Tables()
	if err != nil {
		return err
	}
	limit := cfg.LimitPerCategory
	if flags.LimitPerCategory >= 0 {
		limit = flags.LimitPerCategory
	}
	merger, err := merge.New(normalize.New(tables),
		merge.WithLimitPerCategory(limit),
		merge.WithSkipUnclassified(flags.SkipUnclassified),
		merge.WithChangeTracking(flags.Changes.Track()),
	)
	if err != nil {
		return err
	}

	ds, err := cmdutil.LoadDataset(app, flags.Fresh)
	if err != nil {
		return err
	}

	registry := sources.NewSources()
	for _, id := range ids {
		registry.Set(newSource(app, id, flags))
	}

	var results []*merge.Result
	for _, id := range merger.Order(registry.IDs()) {
		src, _ := registry.Get(id)
		res, err := run(ctx, app, merger, ds, src, flags)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if err := cmdutil.SaveDataset(cmd, app, ds, flags.Changes); err != nil {
		return err
	}
	for _, res := range results {
		if err := cmdutil.Print(cmd, app, res, table.BuildToTableData(res)); err != nil {
			return err
		}
		if err := cmdutil.PrintChanges(cmd, app, res.Changes, flags.Changes); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, app appcontext.Interface, merger *merge.Merger, ds *places.Dataset, src sources.Source, flags *Flags) (*merge.Result, error) {
	ctx = logging.WithSource(ctx, string(src.ID()))
	log := logging.FromContext(ctx)

	log.Info().Msg("Fetching records")
	records, err := src.Records(ctx)
	if err != nil {
		return nil, errors.WrapResource("fetch", "records", string(src.ID()), err)
	}
	log.Info().Int("records", len(records)).Msg("Fetched records")

	if flags.SaveRaw && flags.Input == "" {
		path := filepath.Join(app.Config().RawDir, string(src.ID())+".json")
		if err := local.Save(path, src.ID(), records); err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("Saved snapshot")
	}

	return merger.Build(ctx, ds, src.ID(), records)
}

func targetIDs(target string) ([]sources.ID, error) {
	if target == "all" {
		return []sources.ID{sources.Zurich, sources.OSM}, nil
	}
	id := sources.ID(target)
	if !id.IsValid() {
		return nil, errors.NewValidationError("source", target, "must be osm, zurich or all")
	}
	return []sources.ID{id}, nil
}

func newSource(app appcontext.Interface, id sources.ID, flags *Flags) sources.Source {
	cfg := app.Config()
	if flags.Input != "" {
		return local.New(local.WithPath(flags.Input), local.WithID(id))
	}

	switch id {
	case sources.Zurich:
		client := transport.New(string(id),
			transport.WithTimeout(cfg.HTTPTimeout),
			transport.WithUserAgent(cfg.UserAgent),
			transport.WithInterval(cfg.ZurichSleep),
			transport.WithRetries(constants.MaxRetries, constants.RetryBackoff))
		return zurich.New(
			zurich.WithBaseURL(cfg.Endpoints.Zurich),
			zurich.WithClient(client),
			zurich.WithLimitCategories(flags.LimitCategories))
	default:
		client := transport.New(string(id),
			transport.WithTimeout(constants.OverpassTimeout),
			transport.WithUserAgent(cfg.UserAgent),
			transport.WithInterval(cfg.OverpassSleep),
			transport.WithRetries(constants.MaxRetries, constants.RetryBackoff))
		return osm.New(
			osm.WithCity(cfg.City, cfg.Country),
			osm.WithEndpoints(cfg.Endpoints.Nominatim, cfg.Endpoints.Overpass),
			osm.WithClient(client))
	}
}
