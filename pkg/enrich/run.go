package enrich

import (
	"context"

	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/places"
)

// Stats counts what one Run did.
type Stats struct {
	Scanned  int `json:"scanned" yaml:"scanned"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Looked   int `json:"looked" yaml:"looked"`
	Enriched int `json:"enriched" yaml:"enriched"`
	NoMatch  int `json:"noMatch" yaml:"noMatch"`
	Failed   int `json:"failed" yaml:"failed"`
}

// Report is the outcome of a Run.
type Report struct {
	Stats   Stats          `json:"stats" yaml:"stats"`
	Changes []merge.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Enricher fills missing fields on existing places from a knowledge source.
type Enricher struct {
	lookup Lookup
	images ImageResolver
	opts   *options
}

// NewEnricher creates an Enricher. images may be nil, in which case photos
// are never filled.
func NewEnricher(lookup Lookup, images ImageResolver, opts ...Option) (*Enricher, error) {
	if lookup == nil {
		return nil, &errors.ValidationError{Field: "lookup", Message: "cannot be nil"}
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Enricher{lookup: lookup, images: images, opts: o}, nil
}

// Run walks ds in order. Complete places are skipped without a lookup. The
// walk stops once the lookup limit is spent or ctx is done. A failing lookup
// or image resolution is counted and logged, and the walk moves on.
func (e *Enricher) Run(ctx context.Context, ds *places.Dataset) (*Report, error) {
	log := logging.FromContext(ctx).With().Str("source", e.opts.source.String()).Logger()
	rep := &Report{}

	for _, p := range ds.Places() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if e.opts.limit > 0 && rep.Stats.Looked >= e.opts.limit {
			break
		}
		rep.Stats.Scanned++

		if !NeedsEnrichment(p) {
			rep.Stats.Skipped++
			continue
		}

		rep.Stats.Looked++
		pctx := logging.WithPlace(logging.WithLogger(ctx, &log), p.ID)
		plog := logging.FromContext(pctx)
		cands, err := e.lookup.Candidates(pctx, p.Name, e.opts.locality)
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			rep.Stats.Failed++
			plog.Warn().
				Err(errors.NewLookupError(e.opts.source.String(), p.ID, err)).
				Bool("rate_limited", errors.IsRateLimited(err)).
				Bool("unavailable", errors.IsSourceUnavailable(err)).
				Msg("Lookup failed")
			continue
		}

		cand, dist, ok := BestCandidate(p, cands, e.opts.maxKm)
		if !ok {
			rep.Stats.NoMatch++
			plog.Debug().Int("candidates", len(cands)).Msg("No candidate within radius")
			continue
		}

		changes, err := Fill(pctx, p, cand, e.images, e.opts.source)
		if e.opts.tracking {
			rep.Changes = append(rep.Changes, changes...)
		}
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			rep.Stats.Failed++
			plog.Warn().Err(errors.NewLookupError(e.opts.source.String(), p.ID, err)).Msg("Image resolution failed")
			continue
		}
		if len(changes) > 0 {
			rep.Stats.Enriched++
			plog.Debug().
				Str("candidate", cand.ID).
				Float64("distance_km", dist).
				Int("fields", len(changes)).
				Msg("Enriched place")
		}
	}

	log.Info().
		Int("scanned", rep.Stats.Scanned).
		Int("skipped", rep.Stats.Skipped).
		Int("looked", rep.Stats.Looked).
		Int("enriched", rep.Stats.Enriched).
		Int("no_match", rep.Stats.NoMatch).
		Int("failed", rep.Stats.Failed).
		Msg("Enrichment finished")
	return rep, nil
}
