package merge

import (
	"context"

	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/normalize"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/taxonomy"
)

// Stats counts what one Build call did.
type Stats struct {
	Processed  int                         `json:"processed" yaml:"processed"`
	Accepted   int                         `json:"accepted" yaml:"accepted"`
	Inserted   int                         `json:"inserted" yaml:"inserted"`
	Merged     int                         `json:"merged" yaml:"merged"`
	Unchanged  int                         `json:"unchanged" yaml:"unchanged"`
	Rejected   int                         `json:"rejected" yaml:"rejected"`
	SkippedCap int                         `json:"skippedCap" yaml:"skippedCap"`
	RejectedBy map[normalize.Rejection]int `json:"rejectedBy,omitempty" yaml:"rejectedBy,omitempty"`
	Categories map[taxonomy.Category]int   `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Result is the outcome of a Build call.
type Result struct {
	Source  sources.ID `json:"source" yaml:"source"`
	Stats   Stats      `json:"stats" yaml:"stats"`
	Changes []Change   `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Build folds records from one source into ds.
//
// Records are classified first. A record whose category already holds the
// configured number of new places accepted by this call is skipped before
// it is normalized, unless its id is already in ds or was accepted earlier
// in the call, in which case it merges like any repeat. Places that were in
// ds before the call do not count toward the cap. Cancellation stops the
// fold between records; ds keeps everything merged so far.
func (m *Merger) Build(ctx context.Context, ds *places.Dataset, src sources.ID, records []sources.Record) (*Result, error) {
	log := logging.FromContext(ctx).With().Str("source", src.String()).Logger()

	res := &Result{
		Source: src,
		Stats: Stats{
			RejectedBy: make(map[normalize.Rejection]int),
			Categories: make(map[taxonomy.Category]int),
		},
	}
	accepted := make(map[string]taxonomy.Category)
	added := make(map[taxonomy.Category]int)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Stats.Processed++

		category, matched := m.normalizer.Match(rec)
		if !matched {
			if m.opts.skipUnclassified {
				rejectRecord(res, normalize.Unclassified)
				log.Debug().Str("key", rec.Key).Msg("Skipping unclassified record")
				continue
			}
			category = m.normalizer.Tables().Fallback()
		}

		if m.capReached(added, category) {
			id := m.normalizer.ID(rec)
			if _, seen := accepted[id]; !seen && !ds.Has(id) {
				res.Stats.SkippedCap++
				continue
			}
		}

		out := m.normalizer.Build(rec, category)
		if !out.OK() {
			rejectRecord(res, out.Rejection)
			log.Debug().Str("key", rec.Key).Str("reason", string(out.Rejection)).Msg("Rejected record")
			continue
		}

		id := out.Place.ID
		if _, seen := accepted[id]; !seen {
			if !ds.Has(id) {
				added[category]++
			}
			accepted[id] = category
			res.Stats.Accepted++
			res.Stats.Categories[category]++
		}

		outcome, changes := m.Merge(ds, out.Place, src)
		switch outcome {
		case Inserted:
			res.Stats.Inserted++
		case Merged:
			res.Stats.Merged++
		default:
			res.Stats.Unchanged++
		}
		if m.opts.tracking {
			res.Changes = append(res.Changes, changes...)
		}
	}

	log.Info().
		Int("processed", res.Stats.Processed).
		Int("accepted", res.Stats.Accepted).
		Int("inserted", res.Stats.Inserted).
		Int("merged", res.Stats.Merged).
		Int("rejected", res.Stats.Rejected).
		Int("skipped_cap", res.Stats.SkippedCap).
		Msg("Merged source records")
	return res, nil
}

func (m *Merger) capReached(added map[taxonomy.Category]int, category taxonomy.Category) bool {
	limit := m.opts.limitPerCategory
	return limit > 0 && added[category] >= limit
}

func rejectRecord(res *Result, reason normalize.Rejection) {
	res.Stats.Rejected++
	res.Stats.RejectedBy[reason]++
}
