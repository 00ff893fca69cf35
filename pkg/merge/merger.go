// Package merge folds normalized places into a dataset.
//
// A place whose id is new is inserted verbatim. A place whose id exists
// only fills optional fields that are still empty and adds tags; required,
// defaulted and generated fields keep whatever the first insert set.
package merge

import (
	"slices"

	"github.com/helgo/places/pkg/normalize"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/tagging"
)

// Outcome is what a single Merge did to the dataset.
type Outcome int

const (
	// Unchanged means the id existed and nothing was filled or added.
	Unchanged Outcome = iota
	// Inserted means the id was new.
	Inserted
	// Merged means the id existed and at least one field or tag changed.
	Merged
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Merged:
		return "merged"
	default:
		return "unchanged"
	}
}

// Merger applies the fill-only merge rules.
type Merger struct {
	normalizer *normalize.Normalizer
	extractor  *tagging.Extractor
	opts       *options
}

// New creates a Merger that normalizes with n.
func New(n *normalize.Normalizer, opts ...Option) (*Merger, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Merger{
		normalizer: n,
		extractor:  n.Extractor(),
		opts:       o,
	}, nil
}

// fillable lists the optional fields merge may fill, in report order.
var fillable = []struct {
	name string
	ptr  func(*places.Place) *string
}{
	{"address", func(p *places.Place) *string { return &p.Address }},
	{"website", func(p *places.Place) *string { return &p.Website }},
	{"phone", func(p *places.Place) *string { return &p.Phone }},
	{"photoUrl", func(p *places.Place) *string { return &p.PhotoURL }},
	{"description", func(p *places.Place) *string { return &p.Description }},
	{"area", func(p *places.Place) *string { return &p.Area }},
}

// Merge folds incoming into ds. The returned changes describe exactly what
// was written.
func (m *Merger) Merge(ds *places.Dataset, incoming *places.Place, src sources.ID) (Outcome, []Change) {
	existing, ok := ds.Get(incoming.ID)
	if !ok {
		incoming.Tags = m.extractor.Filter(incoming.Tags)
		if err := ds.Insert(incoming); err != nil {
			return Unchanged, nil
		}
		return Inserted, []Change{{PlaceID: incoming.ID, Type: ChangeTypeInsert, Source: src}}
	}

	var changes []Change
	for _, f := range fillable {
		dst := f.ptr(existing)
		val := *f.ptr(incoming)
		if *dst != "" || val == "" {
			continue
		}
		*dst = val
		changes = append(changes, Change{PlaceID: existing.ID, Field: f.name, NewValue: val, Type: ChangeTypeFill, Source: src})
	}

	union := m.extractor.Union(existing.Tags, incoming.Tags)
	if !slices.Equal(union, existing.Tags) {
		changes = append(changes, Change{
			PlaceID:  existing.ID,
			Field:    "tags",
			OldValue: tagList(existing.Tags),
			NewValue: tagList(union),
			Type:     ChangeTypeTags,
			Source:   src,
		})
		existing.Tags = union
	}

	if len(changes) == 0 {
		return Unchanged, nil
	}
	return Merged, changes
}
