// Package normalize assembles canonical places from source records.
//
// Normalization never fails with an error. A record that cannot become a
// valid place yields a Result carrying a Rejection reason, which callers
// count and move past.
package normalize

import (
	"strings"

	"github.com/helgo/places/pkg/classify"
	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/identity"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/tagging"
	"github.com/helgo/places/pkg/taxonomy"
)

// Rejection names why a record did not become a place.
type Rejection string

// Rejection reasons.
const (
	MissingCoordinates Rejection = "missing-coordinates"
	MissingName        Rejection = "missing-name"
	MissingKey         Rejection = "missing-key"
	MissingDefaults    Rejection = "missing-defaults"
	Unclassified       Rejection = "unclassified"
)

// Result is either a Place or a Rejection, never both.
type Result struct {
	Place     *places.Place
	Rejection Rejection
}

// OK reports whether the result holds a place.
func (r Result) OK() bool {
	return r.Place != nil
}

func reject(reason Rejection) Result {
	return Result{Rejection: reason}
}

// Normalizer turns records into places using one set of tables.
type Normalizer struct {
	tables     *taxonomy.Tables
	classifier *classify.Classifier
	extractor  *tagging.Extractor
}

// New creates a Normalizer over tables.
func New(tables *taxonomy.Tables) *Normalizer {
	return &Normalizer{
		tables:     tables,
		classifier: classify.New(tables),
		extractor:  tagging.New(tables),
	}
}

// Tables returns the tables the normalizer was built with.
func (n *Normalizer) Tables() *taxonomy.Tables {
	return n.tables
}

// Extractor returns the tag extractor sharing the normalizer's tables.
func (n *Normalizer) Extractor() *tagging.Extractor {
	return n.extractor
}

// Classify returns the record's category, falling back when no rule matches.
func (n *Normalizer) Classify(rec sources.Record) taxonomy.Category {
	return n.classifier.Classify(rec.Signals)
}

// Match returns the record's category only when a rule matched.
func (n *Normalizer) Match(rec sources.Record) (taxonomy.Category, bool) {
	return n.classifier.Match(rec.Signals)
}

// ID returns the id a record will get, or "" when it has no name or key.
func (n *Normalizer) ID(rec sources.Record) string {
	if strings.TrimSpace(rec.Name) == "" || strings.TrimSpace(rec.Key) == "" {
		return ""
	}
	return identity.Assign(rec.Origin, rec.Key, strings.TrimSpace(rec.Name))
}

// Normalize classifies rec and builds its place.
func (n *Normalizer) Normalize(rec sources.Record) Result {
	return n.Build(rec, n.Classify(rec))
}

// Build assembles the place for rec under an already chosen category.
func (n *Normalizer) Build(rec sources.Record, category taxonomy.Category) Result {
	coord, ok := rec.Coord()
	if !ok {
		return reject(MissingCoordinates)
	}
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return reject(MissingName)
	}
	if strings.TrimSpace(rec.Key) == "" {
		return reject(MissingKey)
	}
	defaults, ok := n.tables.DefaultsFor(string(rec.Origin), category)
	if !ok {
		return reject(MissingDefaults)
	}

	return Result{Place: &places.Place{
		ID:            identity.Assign(rec.Origin, rec.Key, name),
		Name:          name,
		Category:      category,
		Lat:           coord.Lat,
		Lon:           coord.Lon,
		Tags:          n.extractor.Extract(category, rec.Cuisine, rec.Signals.Labels),
		Address:       FormatAddress(rec.Address),
		Website:       sources.FirstNonEmpty(rec.Websites...),
		Phone:         sources.FirstNonEmpty(rec.Phones...),
		PhotoURL:      sources.FirstNonEmpty(rec.Photos...),
		MapsURL:       geo.MapsURL(coord),
		IndoorOutdoor: defaults.IndoorOutdoor,
		DurationMins:  defaults.DurationMins,
		BestTimeOfDay: defaults.BestTimeOfDay,
		Description:   PlainText(rec.Description),
		Area:          strings.TrimSpace(rec.Area),
	}}
}
