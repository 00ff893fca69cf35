package enrich

import (
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/sources"
)

type options struct {
	limit    int
	maxKm    float64
	locality string
	source   sources.ID
	tracking bool
}

func defaultOptions() *options {
	return &options{
		limit:    constants.DefaultEnrichLimit,
		maxKm:    constants.DefaultMaxKm,
		locality: constants.DefaultCity,
		source:   sources.Wikidata,
		tracking: true,
	}
}

// Option configures an Enricher.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithLimit stops a run after n lookups. Zero means unlimited.
func WithLimit(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "limit", Value: n, Message: "cannot be negative"}
		}
		o.limit = n
		return nil
	}
}

// WithMaxKm sets the match radius around each place.
func WithMaxKm(km float64) Option {
	return func(o *options) error {
		if km < 0 {
			return &errors.ValidationError{Field: "max_km", Value: km, Message: "cannot be negative"}
		}
		o.maxKm = km
		return nil
	}
}

// WithLocality sets the hint appended to every name search.
func WithLocality(locality string) Option {
	return func(o *options) error {
		o.locality = locality
		return nil
	}
}

// WithSource sets the source id recorded on changes.
func WithSource(id sources.ID) Option {
	return func(o *options) error {
		if id == "" {
			return &errors.ValidationError{Field: "source", Message: "cannot be empty"}
		}
		o.source = id
		return nil
	}
}

// WithChangeTracking controls whether Run records field-level changes.
func WithChangeTracking(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}
