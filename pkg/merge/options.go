package merge

import (
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/sources"
)

type options struct {
	limitPerCategory int
	skipUnclassified bool
	tracking         bool
	ranks            map[sources.ID]int
}

func defaultOptions() *options {
	return &options{
		tracking: true,
		ranks:    DefaultRanks(),
	}
}

// Option configures a Merger.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithLimitPerCategory caps how many distinct places per category one
// Build call may accept. Zero means unlimited.
func WithLimitPerCategory(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "limit_per_category", Value: n, Message: "cannot be negative"}
		}
		o.limitPerCategory = n
		return nil
	}
}

// WithSkipUnclassified drops records that no classification rule matched
// instead of filing them under the fallback category.
func WithSkipUnclassified(enabled bool) Option {
	return func(o *options) error {
		o.skipUnclassified = enabled
		return nil
	}
}

// WithChangeTracking controls whether Build records field-level changes.
func WithChangeTracking(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

// WithRanks replaces the source trust ranks used by Order.
func WithRanks(ranks map[sources.ID]int) Option {
	return func(o *options) error {
		if ranks == nil {
			return &errors.ValidationError{Field: "ranks", Message: "cannot be nil"}
		}
		o.ranks = ranks
		return nil
	}
}
