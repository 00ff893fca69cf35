package sources_test

import (
	"context"

	"github.com/helgo/places/pkg/sources"
)

type stubSource struct {
	id      sources.ID
	records []sources.Record
}

func (s stubSource) ID() sources.ID { return s.id }

func (s stubSource) Records(context.Context) ([]sources.Record, error) { return s.records, nil }
