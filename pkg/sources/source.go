// Package sources defines the parsing boundary between upstream data and
// the normalization core.
//
// Each upstream (OpenStreetMap, the zuerich.com catalog, ...) converts its own
// response shape into Record values before any classification or merging
// happens. Nothing downstream of this package sees source-specific JSON.
//
//	src := osm.New(osm.WithCity("Zurich", "Switzerland"))
//	records, err := src.Records(ctx)
//	if err != nil {
//	    return err
//	}
//	res, err := merger.Build(ctx, dataset, src.ID(), records)
package sources

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// ID identifies a data source. It is also the origin segment of place ids.
type ID string

func (id ID) String() string { return string(id) }

// Known source ids.
const (
	OSM      ID = "osm"
	Zurich   ID = "zurich"
	Wikidata ID = "wikidata"
	OpenAI   ID = "openai"
	Gemini   ID = "gemini"
)

// IDs lists the sources that yield places, most trusted first. Wikidata
// and the generators only fill fields on existing places.
func IDs() []ID { return []ID{Zurich, OSM} }

// IsValid reports whether id names a place source.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Source supplies raw place records. An empty slice is a valid result.
type Source interface {
	ID() ID
	Records(ctx context.Context) ([]Record, error)
}

// Sources maps ids to the sources a build run was asked for. The build
// command fills it once and then walks IDs in trust order.
type Sources struct {
	mu   sync.RWMutex
	byID map[ID]Source
}

func NewSources() *Sources { return &Sources{byID: map[ID]Source{}} }

func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.byID[id]
	return src, ok
}

// Set replaces any source already registered under src.ID().
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	s.byID[src.ID()] = src
	s.mu.Unlock()
}

func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// IDs is sorted so runs are deterministic before trust ordering is applied.
func (s *Sources) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.byID))
}
