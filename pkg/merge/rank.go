package merge

import (
	"slices"

	"github.com/helgo/places/pkg/sources"
)

// DefaultRanks orders place sources by trust. The curated tourism catalog
// outranks crowd-sourced map data.
func DefaultRanks() map[sources.ID]int {
	return map[sources.ID]int{
		sources.Zurich: 100,
		sources.OSM:    80,
	}
}

// Order sorts ids by descending rank, keeping the given order between equal
// ranks. Because merging is first-writer-wins, running sources in this
// order lets the more trusted source fill a contested field.
func (m *Merger) Order(ids []sources.ID) []sources.ID {
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b sources.ID) int {
		return m.opts.ranks[b] - m.opts.ranks[a]
	})
	return out
}
