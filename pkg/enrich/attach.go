package enrich

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
)

// AttachStats counts what an attach pass did.
type AttachStats struct {
	Attached int `json:"attached" yaml:"attached"`
	Empty    int `json:"empty" yaml:"empty"`
	Unknown  int `json:"unknown" yaml:"unknown"`
	Rejected int `json:"rejected" yaml:"rejected"`
}

// AttachResult is the outcome of an attach pass.
type AttachResult struct {
	Stats   AttachStats    `json:"stats" yaml:"stats"`
	Changes []merge.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// AttachDescriptions overwrites aiDescription on every place whose id is in
// texts. Blank texts are ignored.
func AttachDescriptions(ds *places.Dataset, texts map[string]string, src sources.ID) AttachResult {
	var res AttachResult
	for _, id := range slices.Sorted(maps.Keys(texts)) {
		text := strings.TrimSpace(texts[id])
		if text == "" {
			res.Stats.Empty++
			continue
		}
		p, ok := ds.Get(id)
		if !ok {
			res.Stats.Unknown++
			continue
		}
		res.Changes = append(res.Changes, merge.Change{
			PlaceID:  id,
			Field:    "aiDescription",
			OldValue: p.AIDescription,
			NewValue: text,
			Type:     merge.ChangeTypeAttach,
			Source:   src,
		})
		p.AIDescription = text
		res.Stats.Attached++
	}
	return res
}

// AttachEmbeddings overwrites embedding on every place whose id is in
// vectors. Vectors whose length differs from dim are rejected. When dim is
// zero the expected length is taken from the embeddings already in ds, or
// else from the first non-empty vector in id order.
func AttachEmbeddings(ds *places.Dataset, vectors map[string][]float64, dim int, src sources.ID) AttachResult {
	ids := slices.Sorted(maps.Keys(vectors))
	if dim <= 0 {
		dim = expectedDim(ds, ids, vectors)
	}

	var res AttachResult
	for _, id := range ids {
		vec := vectors[id]
		if len(vec) == 0 {
			res.Stats.Empty++
			continue
		}
		p, ok := ds.Get(id)
		if !ok {
			res.Stats.Unknown++
			continue
		}
		if len(vec) != dim {
			res.Stats.Rejected++
			continue
		}
		res.Changes = append(res.Changes, merge.Change{
			PlaceID:  id,
			Field:    "embedding",
			NewValue: strconv.Itoa(len(vec)) + " dims",
			Type:     merge.ChangeTypeAttach,
			Source:   src,
		})
		p.Embedding = slices.Clone(vec)
		res.Stats.Attached++
	}
	return res
}

func expectedDim(ds *places.Dataset, ids []string, vectors map[string][]float64) int {
	for _, p := range ds.Places() {
		if len(p.Embedding) > 0 {
			return len(p.Embedding)
		}
	}
	for _, id := range ids {
		if n := len(vectors[id]); n > 0 {
			return n
		}
	}
	return 0
}
