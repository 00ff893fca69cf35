// Package enrich fills missing contact fields from a knowledge source and
// attaches generated descriptions and embeddings to existing places.
package enrich

import (
	"context"
	"strings"

	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
)

// Candidate is one entity a knowledge source offers for a place name.
// Every attribute is optional.
type Candidate struct {
	ID       string     `json:"id"`
	Label    string     `json:"label,omitempty"`
	Coord    *geo.Coord `json:"coord,omitempty"`
	Address  string     `json:"address,omitempty"`
	Website  string     `json:"website,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	ImageRef string     `json:"imageRef,omitempty"`
}

// Lookup searches a knowledge source for entities matching a name near a
// locality. An empty slice with a nil error means nothing was found.
type Lookup interface {
	Candidates(ctx context.Context, name, locality string) ([]Candidate, error)
}

// ImageResolver turns an image reference into a direct URL. An empty URL
// with a nil error means the image is not available.
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref string) (string, error)
}

// NeedsEnrichment reports whether any fillable field of p is still empty.
func NeedsEnrichment(p *places.Place) bool {
	return p.Address == "" || p.Website == "" || p.Phone == "" || p.PhotoURL == ""
}

// BestCandidate returns the candidate nearest to p that lies within maxKm,
// and its distance. Candidates without valid coordinates never qualify.
// Ties keep the earlier candidate.
func BestCandidate(p *places.Place, cands []Candidate, maxKm float64) (Candidate, float64, bool) {
	origin := geo.Coord{Lat: p.Lat, Lon: p.Lon}

	var (
		best  Candidate
		bestD float64
		found bool
	)
	for _, c := range cands {
		if c.Coord == nil || !c.Coord.Valid() {
			continue
		}
		d := geo.Haversine(origin, *c.Coord)
		if d > maxKm {
			continue
		}
		if !found || d < bestD {
			best, bestD, found = c, d, true
		}
	}
	return best, bestD, found
}

// Fill copies the candidate's attributes into the empty fields of p. The
// image reference is resolved only when p has no photo yet. On a resolver
// error the fields already filled stay filled and the error is returned with
// the changes made so far.
func Fill(ctx context.Context, p *places.Place, cand Candidate, images ImageResolver, src sources.ID) ([]merge.Change, error) {
	var changes []merge.Change
	set := func(field string, dst *string, val string) {
		val = strings.TrimSpace(val)
		if *dst != "" || val == "" {
			return
		}
		*dst = val
		changes = append(changes, merge.Change{PlaceID: p.ID, Field: field, NewValue: val, Type: merge.ChangeTypeFill, Source: src})
	}

	set("address", &p.Address, cand.Address)
	set("website", &p.Website, cand.Website)
	set("phone", &p.Phone, cand.Phone)

	if p.PhotoURL == "" && cand.ImageRef != "" && images != nil {
		url, err := images.ResolveImage(ctx, cand.ImageRef)
		if err != nil {
			return changes, err
		}
		set("photoUrl", &p.PhotoURL, url)
	}
	return changes, nil
}
