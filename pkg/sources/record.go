package sources

import (
	"strings"

	"github.com/helgo/places/pkg/geo"
)

// Signals are the raw type hints a classifier and tag extractor read.
type Signals struct {
	// Labels are free-text category names ("Gastronomy", "Old Town Walks").
	Labels []string `json:"labels,omitempty"`
	// Codes are controlled-vocabulary type codes: schema.org types
	// ("restaurant", "cafeorcoffeeshop") or OSM tags as "key=value".
	Codes []string `json:"codes,omitempty"`
}

// Empty reports whether no signal is present.
func (s Signals) Empty() bool {
	return len(s.Labels) == 0 && len(s.Codes) == 0
}

// Address holds the separately reported address parts.
type Address struct {
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	City        string `json:"city,omitempty"`
}

// Record is one upstream place in source-neutral form. Optional values are
// empty strings or nil slices; candidate lists are ordered by preference.
type Record struct {
	Origin ID `json:"origin"`
	// Key is the source-native identifier ("node-123", "8821").
	Key  string `json:"key"`
	Name string `json:"name"`

	// Point is a direct coordinate; Center is the centroid a source
	// supplies for way/relation geometries.
	Point  *geo.Coord `json:"point,omitempty"`
	Center *geo.Coord `json:"center,omitempty"`

	Signals Signals `json:"signals"`
	// Cuisine is a raw semicolon/comma delimited cuisine field.
	Cuisine string `json:"cuisine,omitempty"`

	Address     Address  `json:"address"`
	Websites    []string `json:"websites,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	Description string   `json:"description,omitempty"`
	Area        string   `json:"area,omitempty"`
}

// Coord resolves the record's coordinate, preferring Point over Center.
func (r Record) Coord() (geo.Coord, bool) {
	for _, c := range []*geo.Coord{r.Point, r.Center} {
		if c != nil && c.Valid() {
			return *c, true
		}
	}
	return geo.Coord{}, false
}

// FirstNonEmpty returns the first candidate that is not blank after trimming.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}
