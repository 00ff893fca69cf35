// Package osm reads places from OpenStreetMap.
//
// The city's bounding box comes from Nominatim; a single Overpass query then
// selects every element carrying one of the feature tags in Selectors.
package osm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/sources"
)

// codeKeys are the OSM keys forwarded to the classifier as key=value codes.
var codeKeys = []string{"amenity", "tourism", "leisure", "route", "shop", "historic"}

// Selectors are the Overpass filters queried inside the bounding box.
var Selectors = []string{
	`node["amenity"="restaurant"]`, `way["amenity"="restaurant"]`, `relation["amenity"="restaurant"]`,
	`node["amenity"="cafe"]`, `way["amenity"="cafe"]`, `relation["amenity"="cafe"]`,
	`node["amenity"="bar"]`, `way["amenity"="bar"]`, `relation["amenity"="bar"]`,
	`node["amenity"="pub"]`, `way["amenity"="pub"]`, `relation["amenity"="pub"]`,
	`node["tourism"="museum"]`, `way["tourism"="museum"]`, `relation["tourism"="museum"]`,
	`node["amenity"="marketplace"]`, `way["amenity"="marketplace"]`, `relation["amenity"="marketplace"]`,
	`node["leisure"="park"]`, `way["leisure"="park"]`, `relation["leisure"="park"]`,
	`node["tourism"="viewpoint"]`, `way["tourism"="viewpoint"]`, `relation["tourism"="viewpoint"]`,
	`relation["route"~"^(hiking|foot|walking|trail)$"]`,
}

// BBox is a south/west/north/east bounding box.
type BBox struct {
	South, West, North, East float64
}

// String renders the box in Overpass order.
func (b BBox) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.South) + "," + f(b.West) + "," + f(b.North) + "," + f(b.East)
}

// Source fetches OSM elements for one city.
type Source struct {
	client       *transport.Client
	city         string
	country      string
	nominatimURL string
	overpassURL  string
	selectors    []string
}

// Option configures a Source.
type Option func(*Source)

// WithCity sets the city and country used for the bounding box lookup.
func WithCity(city, country string) Option {
	return func(s *Source) {
		s.city = city
		s.country = country
	}
}

// WithEndpoints overrides the Nominatim and Overpass URLs.
func WithEndpoints(nominatim, overpass string) Option {
	return func(s *Source) {
		if nominatim != "" {
			s.nominatimURL = nominatim
		}
		if overpass != "" {
			s.overpassURL = overpass
		}
	}
}

// WithClient sets the HTTP client.
func WithClient(c *transport.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithSelectors replaces the Overpass selectors.
func WithSelectors(selectors ...string) Option {
	return func(s *Source) {
		if len(selectors) > 0 {
			s.selectors = selectors
		}
	}
}

// New creates an OSM source.
func New(opts ...Option) *Source {
	s := &Source{
		city:         constants.DefaultCity,
		country:      constants.DefaultCountry,
		nominatimURL: constants.NominatimURL,
		overpassURL:  constants.OverpassURL,
		selectors:    Selectors,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = transport.New(string(sources.OSM),
			transport.WithTimeout(constants.OverpassTimeout),
			transport.WithInterval(time.Second))
	}
	return s
}

// ID returns sources.OSM.
func (s *Source) ID() sources.ID {
	return sources.OSM
}

// Records looks up the bounding box and returns every matching element.
func (s *Source) Records(ctx context.Context) ([]sources.Record, error) {
	log := logging.FromContext(ctx)

	bbox, err := s.BBox(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("bbox", bbox.String()).Str("city", s.city).Msg("Resolved bounding box")

	var resp overpassResponse
	form := url.Values{"data": {s.Query(bbox)}}
	if err := s.client.PostFormJSON(ctx, s.overpassURL, form, &resp); err != nil {
		return nil, err
	}

	records := make([]sources.Record, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		records = append(records, el.record())
	}
	log.Info().Int("elements", len(records)).Msg("Fetched OpenStreetMap elements")
	return records, nil
}

// BBox asks Nominatim for the city's bounding box.
func (s *Source) BBox(ctx context.Context) (BBox, error) {
	query := url.Values{
		"q":      {s.city + ", " + s.country},
		"format": {"json"},
		"limit":  {"1"},
	}
	var results []struct {
		BoundingBox []string `json:"boundingbox"`
	}
	if err := s.client.GetJSON(ctx, s.nominatimURL, query, &results); err != nil {
		return BBox{}, err
	}
	if len(results) == 0 {
		return BBox{}, errors.NewNotFoundError("city", s.city+", "+s.country)
	}
	return parseBBox(results[0].BoundingBox)
}

// parseBBox reads Nominatim's [south, north, west, east] strings.
func parseBBox(raw []string) (BBox, error) {
	if len(raw) != 4 {
		return BBox{}, errors.NewParseError("json", "nominatim", fmt.Sprintf("boundingbox has %d values, want 4", len(raw)), nil)
	}
	var v [4]float64
	for i, s := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return BBox{}, errors.WrapParse("json", "nominatim", err)
		}
		v[i] = f
	}
	return BBox{South: v[0], North: v[1], West: v[2], East: v[3]}, nil
}

// Query renders the Overpass QL for bbox.
func (s *Source) Query(bbox BBox) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:120];(")
	for _, sel := range s.selectors {
		b.WriteString(sel)
		b.WriteString("(")
		b.WriteString(bbox.String())
		b.WriteString(");")
	}
	b.WriteString(");out center tags;")
	return b.String()
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *geo.Coord        `json:"center"`
	Tags   map[string]string `json:"tags"`
}

func (e element) record() sources.Record {
	t := e.Tags
	rec := sources.Record{
		Origin:  sources.OSM,
		Key:     e.Type + "-" + strconv.FormatInt(e.ID, 10),
		Name:    t["name"],
		Center:  e.Center,
		Cuisine: t["cuisine"],
		Address: sources.Address{
			Street:      t["addr:street"],
			HouseNumber: t["addr:housenumber"],
			PostalCode:  t["addr:postcode"],
			City:        t["addr:city"],
		},
		Websites:    nonEmpty(t["website"], t["contact:website"]),
		Phones:      nonEmpty(t["phone"], t["contact:phone"]),
		Description: t["description"],
		Area:        sources.FirstNonEmpty(t["addr:suburb"], t["addr:neighbourhood"]),
	}
	if e.Lat != nil && e.Lon != nil {
		rec.Point = &geo.Coord{Lat: *e.Lat, Lon: *e.Lon}
	}
	for _, k := range codeKeys {
		if v := t[k]; v != "" {
			rec.Signals.Codes = append(rec.Signals.Codes, k+"="+v)
		}
	}
	return rec
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
