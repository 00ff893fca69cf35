// Package zurich reads places from the zuerich.com tourism catalog.
//
// The catalog lists categories at its base URL and the objects of one
// category at ?id=<category>. Categories are fetched concurrently; records
// come back in category order so repeated runs see the same stream.
package zurich

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/sources"
)

// Category is one catalog category.
type Category struct {
	ID   string
	Name string
}

// Source fetches the zuerich.com catalog.
type Source struct {
	client          *transport.Client
	baseURL         string
	limitCategories int
	concurrency     int
}

// Option configures a Source.
type Option func(*Source)

// WithBaseURL overrides the catalog URL.
func WithBaseURL(u string) Option {
	return func(s *Source) {
		if u != "" {
			s.baseURL = u
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

// WithLimitCategories only fetches the first n categories. Zero means all.
func WithLimitCategories(n int) Option {
	return func(s *Source) {
		if n >= 0 {
			s.limitCategories = n
		}
	}
}

// WithConcurrency bounds the number of category fetches in flight.
func WithConcurrency(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a catalog source.
func New(opts ...Option) *Source {
	s := &Source{
		baseURL:     constants.ZurichCatalogURL,
		concurrency: constants.MaxConcurrentFetches,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = transport.New(string(sources.Zurich), transport.WithInterval(300*time.Millisecond))
	}
	return s
}

// ID returns sources.Zurich.
func (s *Source) ID() sources.ID {
	return sources.Zurich
}

// Categories lists the catalog categories in catalog order.
func (s *Source) Categories(ctx context.Context) ([]Category, error) {
	var raw []struct {
		ID   json.RawMessage `json:"id"`
		Name json.RawMessage `json:"name"`
	}
	if err := s.client.GetJSON(ctx, s.baseURL, nil, &raw); err != nil {
		return nil, err
	}
	cats := make([]Category, 0, len(raw))
	for _, c := range raw {
		id := scalar(c.ID)
		if id == "" {
			continue
		}
		cats = append(cats, Category{ID: id, Name: text(c.Name)})
	}
	return cats, nil
}

// Objects returns the records of one category.
func (s *Source) Objects(ctx context.Context, categoryID string) ([]sources.Record, error) {
	var objs []object
	if err := s.client.GetJSON(ctx, s.baseURL, url.Values{"id": {categoryID}}, &objs); err != nil {
		return nil, err
	}
	records := make([]sources.Record, 0, len(objs))
	for _, o := range objs {
		records = append(records, o.record())
	}
	return records, nil
}

// Records fetches every category's objects.
func (s *Source) Records(ctx context.Context) ([]sources.Record, error) {
	log := logging.FromContext(ctx)

	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if s.limitCategories > 0 && len(cats) > s.limitCategories {
		cats = cats[:s.limitCategories]
	}

	results := make([][]sources.Record, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, cat := range cats {
		g.Go(func() error {
			recs, err := s.Objects(gctx, cat.ID)
			if err != nil {
				return err
			}
			results[i] = recs
			log.Debug().Str("category", cat.ID).Int("objects", len(recs)).Msg("Fetched category")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []sources.Record
	for _, recs := range results {
		records = append(records, recs...)
	}
	log.Info().Int("categories", len(cats)).Int("objects", len(records)).Msg("Fetched catalog")
	return records, nil
}

type object struct {
	Identifier     json.RawMessage `json:"identifier"`
	ID             json.RawMessage `json:"id"`
	GeoCoordinates json.RawMessage `json:"geoCoordinates"`
	Geo            json.RawMessage `json:"geo"`
	Name           json.RawMessage `json:"name"`
	Headline       json.RawMessage `json:"headline"`
	Title          json.RawMessage `json:"title"`
	Category       json.RawMessage `json:"category"`
	Type           json.RawMessage `json:"@type"`

	DisambiguatingDescription json.RawMessage `json:"disambiguatingDescription"`
	Description               json.RawMessage `json:"description"`
	TextTeaser                json.RawMessage `json:"textTeaser"`
	TitleTeaser               json.RawMessage `json:"titleTeaser"`

	Address   json.RawMessage `json:"address"`
	URL       json.RawMessage `json:"url"`
	Telephone json.RawMessage `json:"telephone"`
	Image     json.RawMessage `json:"image"`
	Photo     json.RawMessage `json:"photo"`
}

type coordinates struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

func coordOf(raw json.RawMessage) *geo.Coord {
	var c coordinates
	if isNull(raw) || json.Unmarshal(raw, &c) != nil {
		return nil
	}
	lat, ok1 := number(c.Latitude)
	lon, ok2 := number(c.Longitude)
	if !ok1 || !ok2 {
		return nil
	}
	return &geo.Coord{Lat: lat, Lon: lon}
}

type address struct {
	StreetAddress   json.RawMessage `json:"streetAddress"`
	PostalCode      json.RawMessage `json:"postalCode"`
	AddressLocality json.RawMessage `json:"addressLocality"`
	URL             json.RawMessage `json:"url"`
	Telephone       json.RawMessage `json:"telephone"`
}

func (o object) record() sources.Record {
	key := scalar(o.Identifier)
	if key == "" {
		key = scalar(o.ID)
	}
	point := coordOf(o.GeoCoordinates)
	if point == nil {
		point = coordOf(o.Geo)
	}

	rec := sources.Record{
		Origin: sources.Zurich,
		Key:    key,
		Name:   sources.FirstNonEmpty(text(o.Name), text(o.Headline), text(o.Title)),
		Point:  point,
		Signals: sources.Signals{
			Labels: keys(o.Category),
			Codes:  lowerList(o.Type),
		},
		Description: sources.FirstNonEmpty(
			text(o.DisambiguatingDescription),
			text(o.Description),
			text(o.TextTeaser),
			text(o.TitleTeaser),
		),
		Photos: nonEmpty(imageURL(o.Image), imageURL(o.Photo)),
	}

	websites := []string{scalar(o.URL)}
	phones := []string{scalar(o.Telephone)}
	var a address
	if !isNull(o.Address) && json.Unmarshal(o.Address, &a) == nil {
		rec.Address = sources.Address{
			Street:     text(a.StreetAddress),
			PostalCode: text(a.PostalCode),
			City:       text(a.AddressLocality),
		}
		websites = append(websites, scalar(a.URL))
		phones = append(phones, scalar(a.Telephone))
	}
	rec.Websites = nonEmpty(websites...)
	rec.Phones = nonEmpty(phones...)
	return rec
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
