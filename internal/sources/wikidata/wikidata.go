// Package wikidata looks up places on Wikidata and resolves their images
// through Wikimedia Commons. Client satisfies enrich.Lookup and
// enrich.ImageResolver.
package wikidata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/enrich"
	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/sources"
)

// Wikidata property ids read from entity claims.
const (
	PropCoordinates   = "P625"
	PropWebsite       = "P856"
	PropPhone         = "P1329"
	PropAddress       = "P969"
	PropStreetAddress = "P6375"
	PropImage         = "P18"
)

// Client queries the Wikidata and Commons APIs.
type Client struct {
	http        *transport.Client
	apiURL      string
	commonsURL  string
	language    string
	searchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoints overrides the Wikidata and Commons API URLs.
func WithEndpoints(api, commons string) Option {
	return func(c *Client) {
		if api != "" {
			c.apiURL = api
		}
		if commons != "" {
			c.commonsURL = commons
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *transport.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLanguage sets the search language.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithSearchLimit sets how many search hits become candidates.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// New creates a client.
func New(opts ...Option) *Client {
	c := &Client{
		apiURL:      constants.WikidataAPIURL,
		commonsURL:  constants.CommonsAPIURL,
		language:    constants.DefaultLanguage,
		searchLimit: constants.CandidateSearchLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = transport.New(string(sources.Wikidata), transport.WithInterval(500*time.Millisecond))
	}
	return c
}

// Candidates searches for name near locality and returns the hits, in
// search rank order, with their claims read.
func (c *Client) Candidates(ctx context.Context, name, locality string) ([]enrich.Candidate, error) {
	hits, err := c.search(ctx, strings.TrimSpace(name+" "+locality))
	if err != nil || len(hits) == 0 {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	entities, err := c.entities(ctx, ids)
	if err != nil {
		return nil, err
	}

	cands := make([]enrich.Candidate, 0, len(hits))
	for _, h := range hits {
		e, ok := entities[h.ID]
		if !ok {
			continue
		}
		cand := e.candidate(h.ID)
		cand.Label = h.Label
		cands = append(cands, cand)
	}
	return cands, nil
}

// ResolveImage returns the direct URL of a Commons file, or "" when Commons
// does not know the file.
func (c *Client) ResolveImage(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if !strings.HasPrefix(ref, "File:") {
		ref = "File:" + ref
	}
	query := url.Values{
		"action": {"query"},
		"titles": {ref},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
		"format": {"json"},
	}
	var resp struct {
		Query struct {
			Pages map[string]struct {
				ImageInfo []struct {
					URL string `json:"url"`
				} `json:"imageinfo"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.http.GetJSON(ctx, c.commonsURL, query, &resp); err != nil {
		return "", err
	}
	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", nil
}

type searchHit struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (c *Client) search(ctx context.Context, term string) ([]searchHit, error) {
	query := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {term},
		"language": {c.language},
		"format":   {"json"},
		"limit":    {strconv.Itoa(c.searchLimit)},
	}
	var resp struct {
		Search []searchHit `json:"search"`
	}
	if err := c.http.GetJSON(ctx, c.apiURL, query, &resp); err != nil {
		return nil, err
	}
	hits := resp.Search[:0]
	for _, h := range resp.Search {
		if h.ID != "" {
			hits = append(hits, h)
		}
	}
	return hits, nil
}

func (c *Client) entities(ctx context.Context, ids []string) (map[string]entity, error) {
	query := url.Values{
		"action": {"wbgetentities"},
		"ids":    {strings.Join(ids, "|")},
		"props":  {"claims"},
		"format": {"json"},
	}
	var resp struct {
		Entities map[string]entity `json:"entities"`
	}
	if err := c.http.GetJSON(ctx, c.apiURL, query, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

type entity struct {
	Claims map[string][]claim `json:"claims"`
}

type claim struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

func (e entity) value(prop string) json.RawMessage {
	claims := e.Claims[prop]
	if len(claims) == 0 {
		return nil
	}
	return claims[0].MainSnak.DataValue.Value
}

// str reads a string value or a monolingual text value.
func (e entity) str(prop string) string {
	raw := e.value(prop)
	if raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var mono struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &mono) == nil {
		return strings.TrimSpace(mono.Text)
	}
	return ""
}

func (e entity) coord() *geo.Coord {
	raw := e.value(PropCoordinates)
	if raw == nil {
		return nil
	}
	var v struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if json.Unmarshal(raw, &v) != nil || v.Latitude == nil || v.Longitude == nil {
		return nil
	}
	return &geo.Coord{Lat: *v.Latitude, Lon: *v.Longitude}
}

func (e entity) candidate(id string) enrich.Candidate {
	return enrich.Candidate{
		ID:       id,
		Coord:    e.coord(),
		Address:  sources.FirstNonEmpty(e.str(PropAddress), e.str(PropStreetAddress)),
		Website:  e.str(PropWebsite),
		Phone:    e.str(PropPhone),
		ImageRef: e.str(PropImage),
	}
}
