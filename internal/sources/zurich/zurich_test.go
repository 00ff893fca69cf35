package zurich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/sources"
)

const categoriesBody = `[
  {"id": 101, "name": {"en": "Restaurants", "de": "Restaurants"}},
  {"id": "", "name": "broken"},
  {"id": "202", "name": "Parks"}
]`

const restaurantsBody = `[
  {
    "identifier": "8821",
    "@type": "Restaurant",
    "name": {"de": "Kronenhalle", "en": "Kronenhalle"},
    "category": {"Gastronomy": {}, "Swiss Cuisine": {}},
    "geoCoordinates": {"latitude": 47.3670, "longitude": "8.5450"},
    "disambiguatingDescription": {"en": "<p>Art &amp; food</p>"},
    "address": {"streetAddress": "Rämistrasse 4", "postalCode": "8001",
                "addressLocality": "Zürich", "url": "https://kronenhalle.ch",
                "telephone": "+41 44 262 99 00"},
    "image": [{"url": "https://img.example/k.jpg"}]
  },
  {"id": 17, "@type": ["Park", "Place"], "headline": "Platzspitz",
   "geo": {"latitude": "47.38", "longitude": "8.54"}, "photo": "https://img.example/p.jpg",
   "address": "not an object"}
]`

func newServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		switch r.URL.Query().Get("id") {
		case "":
			fmt.Fprint(w, categoriesBody)
		case "101":
			time.Sleep(20 * time.Millisecond)
			fmt.Fprint(w, restaurantsBody)
		case "202":
			fmt.Fprint(w, `[{"identifier": 5, "title": "Lindenhof", "category": {"Viewpoints": {}},
			                 "geoCoordinates": {"latitude": 47.373, "longitude": 8.541}}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSource(srv *httptest.Server, opts ...Option) *Source {
	base := []Option{WithBaseURL(srv.URL), WithClient(transport.New("zurich", transport.WithInterval(0)))}
	return New(append(base, opts...)...)
}

func TestCategories(t *testing.T) {
	cats, err := newSource(newServer(t, nil)).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{{ID: "101", Name: "Restaurants"}, {ID: "202", Name: "Parks"}}, cats)
}

func TestRecordsKeepCategoryOrder(t *testing.T) {
	src := newSource(newServer(t, nil))
	recs, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, sources.Zurich, src.ID())

	assert.Equal(t, []string{"8821", "17", "5"}, []string{recs[0].Key, recs[1].Key, recs[2].Key})

	k := recs[0]
	assert.Equal(t, "Kronenhalle", k.Name)
	assert.Equal(t, []string{"Gastronomy", "Swiss Cuisine"}, k.Signals.Labels)
	assert.Equal(t, []string{"restaurant"}, k.Signals.Codes)
	require.NotNil(t, k.Point)
	assert.Equal(t, 8.545, k.Point.Lon)
	assert.Equal(t, "<p>Art &amp; food</p>", k.Description)
	assert.Equal(t, "Rämistrasse 4", k.Address.Street)
	assert.Equal(t, "Zürich", k.Address.City)
	assert.Equal(t, []string{"https://kronenhalle.ch"}, k.Websites)
	assert.Equal(t, []string{"+41 44 262 99 00"}, k.Phones)
	assert.Equal(t, []string{"https://img.example/k.jpg"}, k.Photos)

	p := recs[1]
	assert.Equal(t, "Platzspitz", p.Name)
	assert.Equal(t, []string{"park", "place"}, p.Signals.Codes)
	assert.Equal(t, []string{"https://img.example/p.jpg"}, p.Photos)
	assert.Empty(t, p.Address.Street)
	require.NotNil(t, p.Point)
	assert.Equal(t, 47.38, p.Point.Lat)

	assert.Equal(t, "Lindenhof", recs[2].Name)
}

func TestLimitCategories(t *testing.T) {
	var calls atomic.Int32
	recs, err := newSource(newServer(t, &calls), WithLimitCategories(1)).Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "" {
			fmt.Fprint(w, `[{"id": "1"}]`)
			return
		}
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newSource(srv).Records(context.Background())
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestValueHelpers(t *testing.T) {
	raw := func(s string) json.RawMessage { return json.RawMessage(s) }

	assert.Equal(t, "12", scalar(raw(`12`)))
	assert.Equal(t, "x", scalar(raw(`" x "`)))
	assert.Equal(t, "", scalar(raw(`null`)))
	assert.Equal(t, "", scalar(nil))

	assert.Equal(t, "Hallo", text(raw(`{"de": "Hallo", "default": "Hi"}`)))
	assert.Equal(t, "Hi", text(raw(`{"fr": "Salut", "default": "Hi"}`)))
	assert.Equal(t, "", text(raw(`{"fr": "Salut"}`)))

	f, ok := number(raw(`"47.1"`))
	assert.True(t, ok)
	assert.Equal(t, 47.1, f)
	_, ok = number(raw(`"north"`))
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, keys(raw(`{"b": 1, "a": 2}`)))
	assert.Nil(t, keys(raw(`[]`)))

	assert.Equal(t, "u", imageURL(raw(`"u"`)))
	assert.Equal(t, "u", imageURL(raw(`{"url": "u"}`)))
	assert.Equal(t, "u", imageURL(raw(`["u", "v"]`)))
	assert.Equal(t, "", imageURL(raw(`[]`)))
}
