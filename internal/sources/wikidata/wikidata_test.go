package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/internal/transport"
	"github.com/helgo/places/pkg/enrich"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/taxonomy"
)

var (
	_ enrich.Lookup        = (*Client)(nil)
	_ enrich.ImageResolver = (*Client)(nil)
)

const entitiesBody = `{
  "entities": {
    "Q1": {"claims": {
      "P625": [{"mainsnak": {"datavalue": {"value": {"latitude": 47.3670, "longitude": 8.5450}}}}],
      "P856": [{"mainsnak": {"datavalue": {"value": "https://kronenhalle.ch"}}}],
      "P1329": [{"mainsnak": {"datavalue": {"value": "+41 44 262 99 00"}}}],
      "P6375": [{"mainsnak": {"datavalue": {"value": {"text": "Rämistrasse 4", "language": "de"}}}}],
      "P18": [{"mainsnak": {"datavalue": {"value": "Kronenhalle.jpg"}}}]
    }},
    "Q2": {"claims": {"P856": [{"mainsnak": {"datavalue": {"value": "https://other.example"}}}]}}
  }
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "wbsearchentities":
			assert.Equal(t, "5", q.Get("limit"))
			assert.Equal(t, "en", q.Get("language"))
			if q.Get("search") == "Nowhere Zurich" {
				fmt.Fprint(w, `{"search": []}`)
				return
			}
			assert.Equal(t, "Kronenhalle Zurich", q.Get("search"))
			fmt.Fprint(w, `{"search": [{"id": "Q1", "label": "Kronenhalle"}, {"id": "Q2"}, {"id": "Q3"}]}`)
		case "wbgetentities":
			assert.Equal(t, "Q1|Q2|Q3", q.Get("ids"))
			assert.Equal(t, "claims", q.Get("props"))
			fmt.Fprint(w, entitiesBody)
		default:
			http.Error(w, "bad action", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/commons", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("titles") == "File:Kronenhalle.jpg" {
			fmt.Fprint(w, `{"query": {"pages": {"123": {"imageinfo": [{"url": "https://upload.example/Kronenhalle.jpg"}]}}}}`)
			return
		}
		fmt.Fprint(w, `{"query": {"pages": {"-1": {"missing": ""}}}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	return New(
		WithEndpoints(srv.URL+"/w/api.php", srv.URL+"/commons"),
		WithHTTPClient(transport.New("wikidata", transport.WithInterval(0))),
	)
}

func TestCandidates(t *testing.T) {
	c := newClient(newServer(t))

	cands, err := c.Candidates(context.Background(), "Kronenhalle", "Zurich")
	require.NoError(t, err)
	require.Len(t, cands, 2)

	q1 := cands[0]
	assert.Equal(t, "Q1", q1.ID)
	assert.Equal(t, "Kronenhalle", q1.Label)
	require.NotNil(t, q1.Coord)
	assert.Equal(t, 8.545, q1.Coord.Lon)
	assert.Equal(t, "https://kronenhalle.ch", q1.Website)
	assert.Equal(t, "+41 44 262 99 00", q1.Phone)
	assert.Equal(t, "Rämistrasse 4", q1.Address)
	assert.Equal(t, "Kronenhalle.jpg", q1.ImageRef)

	assert.Equal(t, "Q2", cands[1].ID)
	assert.Nil(t, cands[1].Coord)
}

func TestCandidatesNoHits(t *testing.T) {
	cands, err := newClient(newServer(t)).Candidates(context.Background(), "Nowhere", "Zurich")
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestResolveImage(t *testing.T) {
	c := newClient(newServer(t))
	ctx := context.Background()

	u, err := c.ResolveImage(ctx, "Kronenhalle.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://upload.example/Kronenhalle.jpg", u)

	u, err = c.ResolveImage(ctx, "Missing.jpg")
	require.NoError(t, err)
	assert.Empty(t, u)

	u, err = c.ResolveImage(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestEnricherWithWikidata(t *testing.T) {
	c := newClient(newServer(t))
	ds := places.New()
	require.NoError(t, ds.Insert(&places.Place{
		ID: "osm-node-1-kronenhalle", Name: "Kronenhalle", Category: taxonomy.Restaurant,
		Lat: 47.3671, Lon: 8.5451, Tags: []string{}, Website: "http://old",
	}))

	e, err := enrich.NewEnricher(c, c, enrich.WithLocality("Zurich"))
	require.NoError(t, err)
	rep, err := e.Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Stats.Enriched)
	p, _ := ds.Get("osm-node-1-kronenhalle")
	assert.Equal(t, "http://old", p.Website)
	assert.Equal(t, "+41 44 262 99 00", p.Phone)
	assert.Equal(t, "Rämistrasse 4", p.Address)
	assert.Equal(t, "https://upload.example/Kronenhalle.jpg", p.PhotoURL)
}
