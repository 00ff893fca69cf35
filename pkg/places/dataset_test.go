package places_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/taxonomy"
)

const sampleDataset = `{
  "generatedAt": "2025-01-01",
  "places": [
    {
      "id": "osm-node-1-kronenhalle",
      "name": "Kronenhalle",
      "category": "restaurant",
      "lat": 47.37,
      "lon": 8.545,
      "tags": [],
      "address": null,
      "mapsUrl": "https://maps.google.com/?q=47.37,8.545",
      "indoorOutdoor": "indoor",
      "durationMins": 90,
      "bestTimeOfDay": "night",
      "custom": {"keep": true}
    },
    {
      "id": "zurich-9-lindenhof",
      "name": "Lindenhof",
      "category": "viewpoint",
      "lat": 47.373,
      "lon": 8.541,
      "tags": ["view", "photo"]
    }
  ]
}`

func TestDecode(t *testing.T) {
	ds, err := places.Decode(strings.NewReader(sampleDataset), "sample.json")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"osm-node-1-kronenhalle", "zurich-9-lindenhof"}, ds.IDs())

	p, ok := ds.Get("zurich-9-lindenhof")
	require.True(t, ok)
	assert.Equal(t, taxonomy.Viewpoint, p.Category)

	counts := ds.CountByCategory()
	assert.Equal(t, 1, counts[taxonomy.Restaurant])
	assert.Equal(t, 1, counts[taxonomy.Viewpoint])
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":       `{"places": [`,
		"array document": `[]`,
		"missing places": `{"items": []}`,
		"null places":    `{"places": null}`,
		"places object":  `{"places": {}}`,
		"missing id":     `{"places": [{"name": "x"}]}`,
		"duplicate id":   `{"places": [{"id": "a", "name": "A"}, {"id": "a", "name": "B"}]}`,
		"wrong type":     `{"places": [{"id": "a", "lat": "north"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := places.Decode(strings.NewReader(doc), "bad.json")
			require.Error(t, err)
			var pe *errors.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

// canonicalDataset is laid out exactly as Encode writes it.
const canonicalDataset = `{
  "places": [
    {
      "id": "osm-node-1-kronenhalle",
      "name": "Kronenhalle",
      "category": "restaurant",
      "lat": 47.37,
      "lon": 8.545,
      "tags": [],
      "address": null,
      "website": "",
      "mapsUrl": "https://maps.google.com/?q=47.37,8.545",
      "indoorOutdoor": "indoor",
      "durationMins": 0,
      "bestTimeOfDay": "night",
      "custom": {
        "keep": true
      }
    },
    {
      "id": "zurich-9-lindenhof",
      "name": "Lindenhof",
      "category": "viewpoint",
      "lat": 47.373,
      "lon": 8.541,
      "tags": [
        "view",
        "photo"
      ]
    }
  ],
  "generatedAt": "2025-01-01"
}
`

func TestRoundTripIsNoOp(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		ds, err := places.Decode(strings.NewReader(canonicalDataset), "canonical.json")
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, ds.Encode(&out))
		assert.Equal(t, canonicalDataset, out.String())
	})

	t.Run("fields", func(t *testing.T) {
		ds, err := places.Decode(strings.NewReader(sampleDataset), "sample.json")
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, ds.Encode(&out))
		assert.JSONEq(t, sampleDataset, out.String())
	})

	t.Run("filled field replaces kept empty value", func(t *testing.T) {
		ds, err := places.Decode(strings.NewReader(canonicalDataset), "canonical.json")
		require.NoError(t, err)
		p, _ := ds.Get("osm-node-1-kronenhalle")
		p.Address = "Rämistrasse 4, 8001 Zürich"
		p.DurationMins = 90

		var out bytes.Buffer
		require.NoError(t, ds.Encode(&out))
		assert.Contains(t, out.String(), `"address": "Rämistrasse 4, 8001 Zürich"`)
		assert.Contains(t, out.String(), `"durationMins": 90`)
		assert.Contains(t, out.String(), `"website": ""`)
		assert.NotContains(t, out.String(), `"address": null`)
	})
}

func TestInsert(t *testing.T) {
	ds := places.New()
	require.NoError(t, ds.Insert(&places.Place{ID: "a"}))

	err := ds.Insert(&places.Place{ID: "a"})
	assert.True(t, errors.IsValidationError(err))
	assert.Error(t, ds.Insert(&places.Place{}))
	assert.Equal(t, 1, ds.Len())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "places.json")

	ds := places.New()
	require.NoError(t, ds.Insert(&places.Place{ID: "a", Name: "A", Category: taxonomy.Park, Lat: 1, Lon: 2, Tags: []string{"green"}}))
	require.NoError(t, ds.Save(path))

	loaded, err := places.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ds.IDs(), loaded.IDs())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestLoadOrNew(t *testing.T) {
	dir := t.TempDir()

	ds, err := places.LoadOrNew(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())

	_, err = places.Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.IsNotFound(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0o644))
	_, err = places.LoadOrNew(bad)
	assert.Error(t, err)
}
