package merge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/pkg/geo"
	"github.com/helgo/places/pkg/merge"
	"github.com/helgo/places/pkg/normalize"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/taxonomy"
)

func newMerger(t *testing.T, opts ...merge.Option) *merge.Merger {
	t.Helper()
	m, err := merge.New(normalize.New(taxonomy.Default()), opts...)
	require.NoError(t, err)
	return m
}

func existingPlace() *places.Place {
	return &places.Place{
		ID:            "osm-node-1-kronenhalle",
		Name:          "Kronenhalle",
		Category:      taxonomy.Restaurant,
		Lat:           47.37,
		Lon:           8.545,
		Tags:          []string{"city"},
		Website:       "http://old",
		IndoorOutdoor: "indoor",
		DurationMins:  90,
		BestTimeOfDay: "night",
		AIDescription: "Art-filled brasserie.",
	}
}

func TestMergeInsert(t *testing.T) {
	m := newMerger(t)
	ds := places.New()

	p := existingPlace()
	p.Tags = []string{"city", "unknown", "city"}
	outcome, changes := m.Merge(ds, p, sources.OSM)

	assert.Equal(t, merge.Inserted, outcome)
	require.Len(t, changes, 1)
	assert.Equal(t, merge.ChangeTypeInsert, changes[0].Type)
	got, ok := ds.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"city"}, got.Tags)
}

func TestMergeKeepsExistingWebsite(t *testing.T) {
	m := newMerger(t)
	ds := places.New()
	require.NoError(t, ds.Insert(existingPlace()))

	incoming := existingPlace()
	incoming.Website = "https://new.example"
	incoming.Phone = "+41 44 262 99 00"
	incoming.Name = "Kronenhalle Renamed"
	incoming.Category = taxonomy.Bar
	incoming.Lat = 1
	incoming.DurationMins = 5
	incoming.AIDescription = "other"

	outcome, changes := m.Merge(ds, incoming, sources.Zurich)
	assert.Equal(t, merge.Merged, outcome)

	got, _ := ds.Get(incoming.ID)
	assert.Equal(t, "http://old", got.Website)
	assert.Equal(t, "+41 44 262 99 00", got.Phone)
	assert.Equal(t, "Kronenhalle", got.Name)
	assert.Equal(t, taxonomy.Restaurant, got.Category)
	assert.Equal(t, 47.37, got.Lat)
	assert.Equal(t, 90, got.DurationMins)
	assert.Equal(t, "Art-filled brasserie.", got.AIDescription)

	require.Len(t, changes, 1)
	assert.Equal(t, "phone", changes[0].Field)
	assert.Equal(t, sources.Zurich, changes[0].Source)
}

func TestMergeFillOnlyProperty(t *testing.T) {
	m := newMerger(t)
	fields := []struct {
		name string
		set  func(*places.Place, string)
		get  func(*places.Place) string
	}{
		{"address", func(p *places.Place, v string) { p.Address = v }, func(p *places.Place) string { return p.Address }},
		{"website", func(p *places.Place, v string) { p.Website = v }, func(p *places.Place) string { return p.Website }},
		{"phone", func(p *places.Place, v string) { p.Phone = v }, func(p *places.Place) string { return p.Phone }},
		{"photoUrl", func(p *places.Place, v string) { p.PhotoURL = v }, func(p *places.Place) string { return p.PhotoURL }},
		{"description", func(p *places.Place, v string) { p.Description = v }, func(p *places.Place) string { return p.Description }},
		{"area", func(p *places.Place, v string) { p.Area = v }, func(p *places.Place) string { return p.Area }},
	}
	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			ds := places.New()
			base := existingPlace()
			f.set(base, "first")
			require.NoError(t, ds.Insert(base))

			for i := range 3 {
				incoming := existingPlace()
				f.set(incoming, fmt.Sprintf("other-%d", i))
				m.Merge(ds, incoming, sources.OSM)
			}
			got, _ := ds.Get(base.ID)
			assert.Equal(t, "first", f.get(got))
		})
	}
}

func TestMergeTagsMonotonic(t *testing.T) {
	m := newMerger(t)
	ds := places.New()
	base := existingPlace()
	base.Tags = []string{"city", "legacy"}
	require.NoError(t, ds.Insert(&places.Place{ID: base.ID, Name: base.Name, Category: base.Category, Tags: base.Tags}))

	inputs := [][]string{nil, {}, {"view"}, {"nonsense", "city"}, {"photo", "view"}}
	before := []string{"city", "legacy"}
	for _, tags := range inputs {
		incoming := existingPlace()
		incoming.Tags = tags
		m.Merge(ds, incoming, sources.OSM)

		got, _ := ds.Get(base.ID)
		assert.Subset(t, got.Tags, before)
		assert.NotContains(t, got.Tags, "nonsense")
		before = append([]string{}, got.Tags...)
	}
	got, _ := ds.Get(base.ID)
	assert.Equal(t, []string{"city", "legacy", "view", "photo"}, got.Tags)
}

func TestMergeUnchanged(t *testing.T) {
	m := newMerger(t)
	ds := places.New()
	require.NoError(t, ds.Insert(existingPlace()))

	outcome, changes := m.Merge(ds, existingPlace(), sources.OSM)
	assert.Equal(t, merge.Unchanged, outcome)
	assert.Empty(t, changes)
	assert.Equal(t, "unchanged", outcome.String())
}

func TestOrder(t *testing.T) {
	m := newMerger(t)
	assert.Equal(t, []sources.ID{sources.Zurich, sources.OSM}, m.Order([]sources.ID{sources.OSM, sources.Zurich}))

	m = newMerger(t, merge.WithRanks(map[sources.ID]int{sources.OSM: 10}))
	assert.Equal(t, []sources.ID{sources.OSM, sources.Zurich}, m.Order([]sources.ID{sources.Zurich, sources.OSM}))
}

func TestOptionsValidation(t *testing.T) {
	_, err := merge.New(normalize.New(taxonomy.Default()), merge.WithLimitPerCategory(-1))
	assert.Error(t, err)

	_, err = merge.New(normalize.New(taxonomy.Default()), merge.WithRanks(nil))
	assert.Error(t, err)
}

func record(key, name string, codes ...string) sources.Record {
	return sources.Record{
		Origin:  sources.OSM,
		Key:     key,
		Name:    name,
		Point:   &geo.Coord{Lat: 47.37, Lon: 8.54},
		Signals: sources.Signals{Codes: codes},
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("rejections leave the dataset unchanged", func(t *testing.T) {
		m := newMerger(t)
		ds := places.New()

		bad := record("node-1", "", "amenity=cafe")
		bad.Point = nil
		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{bad, record("node-2", "")})
		require.NoError(t, err)

		assert.Equal(t, 0, ds.Len())
		assert.Equal(t, 2, res.Stats.Processed)
		assert.Equal(t, 2, res.Stats.Rejected)
		assert.Equal(t, 1, res.Stats.RejectedBy[normalize.MissingCoordinates])
		assert.Equal(t, 1, res.Stats.RejectedBy[normalize.MissingName])
	})

	t.Run("same record twice yields one place", func(t *testing.T) {
		m := newMerger(t)
		ds := places.New()
		rec := record("node-1", "Kafi Schnaps", "amenity=cafe")

		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{rec, rec})
		require.NoError(t, err)

		assert.Equal(t, 1, ds.Len())
		assert.Equal(t, 1, res.Stats.Inserted)
		assert.Equal(t, 1, res.Stats.Unchanged)
		assert.Equal(t, 1, res.Stats.Accepted)
	})

	t.Run("per-category cap", func(t *testing.T) {
		m := newMerger(t, merge.WithLimitPerCategory(2))
		ds := places.New()
		recs := []sources.Record{
			record("node-1", "A", "amenity=cafe"),
			record("node-2", "B", "amenity=cafe"),
			record("node-3", "C", "amenity=cafe"),
			record("node-4", "D", "amenity=bar"),
			record("node-1", "A", "amenity=cafe"),
		}
		res, err := m.Build(ctx, ds, sources.OSM, recs)
		require.NoError(t, err)

		assert.Equal(t, 3, ds.Len())
		assert.Equal(t, 1, res.Stats.SkippedCap)
		assert.Equal(t, 2, res.Stats.Categories[taxonomy.Cafe])
		assert.Equal(t, 1, res.Stats.Categories[taxonomy.Bar])
		assert.False(t, ds.Has("osm-node-3-c"))
		assert.Equal(t, 1, res.Stats.Unchanged, "repeat of an accepted id merges past the cap")
	})

	t.Run("ids already in the dataset bypass the cap", func(t *testing.T) {
		m := newMerger(t, merge.WithLimitPerCategory(1))
		ds := places.New()
		old := record("node-2", "Old", "amenity=cafe")
		_, err := m.Build(ctx, ds, sources.OSM, []sources.Record{old})
		require.NoError(t, err)
		require.True(t, ds.Has("osm-node-2-old"))

		update := record("node-2", "Old", "amenity=cafe")
		update.Websites = []string{"https://old.example"}
		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{
			record("node-1", "New", "amenity=cafe"),
			update,
			record("node-3", "Newer", "amenity=cafe"),
		})
		require.NoError(t, err)

		assert.Equal(t, 1, res.Stats.SkippedCap)
		assert.Equal(t, 1, res.Stats.Inserted)
		assert.Equal(t, 1, res.Stats.Merged)
		assert.True(t, ds.Has("osm-node-1-new"))
		assert.False(t, ds.Has("osm-node-3-newer"))
		p, _ := ds.Get("osm-node-2-old")
		assert.Equal(t, "https://old.example", p.Website)
	})

	t.Run("rejected records do not count toward the cap", func(t *testing.T) {
		m := newMerger(t, merge.WithLimitPerCategory(1))
		ds := places.New()
		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{
			record("node-1", "", "amenity=cafe"),
			record("node-2", "B", "amenity=cafe"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len())
		assert.Equal(t, 0, res.Stats.SkippedCap)
	})

	t.Run("skip unclassified", func(t *testing.T) {
		m := newMerger(t, merge.WithSkipUnclassified(true))
		ds := places.New()
		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{record("node-1", "Bench", "amenity=bench")})
		require.NoError(t, err)
		assert.Equal(t, 0, ds.Len())
		assert.Equal(t, 1, res.Stats.RejectedBy[normalize.Unclassified])
	})

	t.Run("unclassified falls back", func(t *testing.T) {
		m := newMerger(t)
		ds := places.New()
		_, err := m.Build(ctx, ds, sources.OSM, []sources.Record{record("node-1", "Bench", "amenity=bench")})
		require.NoError(t, err)
		p, ok := ds.Get("osm-node-1-bench")
		require.True(t, ok)
		assert.Equal(t, taxonomy.Activity, p.Category)
	})

	t.Run("empty stream", func(t *testing.T) {
		m := newMerger(t)
		ds := places.New()
		require.NoError(t, ds.Insert(existingPlace()))
		res, err := m.Build(ctx, ds, sources.OSM, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len())
		assert.Equal(t, 0, res.Stats.Processed)
	})

	t.Run("canceled context", func(t *testing.T) {
		m := newMerger(t)
		ds := places.New()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := m.Build(cctx, ds, sources.OSM, []sources.Record{record("node-1", "A", "amenity=cafe")})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, ds.Len())
	})

	t.Run("change tracking off", func(t *testing.T) {
		m := newMerger(t, merge.WithChangeTracking(false))
		ds := places.New()
		res, err := m.Build(ctx, ds, sources.OSM, []sources.Record{record("node-1", "A", "amenity=cafe")})
		require.NoError(t, err)
		assert.Empty(t, res.Changes)
		assert.Equal(t, 1, res.Stats.Inserted)
	})
}

func TestBuildIsRestartStable(t *testing.T) {
	ctx := context.Background()
	recs := []sources.Record{
		record("node-1", "A", "amenity=cafe"),
		record("node-2", "B", "tourism=museum"),
	}
	recs[1].Websites = []string{"https://b.example"}

	m := newMerger(t)
	first := places.New()
	_, err := m.Build(ctx, first, sources.OSM, recs)
	require.NoError(t, err)

	second := places.New()
	_, err = m.Build(ctx, second, sources.OSM, recs)
	require.NoError(t, err)
	_, err = m.Build(ctx, second, sources.OSM, recs)
	require.NoError(t, err)

	assert.Equal(t, first.IDs(), second.IDs())
	for _, id := range first.IDs() {
		a, _ := first.Get(id)
		b, _ := second.Get(id)
		assert.Equal(t, a, b)
	}
}
