package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helgo/places/pkg/classify"
	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/taxonomy"
)

func TestClassify(t *testing.T) {
	c := classify.New(taxonomy.Default())

	tests := []struct {
		name string
		sig  sources.Signals
		want taxonomy.Category
	}{
		{"osm restaurant", sources.Signals{Codes: []string{"amenity=restaurant"}}, taxonomy.Restaurant},
		{"osm pub", sources.Signals{Codes: []string{"amenity=pub"}}, taxonomy.Bar},
		{"osm hiking route", sources.Signals{Codes: []string{"route=hiking"}}, taxonomy.Walk},
		{"osm museum before viewpoint", sources.Signals{Codes: []string{"tourism=viewpoint", "tourism=museum"}}, taxonomy.Museum},
		{"schema type", sources.Signals{Codes: []string{"CafeOrCoffeeShop"}}, taxonomy.Cafe},
		{"label beats code", sources.Signals{Labels: []string{"Spa & Wellness"}, Codes: []string{"restaurant"}}, taxonomy.Wellness},
		{"accommodation before restaurant", sources.Signals{Labels: []string{"Hotel Restaurant"}}, taxonomy.Accommodation},
		{"event before sightseeing", sources.Signals{Labels: []string{"Historic Festival"}}, taxonomy.Event},
		{"rule order across labels", sources.Signals{Labels: []string{"Parks", "Restaurants"}}, taxonomy.Restaurant},
		{"lowercase substring", sources.Signals{Labels: []string{"PANORAMA Terrace"}}, taxonomy.Viewpoint},
		{"hotel type code", sources.Signals{Codes: []string{"LodgingBusiness"}}, taxonomy.Accommodation},
		{"unknown", sources.Signals{Labels: []string{"Miscellaneous"}, Codes: []string{"thing"}}, taxonomy.Activity},
		{"empty", sources.Signals{}, taxonomy.Activity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.sig))
		})
	}
}

func TestMatch(t *testing.T) {
	c := classify.New(taxonomy.Default())

	cat, ok := c.Match(sources.Signals{Codes: []string{"amenity=marketplace"}})
	assert.True(t, ok)
	assert.Equal(t, taxonomy.Market, cat)

	_, ok = c.Match(sources.Signals{Codes: []string{"amenity=bench"}})
	assert.False(t, ok)
}

func TestClassifyDeterministic(t *testing.T) {
	c := classify.New(taxonomy.Default())
	sig := sources.Signals{Labels: []string{"Bars & Nightlife", "Old Town"}, Codes: []string{"BarOrPub"}}

	first := c.Classify(sig)
	for range 10 {
		assert.Equal(t, first, c.Classify(sig))
	}
}

func TestClassifyWithSubstitutedTables(t *testing.T) {
	tables, err := taxonomy.Parse([]byte(`
fallback: park
categories: [park, cafe]
keywordRules:
  - category: cafe
    keywords: [Espresso]
defaults:
  "*":
    park: {indoorOutdoor: outdoor, durationMins: 60, bestTimeOfDay: afternoon}
    cafe: {indoorOutdoor: indoor, durationMins: 30, bestTimeOfDay: morning}
`), "test.yaml")
	assert.NoError(t, err)

	c := classify.New(tables)
	assert.Equal(t, taxonomy.Cafe, c.Classify(sources.Signals{Labels: []string{"espresso bars"}}))
	assert.Equal(t, taxonomy.Park, c.Classify(sources.Signals{Labels: []string{"restaurant"}}))
}
