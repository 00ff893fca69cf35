package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helgo/places/pkg/identity"
	"github.com/helgo/places/pkg/sources"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Café & Bar!!", "cafe-bar"},
		{"Kronenhalle", "kronenhalle"},
		{"  Zürich -- Lindenhof  ", "zurich-lindenhof"},
		{"Restaurant Zum 2. Stock", "restaurant-zum-2-stock"},
		{"!!!", "place"},
		{"", "place"},
		{"北京", "place"},
		{"Crème brûlée", "creme-brulee"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := identity.Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestAssign(t *testing.T) {
	assert.Equal(t, "osm-node-123-kronenhalle", identity.Assign(sources.OSM, "node-123", "Kronenhalle"))
	assert.Equal(t, "zurich-8821-cafe-bar", identity.Assign(sources.Zurich, "8821", "Café & Bar!!"))
	assert.Equal(t, "zurich-a-b-place", identity.Assign(sources.Zurich, " a  b ", ""))
	assert.Equal(t, "osm-place-x", identity.Assign(sources.OSM, "", "x"))
}

func TestAssignDeterministic(t *testing.T) {
	first := identity.Assign(sources.OSM, "way-42", "Seebad Utoquai")
	for range 5 {
		assert.Equal(t, first, identity.Assign(sources.OSM, "way-42", "Seebad Utoquai"))
	}
}
