// Package geo holds coordinate helpers shared by the normalizer and enrichment.
package geo

import (
	"math"
	"strconv"

	"github.com/helgo/places/pkg/constants"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Coord is a WGS84 latitude/longitude pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is inside the WGS84 range and not NaN.
func (c Coord) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Coord) float64 {
	p1 := radians(a.Lat)
	p2 := radians(b.Lat)
	dp := radians(b.Lat - a.Lat)
	dl := radians(b.Lon - a.Lon)

	h := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	// Rounding can push h just past 1 near antipodal points.
	h = math.Min(1, h)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// MapsURL builds the deterministic map link for a coordinate.
func MapsURL(c Coord) string {
	return constants.MapsURLPrefix + formatFloat(c.Lat) + "," + formatFloat(c.Lon)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
