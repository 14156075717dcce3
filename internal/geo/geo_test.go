package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	sofia   = LatLng{Lat: 42.6977, Lng: 23.3219}
	plovdiv = LatLng{Lat: 42.1354, Lng: 24.7453}
	varna   = LatLng{Lat: 43.2141, Lng: 27.9147}
)

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     LatLng
		expected float64
		delta    float64
	}{
		{"Sofia to Plovdiv", sofia, plovdiv, 133.0, 3.0},
		{"Sofia to Varna", sofia, varna, 378.0, 5.0},
		{"Equator degree of longitude", LatLng{0, 0}, LatLng{0, 1}, 111.19, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, DistanceKm(tc.a, tc.b), tc.delta)
		})
	}
}

func TestDistanceKm_SamePoint(t *testing.T) {
	// Rounding in the cosine term must never produce NaN for identical
	// points; a route has to match its own coordinates.
	points := []LatLng{
		sofia,
		{Lat: 0, Lng: 0},
		{Lat: 89.9999, Lng: 179.9999},
		{Lat: -45.123456, Lng: -120.654321},
	}

	for _, p := range points {
		d := DistanceKm(p, p)
		assert.False(t, d != d, "distance is NaN for %+v", p)
		assert.InDelta(t, 0, d, 0.001)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	assert.InDelta(t, DistanceKm(sofia, plovdiv), DistanceKm(plovdiv, sofia), 1e-9)
}

func TestLatLngValid(t *testing.T) {
	assert.True(t, LatLng{Lat: 42.7, Lng: 23.3}.Valid())
	assert.True(t, LatLng{Lat: -90, Lng: 180}.Valid())
	assert.False(t, LatLng{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, LatLng{Lat: 0, Lng: -180.1}.Valid())

	nan := 0.0
	nan /= nan
	assert.False(t, LatLng{Lat: nan, Lng: 0}.Valid())
}

func TestBoundingBoxAround_ContainsNearbyPoints(t *testing.T) {
	box := BoundingBoxAround(sofia, 2.0)

	assert.True(t, box.Contains(sofia))
	// ~1 km north
	assert.True(t, box.Contains(LatLng{Lat: sofia.Lat + 0.009, Lng: sofia.Lng}))
	// ~10 km east is outside a 2 km box
	assert.False(t, box.Contains(LatLng{Lat: sofia.Lat, Lng: sofia.Lng + 0.13}))
}

func TestBoundingBoxAround_NeverExcludesPointsInRadius(t *testing.T) {
	centers := []LatLng{sofia, {Lat: 0, Lng: 0}, {Lat: 60, Lng: -150}}
	offsets := []LatLng{
		{Lat: 0.015, Lng: 0},
		{Lat: -0.015, Lng: 0},
		{Lat: 0, Lng: 0.02},
		{Lat: 0.01, Lng: -0.01},
	}

	for _, center := range centers {
		box := BoundingBoxAround(center, 2.0)
		for _, off := range offsets {
			p := LatLng{Lat: center.Lat + off.Lat, Lng: center.Lng + off.Lng}
			if DistanceKm(center, p) <= 2.0 {
				assert.True(t, box.Contains(p), "box around %+v excludes %+v", center, p)
			}
		}
	}
}

func TestBoundingBoxAround_NearPole(t *testing.T) {
	box := BoundingBoxAround(LatLng{Lat: 90, Lng: 0}, 2.0)

	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBoxAround_AntimeridianFallsBackToFullRange(t *testing.T) {
	box := BoundingBoxAround(LatLng{Lat: 42.7, Lng: 179.99}, 5.0)

	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
}

func TestBoundingBoxAround_ClampsLatitude(t *testing.T) {
	box := BoundingBoxAround(LatLng{Lat: 89.99, Lng: 0}, 50.0)

	assert.Equal(t, 90.0, box.MaxLat)
	assert.LessOrEqual(t, box.MinLat, 89.99)
}
