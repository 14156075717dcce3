package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// LatLng is a WGS84 point in decimal degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is finite and within coordinate bounds
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the great-circle distance between two points using
// the spherical law of cosines. The cosine argument is clamped to [-1, 1]:
// for identical points floating-point rounding can push it slightly above
// 1, which would make acos return NaN and a route fail to match its own
// coordinates.
func DistanceKm(a, b LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLng := radians(b.Lng) - radians(a.Lng)

	cosine := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng) + math.Sin(lat1)*math.Sin(lat2)
	cosine = clamp(cosine, -1, 1)
	return EarthRadiusKm * math.Acos(cosine)
}

// BoundingBox is a latitude/longitude rectangle used as an index-friendly
// prefilter before the exact distance predicate
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBoxAround returns a box guaranteed to contain every point within
// radiusKm of the center. Near the poles the longitude span degenerates,
// so it widens to the full range there.
func BoundingBoxAround(center LatLng, radiusKm float64) BoundingBox {
	latDelta := degrees(radiusKm / EarthRadiusKm)

	box := BoundingBox{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
	}

	cosLat := math.Cos(radians(center.Lat))
	if cosLat <= 1e-10 {
		box.MinLng, box.MaxLng = -180, 180
		return box
	}
	lngDelta := degrees(radiusKm / (EarthRadiusKm * cosLat))
	if lngDelta >= 180 {
		box.MinLng, box.MaxLng = -180, 180
		return box
	}
	box.MinLng = center.Lng - lngDelta
	box.MaxLng = center.Lng + lngDelta
	// A box crossing the antimeridian cannot be expressed as a single
	// longitude range; fall back to the full range so the exact distance
	// predicate stays authoritative.
	if box.MinLng < -180 || box.MaxLng > 180 {
		box.MinLng, box.MaxLng = -180, 180
	}
	return box
}

// Contains reports whether the point lies inside the box
func (b BoundingBox) Contains(p LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
