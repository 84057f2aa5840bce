package models

// LatLng represents a single geographic coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polyline is an ordered sequence of coordinates describing a walking path.
// Components copy it instead of aliasing it: scoring, simplification and
// highlight extraction all read the same route at different granularities.
type Polyline []LatLng

// Clone returns an independent copy of the polyline
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// BoundingBox represents a rectangular geographic area
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Contains reports whether the point falls inside the box
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Clamp moves the point to the nearest position inside the box
func (b BoundingBox) Clamp(lat, lng float64) (float64, float64) {
	if lat < b.MinLat {
		lat = b.MinLat
	}
	if lat > b.MaxLat {
		lat = b.MaxLat
	}
	if lng < b.MinLng {
		lng = b.MinLng
	}
	if lng > b.MaxLng {
		lng = b.MaxLng
	}
	return lat, lng
}
