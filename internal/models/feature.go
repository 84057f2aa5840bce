package models

// StreetFeature represents a single scored street segment from the
// Barcelona street-quality dataset. All four scores are normalized to
// 0-1; noise is inverted, so higher means quieter. Features are
// immutable once loaded.
type StreetFeature struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name,omitempty"`
	Paths    [][]LatLng `json:"paths"` // LineString or MultiLineString coordinate sequences
	Noise    float64    `json:"noise_score"`
	Green    float64    `json:"green_score"`
	Clean    float64    `json:"clean_score"`
	Cultural float64    `json:"cultural_score"`
}

// POIFeature represents a point of interest that can be surfaced as a
// route highlight
type POIFeature struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"` // park, museum, historic, viewpoint, cafe, restaurant, cultural
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}
