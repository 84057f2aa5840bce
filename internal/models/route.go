package models

// Breakdown holds the per-criterion score averages of a route,
// rounded to 2 decimals for presentation
type Breakdown struct {
	Noise    float64 `json:"noise"`
	Green    float64 `json:"green"`
	Clean    float64 `json:"clean"`
	Cultural float64 `json:"cultural"`
}

// ScoredRoute is a polyline annotated with its composite quality score.
// Never mutated after creation.
type ScoredRoute struct {
	Polyline        Polyline  `json:"polyline"`
	DurationSeconds float64   `json:"duration_seconds"`
	DistanceMeters  float64   `json:"distance_meters"`
	Score           float64   `json:"score"`
	Breakdown       Breakdown `json:"breakdown"`
	Tags            []string  `json:"tags"` // at most 3 short descriptive strings
}

// Highlight is a single point of interest surfaced alongside a route
type Highlight struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Category    string  `json:"category"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
}

// NightState is the cross-cutting night-safety state computed once per
// request and threaded into scoring and planning
type NightState struct {
	IsNight         bool `json:"is_night"`
	ForceAvoidZones bool `json:"force_avoid_zones"` // night OR the caller's vulnerable flag
}
