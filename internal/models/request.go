package models

// PlanRouteRequest is the request body for POST /api/v1/routes/plan.
// The intent resolver (out of process) has already turned free text
// into these structured fields.
type PlanRouteRequest struct {
	Origin          LatLng       `json:"origin" binding:"required"`
	Destination     *LatLng      `json:"destination"` // nil means wander mode
	Intent          string       `json:"intent"`
	DurationMinutes int          `json:"duration_minutes"`
	Area            *BoundingBox `json:"area"`        // optional area constraint for wander mode
	Vulnerable      bool         `json:"vulnerable"`  // night-sensitive caller, forces avoid zones
	ForceNight      bool         `json:"force_night"` // the caller knows the walk extends past dark

	// DestinationCategory, when the destination is a known venue,
	// suppresses redundant highlights of the same category
	DestinationCategory string `json:"destination_category"`
	// POIFocused lifts the highlight cap for spot-hunting requests
	POIFocused bool `json:"poi_focused"`
}

// PlanLoopRequest is the request body for POST /api/v1/routes/loop
type PlanLoopRequest struct {
	Origin          LatLng `json:"origin" binding:"required"`
	Intent          string `json:"intent"`
	DurationMinutes int    `json:"duration_minutes"`
	Vulnerable      bool   `json:"vulnerable"`
	ForceNight      bool   `json:"force_night"`
}

// PlanResponse is the common response shape of both planning endpoints
type PlanResponse struct {
	PlanID          string      `json:"plan_id"`
	Intent          Intent      `json:"intent"`
	Route           ScoredRoute `json:"route"`
	Highlights      []Highlight `json:"highlights"`
	DisplayPolyline Polyline    `json:"display_polyline"` // simplified for transmission
	Night           NightState  `json:"night"`
	Degraded        bool        `json:"degraded"`        // limits were relaxed to return a result
	Notes           []string    `json:"notes,omitempty"` // human-readable degradation notes
}
