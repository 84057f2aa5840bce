package planner

import (
	"github.com/reroute/reroute-backend-go/internal/models"
)

// CentralBounds covers central Barcelona: Ciutat Vella, Eixample,
// Gracia, Sants-Montjuic, Sant Marti and Sarria. The street-quality
// dataset is filtered to this box, so waypoints are clamped into it
// and destinations outside it are rejected.
var CentralBounds = models.BoundingBox{
	MinLat: 41.37,
	MinLng: 2.13,
	MaxLat: 41.42,
	MaxLng: 2.21,
}

// seaBox approximates the Mediterranean southeast of the coastline.
// Candidate waypoints inside it are discarded as "in the water".
var seaBox = models.BoundingBox{
	MinLat: 41.30,
	MinLng: 2.15,
	MaxLat: 41.375,
	MaxLng: 2.30,
}

// IsOnLand reports whether the point is outside the water exclusion box
func IsOnLand(p models.LatLng) bool {
	return !seaBox.Contains(p.Lat, p.Lng)
}

// coerceOntoLand moves a water point just north of the exclusion box
func coerceOntoLand(p models.LatLng) models.LatLng {
	if IsOnLand(p) {
		return p
	}
	p.Lat = seaBox.MaxLat + 0.002
	return p
}

// NightAvoidPolygon is the higher-risk area detoured around after
// dark, passed to the routing provider as an exclusion polygon
var NightAvoidPolygon = []models.LatLng{
	{Lat: 41.3755, Lng: 2.1645},
	{Lat: 41.3835, Lng: 2.1665},
	{Lat: 41.3825, Lng: 2.1745},
	{Lat: 41.3745, Lng: 2.1725},
}

// SafeCorridorWaypoints are well-lit waypoints along La Rambla and
// Placa de Catalunya that bypass the avoid area. Used as a routing
// fallback when the provider rejects exclusion polygons.
var SafeCorridorWaypoints = []models.LatLng{
	{Lat: 41.3770, Lng: 2.1790},
	{Lat: 41.3820, Lng: 2.1730},
	{Lat: 41.3870, Lng: 2.1700},
}
