package planner

import (
	"context"
	"errors"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// ErrAvoidAreaUnsupported is returned by a provider that rejects the
// exclusion-polygon option. The caller retries without it, routing
// through the safe corridor waypoints instead.
var ErrAvoidAreaUnsupported = errors.New("routing provider rejected the avoid area")

// Route is one raw routing-provider result
type Route struct {
	Polyline        models.Polyline
	DurationSeconds float64
	DistanceMeters  float64
}

// RouteOptions tune a single provider call
type RouteOptions struct {
	// QuietBias nudges the provider's internal quiet/green weighting
	// upward (0 = provider default, 1 = maximum)
	QuietBias float64
	// AvoidPolygon asks the provider to route around the area. The
	// provider may reject it with ErrAvoidAreaUnsupported.
	AvoidPolygon []models.LatLng
}

// Provider is the external routing engine the core delegates
// shortest-path computation to
type Provider interface {
	// Directions returns up to 1+alternatives routes from origin to destination
	Directions(ctx context.Context, origin, destination models.LatLng, alternatives int, opts RouteOptions) ([]Route, error)
	// WaypointRoute returns one route from origin through the waypoints in order
	WaypointRoute(ctx context.Context, origin models.LatLng, waypoints []models.LatLng, opts RouteOptions) (*Route, error)
	// Isochrone returns the boundary ring reachable within the time budget
	Isochrone(ctx context.Context, origin models.LatLng, seconds int) ([]models.LatLng, error)
}

// NightOptions builds the provider options for the request's night
// state: quiet bias after dark, plus the avoid polygon when zones are
// being avoided.
func NightOptions(night models.NightState) RouteOptions {
	var opts RouteOptions
	if night.IsNight {
		opts.QuietBias = 0.6
	}
	if night.ForceAvoidZones {
		opts.AvoidPolygon = NightAvoidPolygon
	}
	return opts
}
