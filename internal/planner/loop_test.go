package planner

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

var day = models.NightState{}

// stubProvider lets each test script the provider's behavior
type stubProvider struct {
	directions    func(origin, destination models.LatLng, alternatives int, opts RouteOptions) ([]Route, error)
	waypointRoute func(origin models.LatLng, waypoints []models.LatLng, opts RouteOptions) (*Route, error)
	isochrone     func(origin models.LatLng, seconds int) ([]models.LatLng, error)
}

func (p *stubProvider) Directions(_ context.Context, origin, destination models.LatLng, alternatives int, opts RouteOptions) ([]Route, error) {
	if p.directions == nil {
		return nil, errors.New("directions unavailable")
	}
	return p.directions(origin, destination, alternatives, opts)
}

func (p *stubProvider) WaypointRoute(_ context.Context, origin models.LatLng, waypoints []models.LatLng, opts RouteOptions) (*Route, error) {
	if p.waypointRoute == nil {
		return nil, errors.New("waypoint routing unavailable")
	}
	return p.waypointRoute(origin, waypoints, opts)
}

func (p *stubProvider) Isochrone(_ context.Context, origin models.LatLng, seconds int) ([]models.LatLng, error) {
	if p.isochrone == nil {
		return nil, errors.New("isochrone unavailable")
	}
	return p.isochrone(origin, seconds)
}

// straightRoute interpolates a polyline through the waypoints
func straightRoute(origin models.LatLng, waypoints []models.LatLng) *Route {
	points := models.Polyline{origin}
	prev := origin
	for _, wp := range waypoints {
		for i := 1; i <= 10; i++ {
			f := float64(i) / 10
			points = append(points, models.LatLng{
				Lat: prev.Lat + (wp.Lat-prev.Lat)*f,
				Lng: prev.Lng + (wp.Lng-prev.Lng)*f,
			})
		}
		prev = wp
	}
	distance := spatial.PathLength(points)
	return &Route{
		Polyline:        points,
		DurationSeconds: distance / walkSpeedMetersPerMinute * 60,
		DistanceMeters:  distance,
	}
}

func newTestSynthesizer(provider Provider) *LoopSynthesizer {
	ix := index.Build(nil)
	rng := rand.New(rand.NewSource(7))
	return NewLoopSynthesizer(provider, scoring.NewScorer(ix), NewWaypointSelector(ix, rng), rng)
}

func TestSynthesizeBearingSearch(t *testing.T) {
	provider := &stubProvider{
		waypointRoute: func(origin models.LatLng, waypoints []models.LatLng, _ RouteOptions) (*Route, error) {
			return straightRoute(origin, waypoints), nil
		},
	}
	l := newTestSynthesizer(provider)

	plan := l.Synthesize(context.Background(), testOrigin, 30, models.IntentScenic, day)
	require.NotNil(t, plan)
	assert.Equal(t, "bearing-search", plan.Strategy)
	assert.False(t, plan.Degraded)

	// The loop starts and ends at the origin
	poly := plan.Route.Polyline
	require.GreaterOrEqual(t, len(poly), 3)
	assert.Equal(t, testOrigin, poly[0])
	assert.Equal(t, testOrigin, poly[len(poly)-1])
}

func TestSynthesizeRejectsRetracedLoops(t *testing.T) {
	// The return leg retraces the outbound leg exactly, so every
	// bearing attempt fails the overlap check and the fallback chain
	// takes over
	provider := &stubProvider{
		waypointRoute: func(origin models.LatLng, waypoints []models.LatLng, _ RouteOptions) (*Route, error) {
			if len(waypoints) == 1 {
				return straightRoute(origin, waypoints), nil
			}
			// Return legs and fallback out-and-backs route straight
			// there and straight back, ignoring the detour point
			return straightRoute(origin, waypoints[len(waypoints)-1:]), nil
		},
		isochrone: func(origin models.LatLng, _ int) ([]models.LatLng, error) {
			return nil, errors.New("isochrone unavailable")
		},
	}
	l := newTestSynthesizer(provider)

	plan := l.Synthesize(context.Background(), testOrigin, 30, models.IntentScenic, day)
	require.NotNil(t, plan)
	assert.True(t, plan.Degraded)
	assert.Equal(t, "short-leg", plan.Strategy)
}

func TestSynthesizeIsochroneFallback(t *testing.T) {
	// Bearing attempts fail outright; the isochrone strategy succeeds
	provider := &stubProvider{
		waypointRoute: func(origin models.LatLng, waypoints []models.LatLng, _ RouteOptions) (*Route, error) {
			if len(waypoints) == 1 {
				return nil, errors.New("no route")
			}
			return straightRoute(origin, waypoints), nil
		},
		isochrone: func(origin models.LatLng, _ int) ([]models.LatLng, error) {
			return []models.LatLng{
				{Lat: origin.Lat + 0.005, Lng: origin.Lng},
				{Lat: origin.Lat, Lng: origin.Lng + 0.005},
				{Lat: origin.Lat - 0.005, Lng: origin.Lng},
			}, nil
		},
	}
	l := newTestSynthesizer(provider)

	plan := l.Synthesize(context.Background(), testOrigin, 30, models.IntentScenic, day)
	require.NotNil(t, plan)
	assert.True(t, plan.Degraded)
	assert.Equal(t, "isochrone-waypoint", plan.Strategy)
}

func TestSynthesizeNeverFails(t *testing.T) {
	// Everything the provider offers is broken: the terminal strategy
	// still produces a loop
	l := newTestSynthesizer(&stubProvider{})

	plan := l.Synthesize(context.Background(), testOrigin, 30, models.IntentScenic, day)
	require.NotNil(t, plan)
	assert.True(t, plan.Degraded)
	assert.Equal(t, "minimal", plan.Strategy)

	poly := plan.Route.Polyline
	require.Len(t, poly, 3)
	assert.Equal(t, testOrigin, poly[0])
	assert.Equal(t, testOrigin, poly[2])
	assert.Greater(t, plan.Route.DurationSeconds, 0.0)
}

func TestOverlapFraction(t *testing.T) {
	outbound := straightRoute(testOrigin, []models.LatLng{{Lat: 41.4000, Lng: 2.1700}}).Polyline

	// A retraced return leg overlaps completely
	assert.InDelta(t, 1.0, OverlapFraction(outbound, outbound), 1e-9)

	// A parallel leg 500m east never comes within 30m
	shifted := make(models.Polyline, len(outbound))
	for i, p := range outbound {
		shifted[i] = spatial.Offset(p, 90, 500)
	}
	assert.Zero(t, OverlapFraction(shifted, outbound))
}

func TestMinimalLoopPaceArithmetic(t *testing.T) {
	l := newTestSynthesizer(&stubProvider{})
	route := l.minimalLoop(testOrigin)

	require.Len(t, route.Polyline, 3)
	assert.InDelta(t, 300, route.DistanceMeters, 2)
	assert.InDelta(t, route.DistanceMeters/walkSpeedMetersPerMinute*60, route.DurationSeconds, 1e-9)
}
