package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/planner"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

type stubProvider struct {
	directions    func(origin, destination models.LatLng, alternatives int, opts planner.RouteOptions) ([]planner.Route, error)
	waypointRoute func(origin models.LatLng, waypoints []models.LatLng, opts planner.RouteOptions) (*planner.Route, error)
	isochrone     func(origin models.LatLng, seconds int) ([]models.LatLng, error)
}

func (p *stubProvider) Directions(_ context.Context, origin, destination models.LatLng, alternatives int, opts planner.RouteOptions) ([]planner.Route, error) {
	if p.directions == nil {
		return nil, errors.New("directions unavailable")
	}
	return p.directions(origin, destination, alternatives, opts)
}

func (p *stubProvider) WaypointRoute(_ context.Context, origin models.LatLng, waypoints []models.LatLng, opts planner.RouteOptions) (*planner.Route, error) {
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

var (
	origin      = models.LatLng{Lat: 41.3900, Lng: 2.1700}
	destination = models.LatLng{Lat: 41.3980, Lng: 2.1750}

	noon      = func() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }
	lateNight = func() time.Time { return time.Date(2025, 6, 15, 22, 0, 0, 0, time.UTC) }
)

// fixtureFeature blankets the cells around (lat, lng) with one street
func fixtureFeature(id int64, lat, lng float64, noise, green, clean, cultural float64) models.StreetFeature {
	var path []models.LatLng
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			path = append(path, models.LatLng{Lat: lat + float64(dy)*0.001, Lng: lng + float64(dx)*0.001})
		}
	}
	return models.StreetFeature{
		ID: id, Paths: [][]models.LatLng{path},
		Noise: noise, Green: green, Clean: clean, Cultural: cultural,
	}
}

func straightPolyline(from, to models.LatLng, n int) models.Polyline {
	out := make(models.Polyline, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		out[i] = models.LatLng{
			Lat: from.Lat + (to.Lat-from.Lat)*f,
			Lng: from.Lng + (to.Lng-from.Lng)*f,
		}
	}
	return out
}

func routeAlong(polyline models.Polyline) planner.Route {
	distance := spatial.PathLength(polyline)
	return planner.Route{
		Polyline:        polyline,
		DurationSeconds: distance / 80 * 60,
		DistanceMeters:  distance,
	}
}

func newTestService(provider planner.Provider, now func() time.Time, features []models.StreetFeature, pois []models.POIFeature) *RouteService {
	ix := index.Build(features)
	rng := rand.New(rand.NewSource(3))
	scorer := scoring.NewScorer(ix)
	selector := planner.NewWaypointSelector(ix, rng)
	loops := planner.NewLoopSynthesizer(provider, scorer, selector, rng)
	highlights := planner.NewHighlightExtractor(ix, index.BuildPOIIndex(pois, planner.HighlightRadiusMeters))
	return NewRouteService(provider, scorer, selector, loops, highlights, 10*time.Second, now)
}

func TestPlanRouteOutOfBounds(t *testing.T) {
	s := newTestService(&stubProvider{}, noon, nil, nil)

	outside := models.LatLng{Lat: 41.50, Lng: 2.30}
	_, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &outside,
	})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPlanRoutePicksBestAlternative(t *testing.T) {
	// Alternative 2 runs through the green corridor; nature must pick it
	greenCorridor := models.LatLng{Lat: 41.4100, Lng: 2.1500}
	features := []models.StreetFeature{
		fixtureFeature(1, (origin.Lat+destination.Lat)/2, (origin.Lng+destination.Lng)/2, 0.5, 0.1, 0.5, 0.5),
		fixtureFeature(2, greenCorridor.Lat, greenCorridor.Lng, 0.5, 0.9, 0.5, 0.5),
	}

	direct := routeAlong(straightPolyline(origin, destination, 20))
	viaGreen := routeAlong(straightPolyline(
		models.LatLng{Lat: greenCorridor.Lat - 0.002, Lng: greenCorridor.Lng},
		models.LatLng{Lat: greenCorridor.Lat + 0.002, Lng: greenCorridor.Lng}, 20))

	provider := &stubProvider{
		directions: func(_, _ models.LatLng, _ int, _ planner.RouteOptions) ([]planner.Route, error) {
			return []planner.Route{direct, viaGreen}, nil
		},
	}
	s := newTestService(provider, noon, features, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "nature",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.PlanID)
	assert.False(t, resp.Degraded)
	assert.False(t, resp.Night.IsNight)
	assert.Equal(t, viaGreen.Polyline[0], resp.Route.Polyline[0])
	assert.InDelta(t, 0.9, resp.Route.Breakdown.Green, 0.01)
	assert.LessOrEqual(t, len(resp.DisplayPolyline), len(resp.Route.Polyline))
}

func TestPlanRouteNightCorridorFallback(t *testing.T) {
	var corridorWaypoints []models.LatLng
	provider := &stubProvider{
		directions: func(_, _ models.LatLng, _ int, opts planner.RouteOptions) ([]planner.Route, error) {
			if len(opts.AvoidPolygon) > 0 {
				return nil, planner.ErrAvoidAreaUnsupported
			}
			return nil, errors.New("no route")
		},
		waypointRoute: func(o models.LatLng, waypoints []models.LatLng, opts planner.RouteOptions) (*planner.Route, error) {
			require.Empty(t, opts.AvoidPolygon)
			corridorWaypoints = waypoints
			route := routeAlong(straightPolyline(o, waypoints[len(waypoints)-1], 20))
			return &route, nil
		},
	}
	s := newTestService(provider, lateNight, nil, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "scenic",
	})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.True(t, resp.Night.IsNight)
	assert.Contains(t, resp.Notes, "routed through well-lit corridor waypoints")

	// Corridor waypoints precede the destination
	require.Len(t, corridorWaypoints, len(planner.SafeCorridorWaypoints)+1)
	assert.Equal(t, destination, corridorWaypoints[len(corridorWaypoints)-1])
}

func TestPlanRouteQuickSuppressesHighlights(t *testing.T) {
	pois := []models.POIFeature{
		{ID: "p1", Name: "Jardí", Category: "park", Lat: 41.3940, Lng: 2.1725},
	}
	direct := routeAlong(straightPolyline(origin, destination, 20))
	provider := &stubProvider{
		directions: func(_, _ models.LatLng, _ int, _ planner.RouteOptions) ([]planner.Route, error) {
			return []planner.Route{direct}, nil
		},
	}
	s := newTestService(provider, noon, nil, pois)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "quick",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Highlights)
}

func TestPlanRouteWanderUsesIsochrone(t *testing.T) {
	ring := []models.LatLng{
		{Lat: 41.3960, Lng: 2.1700},
		{Lat: 41.3900, Lng: 2.1770},
		{Lat: 41.3840, Lng: 2.1700},
	}
	provider := &stubProvider{
		isochrone: func(_ models.LatLng, _ int) ([]models.LatLng, error) {
			return ring, nil
		},
		directions: func(o, d models.LatLng, _ int, _ planner.RouteOptions) ([]planner.Route, error) {
			return []planner.Route{routeAlong(straightPolyline(o, d, 20))}, nil
		},
	}
	s := newTestService(provider, noon, nil, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Intent: "exercise", DurationMinutes: 20,
	})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Equal(t, origin, resp.Route.Polyline[0])
}

func TestPlanRouteWanderDegradesToLoop(t *testing.T) {
	// Isochrone fails: the request degrades to loop synthesis instead
	// of erroring
	s := newTestService(&stubProvider{}, noon, nil, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Intent: "scenic", DurationMinutes: 20,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Degraded)
}

func TestPlanLoopNeverFails(t *testing.T) {
	s := newTestService(&stubProvider{}, noon, nil, nil)

	resp, err := s.PlanLoop(context.Background(), models.PlanLoopRequest{
		Origin: origin, Intent: "calm", DurationMinutes: 25,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Degraded)
	require.NotEmpty(t, resp.Notes)
	assert.Contains(t, resp.Notes[0], "strategy: minimal")
	assert.Greater(t, resp.Route.DistanceMeters, 0.0)
	assert.Greater(t, resp.Route.DurationSeconds, 0.0)
}

func TestPlanLoopNatureEndToEnd(t *testing.T) {
	// Quiet green streets tile the whole loop area
	var features []models.StreetFeature
	id := int64(1)
	for _, dLat := range []float64{-0.008, 0, 0.008} {
		for _, dLng := range []float64{-0.008, 0, 0.008} {
			features = append(features, fixtureFeature(id, origin.Lat+dLat, origin.Lng+dLng, 0.8, 0.9, 0.7, 0.3))
			id++
		}
	}
	pois := []models.POIFeature{
		{ID: "p1", Name: "Parc de l'Estació del Nord", Category: "park", Lat: origin.Lat + 0.0004, Lng: origin.Lng + 0.0004},
		{ID: "p2", Name: "Jardins de la Indústria", Category: "nature", Lat: origin.Lat - 0.0010, Lng: origin.Lng + 0.0010},
	}

	provider := &stubProvider{
		waypointRoute: func(o models.LatLng, waypoints []models.LatLng, _ planner.RouteOptions) (*planner.Route, error) {
			points := models.Polyline{o}
			prev := o
			for _, wp := range waypoints {
				leg := straightPolyline(prev, wp, 11)
				points = append(points, leg[1:]...)
				prev = wp
			}
			route := routeAlong(points)
			return &route, nil
		},
	}
	s := newTestService(provider, noon, features, pois)

	resp, err := s.PlanLoop(context.Background(), models.PlanLoopRequest{
		Origin: origin, Intent: "nature", DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Equal(t, models.IntentNature, resp.Intent)

	poly := resp.Route.Polyline
	require.GreaterOrEqual(t, len(poly), 3)
	assert.Equal(t, origin, poly[0])
	assert.InDelta(t, origin.Lat, poly[len(poly)-1].Lat, 1e-9)
	assert.InDelta(t, origin.Lng, poly[len(poly)-1].Lng, 1e-9)

	// The green average dominates the noise complement on these streets
	assert.GreaterOrEqual(t, resp.Route.Breakdown.Green, 1-resp.Route.Breakdown.Noise)

	// Split at the farthest point: the return leg takes other streets
	far := 0
	for i, p := range poly {
		if spatial.Distance(origin, p) > spatial.Distance(origin, poly[far]) {
			far = i
		}
	}
	overlap := planner.OverlapFraction(poly[far:], poly[:far+1])
	assert.LessOrEqual(t, overlap, 0.4)

	require.NotEmpty(t, resp.Highlights)
	for _, h := range resp.Highlights {
		assert.Contains(t, []string{"park", "nature"}, h.Category)
	}
}

func TestPlanRouteForceNightAtNoon(t *testing.T) {
	var captured []planner.RouteOptions
	direct := routeAlong(straightPolyline(origin, destination, 20))
	provider := &stubProvider{
		directions: func(_, _ models.LatLng, _ int, opts planner.RouteOptions) ([]planner.Route, error) {
			captured = append(captured, opts)
			return []planner.Route{direct}, nil
		},
	}
	s := newTestService(provider, noon, nil, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "scenic", ForceNight: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Night.IsNight)
	assert.True(t, resp.Night.ForceAvoidZones)
	require.NotEmpty(t, captured)
	assert.NotEmpty(t, captured[0].AvoidPolygon)
}

func TestPlanRouteRetryKeepsAvoidPolygon(t *testing.T) {
	// First attempt fails for an unrelated reason; the retry must still
	// carry the night avoid polygon
	direct := routeAlong(straightPolyline(origin, destination, 20))
	var retryOpts planner.RouteOptions
	provider := &stubProvider{
		directions: func(_, _ models.LatLng, alternatives int, opts planner.RouteOptions) ([]planner.Route, error) {
			if alternatives > 0 {
				return nil, errors.New("transient provider failure")
			}
			retryOpts = opts
			return []planner.Route{direct}, nil
		},
	}
	s := newTestService(provider, lateNight, nil, nil)

	resp, err := s.PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "scenic",
	})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.NotEmpty(t, retryOpts.AvoidPolygon)
}

func TestPlanRouteNightChangesScoring(t *testing.T) {
	// Same request at 14:00 and 22:00: night state and safety tags
	// only appear after dark
	features := []models.StreetFeature{
		fixtureFeature(1, (origin.Lat+destination.Lat)/2, (origin.Lng+destination.Lng)/2, 0.6, 0.5, 0.9, 0.4),
	}
	direct := routeAlong(straightPolyline(origin, destination, 20))
	provider := &stubProvider{
		directions: func(_, _ models.LatLng, _ int, _ planner.RouteOptions) ([]planner.Route, error) {
			return []planner.Route{direct}, nil
		},
	}

	dayResp, err := newTestService(provider, noon, features, nil).PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "scenic",
	})
	require.NoError(t, err)

	nightResp, err := newTestService(provider, lateNight, features, nil).PlanRoute(context.Background(), models.PlanRouteRequest{
		Origin: origin, Destination: &destination, Intent: "scenic",
	})
	require.NoError(t, err)

	assert.False(t, dayResp.Night.IsNight)
	assert.NotContains(t, dayResp.Route.Tags, "well-lit streets")

	assert.True(t, nightResp.Night.IsNight)
	assert.True(t, nightResp.Night.ForceAvoidZones)
	assert.Contains(t, nightResp.Route.Tags, "well-lit streets")
}
