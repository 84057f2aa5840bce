package planner

import (
	"context"
	"log"
	"math"
	"math/rand"

	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

const (
	// walkSpeedMetersPerMinute is an average urban walking pace
	walkSpeedMetersPerMinute = 80.0
	// loopShrinkFactor accounts for street routing running longer
	// than the straight-line distance to the turnaround point
	loopShrinkFactor = 0.75
	// maxLoopAttempts bounds the bearing search
	maxLoopAttempts = 3
	// bearingRetryOffset diversifies bearings across attempts
	bearingRetryOffset = 115.0

	// returnOffsetFraction places the perpendicular detour anchor
	// along the outbound leg
	returnOffsetFraction = 0.4
	// returnOffsetMeters pushes the return leg onto different streets
	returnOffsetMeters = 500.0

	// overlapRadiusMeters is how close a return point must be to an
	// outbound point to count as overlapping
	overlapRadiusMeters = 30.0
	// maxOverlapFraction rejects there-and-back-the-same-way loops
	maxOverlapFraction = 0.4
	// overlapSampleLimit bounds the pairwise overlap check
	overlapSampleLimit = 120
)

// LoopPlan is the synthesizer's result. Strategy names which path
// produced it; Degraded marks results from the fallback chain.
type LoopPlan struct {
	Route    Route
	Scored   models.ScoredRoute
	Strategy string
	Degraded bool
}

// LoopSynthesizer builds an out-and-back route from only an origin,
// duration and intent. It must never fail for a duration-only request:
// distance and quality degrade before any error surfaces.
type LoopSynthesizer struct {
	provider Provider
	scorer   *scoring.Scorer
	selector *WaypointSelector
	rng      *rand.Rand
}

// NewLoopSynthesizer creates a loop synthesizer. The random source is
// injectable so tests can force specific bearings.
func NewLoopSynthesizer(provider Provider, scorer *scoring.Scorer, selector *WaypointSelector, rng *rand.Rand) *LoopSynthesizer {
	return &LoopSynthesizer{
		provider: provider,
		scorer:   scorer,
		selector: selector,
		rng:      rng,
	}
}

// loopStrategy is one named fallback with its own way of producing a
// route. The driver tries them in order and stops at the first success.
type loopStrategy struct {
	name string
	run  func(ctx context.Context) (*Route, error)
}

// Synthesize builds the best loop it can for the duration. Up to 3
// bearing-search candidates are tried and ranked by composite score;
// when all fail, the fallback chain degrades distance and quality
// until the terminal strategy, which cannot fail.
func (l *LoopSynthesizer) Synthesize(ctx context.Context, origin models.LatLng, durationMinutes int, intent models.Intent, night models.NightState) *LoopPlan {
	targetDistance := float64(durationMinutes) * walkSpeedMetersPerMinute / 2 * loopShrinkFactor
	opts := NightOptions(night)

	var best *LoopPlan
	for attempt := 0; attempt < maxLoopAttempts; attempt++ {
		candidate := l.attemptLoop(ctx, origin, targetDistance, attempt, intent, night, opts)
		if candidate == nil {
			continue
		}
		// Strict comparison: the first-attempted candidate wins ties
		if best == nil || candidate.Scored.Score > best.Scored.Score {
			best = candidate
		}
	}
	if best != nil {
		return best
	}

	log.Printf("[LoopSynthesizer] All %d bearing attempts failed, entering fallback chain", maxLoopAttempts)

	strategies := []loopStrategy{
		{name: "isochrone-waypoint", run: func(ctx context.Context) (*Route, error) {
			return l.isochroneLoop(ctx, origin, durationMinutes, targetDistance, intent, opts)
		}},
		{name: "short-leg", run: func(ctx context.Context) (*Route, error) {
			return l.shortLegLoop(ctx, origin, opts)
		}},
		{name: "minimal", run: func(ctx context.Context) (*Route, error) {
			return l.minimalLoop(origin), nil
		}},
	}

	for _, strategy := range strategies {
		route, err := strategy.run(ctx)
		if err != nil || route == nil {
			log.Printf("[LoopSynthesizer] Strategy %s failed: %v", strategy.name, err)
			continue
		}
		return &LoopPlan{
			Route:    *route,
			Scored:   l.scorer.Score(route.Polyline, intent, night),
			Strategy: strategy.name,
			Degraded: true,
		}
	}

	// Unreachable: the minimal strategy cannot fail
	minimal := l.minimalLoop(origin)
	return &LoopPlan{
		Route:    *minimal,
		Scored:   l.scorer.Score(minimal.Polyline, intent, night),
		Strategy: "minimal",
		Degraded: true,
	}
}

// attemptLoop runs one bearing-search candidate: outbound leg toward a
// random bearing, return leg through a perpendicular offset, overlap
// check with one sign-flip retry
func (l *LoopSynthesizer) attemptLoop(ctx context.Context, origin models.LatLng, targetDistance float64, attempt int, intent models.Intent, night models.NightState, opts RouteOptions) *LoopPlan {
	bearing := math.Mod(l.rng.Float64()*360+float64(attempt)*bearingRetryOffset, 360)
	turnaround := spatial.Offset(origin, bearing, targetDistance)
	turnaround.Lat, turnaround.Lng = CentralBounds.Clamp(turnaround.Lat, turnaround.Lng)

	outbound, err := l.provider.WaypointRoute(ctx, origin, []models.LatLng{turnaround}, opts)
	if err != nil || outbound == nil || len(outbound.Polyline) < 2 {
		return nil
	}

	sign := 1.0
	if l.rng.Intn(2) == 1 {
		sign = -1.0
	}

	for try := 0; try < 2; try++ {
		detour := returnDetourPoint(outbound.Polyline, sign)
		returnLeg, err := l.provider.WaypointRoute(ctx, turnaround, []models.LatLng{detour, origin}, opts)
		if err != nil || returnLeg == nil || len(returnLeg.Polyline) < 2 {
			return nil
		}

		overlap := OverlapFraction(returnLeg.Polyline, outbound.Polyline)
		if overlap > maxOverlapFraction {
			// Push the detour to the other side once before rejecting
			sign = -sign
			continue
		}

		route := joinLegs(*outbound, *returnLeg)
		return &LoopPlan{
			Route:    route,
			Scored:   l.scorer.Score(route.Polyline, intent, night),
			Strategy: "bearing-search",
		}
	}

	return nil
}

// returnDetourPoint offsets perpendicular to the outbound path at
// ~40% along it. The local heading comes from the circular mean of the
// surrounding segment bearings, which is stable against jitter in the
// provider's geometry.
func returnDetourPoint(outbound models.Polyline, sign float64) models.LatLng {
	anchor, idx := spatial.PointAlongFraction(outbound, returnOffsetFraction)

	var bearings []float64
	for i := idx - 3; i <= idx+3; i++ {
		if i < 0 || i+1 >= len(outbound) {
			continue
		}
		bearings = append(bearings, spatial.Bearing(outbound[i].Lat, outbound[i].Lng, outbound[i+1].Lat, outbound[i+1].Lng))
	}

	heading := 0.0
	if len(bearings) > 0 {
		heading = spatial.CircularMeanDegrees(bearings, nil)
	}

	return spatial.Offset(anchor, math.Mod(heading+sign*90+360, 360), returnOffsetMeters)
}

// OverlapFraction returns the proportion of return-leg sample points
// that land within 30m of any outbound-leg point
func OverlapFraction(returnLeg, outbound models.Polyline) float64 {
	retSamples := spatial.EvenSamples(returnLeg, overlapSampleLimit)
	outSamples := spatial.EvenSamples(outbound, overlapSampleLimit)
	if len(retSamples) == 0 || len(outSamples) == 0 {
		return 0
	}

	overlapping := 0
	for _, rp := range retSamples {
		for _, op := range outSamples {
			if spatial.Distance(rp, op) <= overlapRadiusMeters {
				overlapping++
				break
			}
		}
	}
	return float64(overlapping) / float64(len(retSamples))
}

// isochroneLoop asks the provider for a reachability boundary and
// routes out and back through the waypoint selector's pick
func (l *LoopSynthesizer) isochroneLoop(ctx context.Context, origin models.LatLng, durationMinutes int, targetDistance float64, intent models.Intent, opts RouteOptions) (*Route, error) {
	boundary, err := l.provider.Isochrone(ctx, origin, durationMinutes*60/2)
	if err != nil {
		return nil, err
	}

	waypoint := l.selector.Select(boundary, intent, origin, targetDistance*1.25, nil)
	return l.provider.WaypointRoute(ctx, origin, []models.LatLng{waypoint, origin}, opts)
}

// shortLegLoop tries a fixed-bearing out-and-back at decreasing
// distances
func (l *LoopSynthesizer) shortLegLoop(ctx context.Context, origin models.LatLng, opts RouteOptions) (*Route, error) {
	var lastErr error
	for _, distance := range []float64{500, 350, 200} {
		waypoint := spatial.Offset(origin, 45, distance)
		waypoint.Lat, waypoint.Lng = CentralBounds.Clamp(waypoint.Lat, waypoint.Lng)

		route, err := l.provider.WaypointRoute(ctx, origin, []models.LatLng{waypoint, origin}, opts)
		if err == nil && route != nil && len(route.Polyline) >= 2 {
			return route, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// minimalLoop is the guaranteed-non-failing terminal fallback: a
// 2-point out-and-back built without the provider. This is the one
// path allowed to return legs that retrace each other.
func (l *LoopSynthesizer) minimalLoop(origin models.LatLng) *Route {
	turnaround := spatial.Offset(origin, 0, 150)
	distance := 2 * spatial.Distance(origin, turnaround)
	return &Route{
		Polyline:        models.Polyline{origin, turnaround, origin},
		DurationSeconds: distance / walkSpeedMetersPerMinute * 60,
		DistanceMeters:  distance,
	}
}

// joinLegs concatenates outbound and return legs into one route,
// dropping the duplicated turnaround point
func joinLegs(outbound, returnLeg Route) Route {
	polyline := make(models.Polyline, 0, len(outbound.Polyline)+len(returnLeg.Polyline)-1)
	polyline = append(polyline, outbound.Polyline...)
	polyline = append(polyline, returnLeg.Polyline[1:]...)

	return Route{
		Polyline:        polyline,
		DurationSeconds: outbound.DurationSeconds + returnLeg.DurationSeconds,
		DistanceMeters:  outbound.DistanceMeters + returnLeg.DistanceMeters,
	}
}
