package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/planner"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

// ErrOutOfBounds reports a destination outside the supported area.
// Handlers surface it as a user-facing rejection, not a retry.
var ErrOutOfBounds = errors.New("destination is outside the supported area")

// defaultWanderMinutes is assumed when a destination-less request
// carries no duration
const defaultWanderMinutes = 30

// RouteService orchestrates the planning pipeline: provider calls,
// scoring, highlight extraction and display simplification
type RouteService struct {
	provider   planner.Provider
	scorer     *scoring.Scorer
	selector   *planner.WaypointSelector
	loops      *planner.LoopSynthesizer
	highlights *planner.HighlightExtractor
	budget     time.Duration
	now        func() time.Time
}

// NewRouteService creates a route service. The clock is injectable so
// tests can pin the night state.
func NewRouteService(
	provider planner.Provider,
	scorer *scoring.Scorer,
	selector *planner.WaypointSelector,
	loops *planner.LoopSynthesizer,
	highlights *planner.HighlightExtractor,
	budget time.Duration,
	now func() time.Time,
) *RouteService {
	if now == nil {
		now = time.Now
	}
	return &RouteService{
		provider:   provider,
		scorer:     scorer,
		selector:   selector,
		loops:      loops,
		highlights: highlights,
		budget:     budget,
		now:        now,
	}
}

// PlanRoute handles the main planning operation. With a destination it
// scores the provider's alternatives and picks per intent; without one
// it wanders toward a waypoint chosen from the origin's isochrone.
func (s *RouteService) PlanRoute(ctx context.Context, req models.PlanRouteRequest) (*models.PlanResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	intent := models.ParseIntent(req.Intent)
	night := scoring.ComputeNightState(s.now(), req.ForceNight, req.Vulnerable)

	if req.Destination != nil {
		return s.planDirect(ctx, req, intent, night)
	}
	return s.planWander(ctx, req, intent, night)
}

// PlanLoop handles duration-only loop requests. It never fails for a
// well-formed origin: the synthesizer degrades before refusing.
func (s *RouteService) PlanLoop(ctx context.Context, req models.PlanLoopRequest) (*models.PlanResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	intent := models.ParseIntent(req.Intent)
	night := scoring.ComputeNightState(s.now(), req.ForceNight, req.Vulnerable)

	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = defaultWanderMinutes
	}

	plan := s.loops.Synthesize(ctx, req.Origin, minutes, intent, night)

	scored := plan.Scored
	scored.DurationSeconds = plan.Route.DurationSeconds
	scored.DistanceMeters = plan.Route.DistanceMeters

	resp := s.buildResponse(scored, intent, night, models.PlanRouteRequest{
		Origin: req.Origin, Intent: req.Intent, Vulnerable: req.Vulnerable,
	})
	resp.Degraded = plan.Degraded
	if plan.Degraded {
		resp.Notes = append(resp.Notes, fmt.Sprintf("loop limits were relaxed (strategy: %s)", plan.Strategy))
	}
	return resp, nil
}

// planDirect is the origin→destination path
func (s *RouteService) planDirect(ctx context.Context, req models.PlanRouteRequest, intent models.Intent, night models.NightState) (*models.PlanResponse, error) {
	dest := *req.Destination
	if !planner.CentralBounds.Contains(dest.Lat, dest.Lng) {
		return nil, ErrOutOfBounds
	}

	opts := planner.NightOptions(night)
	routes, degraded, err := s.directionsWithFallback(ctx, req.Origin, dest, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get directions: %w", err)
	}

	best := s.pickBest(routes, intent, night)

	resp := s.buildResponse(best, intent, night, req)
	resp.Degraded = degraded
	if degraded {
		resp.Notes = append(resp.Notes, "routed through well-lit corridor waypoints")
	}
	return resp, nil
}

// directionsWithFallback asks for alternatives and falls back to the
// safe-corridor waypoints when the provider rejects the avoid polygon.
// The corridor fallback must run before any routing failure surfaces.
func (s *RouteService) directionsWithFallback(ctx context.Context, origin, dest models.LatLng, opts planner.RouteOptions) ([]planner.Route, bool, error) {
	routes, err := s.provider.Directions(ctx, origin, dest, 2, opts)
	if err == nil && len(routes) > 0 {
		return routes, false, nil
	}

	if errors.Is(err, planner.ErrAvoidAreaUnsupported) && len(opts.AvoidPolygon) > 0 {
		log.Printf("[RouteService] Provider rejected avoid area, retrying via safe corridor")
		corridorOpts := opts
		corridorOpts.AvoidPolygon = nil

		waypoints := append([]models.LatLng{}, planner.SafeCorridorWaypoints...)
		waypoints = append(waypoints, dest)
		route, corridorErr := s.provider.WaypointRoute(ctx, origin, waypoints, corridorOpts)
		if corridorErr == nil && route != nil {
			return []planner.Route{*route}, true, nil
		}
	}

	// One plain retry without alternates before giving up. The avoid
	// polygon stays in force: a night request must not cut through the
	// avoid zone just because the first attempt failed.
	routes, retryErr := s.provider.Directions(ctx, origin, dest, 0, opts)
	if retryErr == nil && len(routes) > 0 {
		return routes, false, nil
	}

	if err == nil {
		err = errors.New("provider returned no routes")
	}
	return nil, false, err
}

// planWander is the destination-less path: pick a waypoint on the
// isochrone boundary and route to it
func (s *RouteService) planWander(ctx context.Context, req models.PlanRouteRequest, intent models.Intent, night models.NightState) (*models.PlanResponse, error) {
	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = defaultWanderMinutes
	}

	opts := planner.NightOptions(night)
	maxDistance := float64(minutes) * 80

	var waypoint models.LatLng
	boundary, err := s.provider.Isochrone(ctx, req.Origin, minutes*60)
	if err != nil {
		log.Printf("[RouteService] Isochrone failed, falling back to loop synthesis: %v", err)
		return s.PlanLoop(ctx, models.PlanLoopRequest{
			Origin: req.Origin, Intent: req.Intent,
			DurationMinutes: minutes, Vulnerable: req.Vulnerable,
			ForceNight: req.ForceNight,
		})
	}
	waypoint = s.selector.Select(boundary, intent, req.Origin, maxDistance, req.Area)

	routes, degraded, err := s.directionsWithFallback(ctx, req.Origin, waypoint, opts)
	if err != nil {
		// Wander requests must not fail; degrade to a synthesized loop
		log.Printf("[RouteService] Wander routing failed, degrading to loop: %v", err)
		resp, loopErr := s.PlanLoop(ctx, models.PlanLoopRequest{
			Origin: req.Origin, Intent: req.Intent,
			DurationMinutes: minutes, Vulnerable: req.Vulnerable,
			ForceNight: req.ForceNight,
		})
		if loopErr != nil {
			return nil, loopErr
		}
		resp.Degraded = true
		return resp, nil
	}

	best := s.pickBest(routes, intent, night)

	resp := s.buildResponse(best, intent, night, req)
	resp.Degraded = degraded
	return resp, nil
}

// pickBest scores every candidate and keeps the highest composite
// score; exact ties keep the earlier candidate
func (s *RouteService) pickBest(routes []planner.Route, intent models.Intent, night models.NightState) models.ScoredRoute {
	var best models.ScoredRoute
	bestScore := -1.0
	for _, r := range routes {
		scored := s.scorer.Score(r.Polyline, intent, night)
		scored.DurationSeconds = r.DurationSeconds
		scored.DistanceMeters = r.DistanceMeters
		if scored.Score > bestScore {
			bestScore = scored.Score
			best = scored
		}
	}
	return best
}

// buildResponse annotates the chosen route with highlights and the
// simplified display polyline
func (s *RouteService) buildResponse(route models.ScoredRoute, intent models.Intent, night models.NightState, req models.PlanRouteRequest) *models.PlanResponse {
	var excluded []string
	if req.DestinationCategory != "" {
		excluded = append(excluded, req.DestinationCategory)
	}

	highlights := []models.Highlight{}
	if intent != models.IntentQuick {
		highlights = s.highlights.Extract(route.Polyline, intent, excluded, req.POIFocused)
	}

	return &models.PlanResponse{
		PlanID:          uuid.NewString(),
		Intent:          intent,
		Route:           route,
		Highlights:      highlights,
		DisplayPolyline: spatial.Simplify(route.Polyline, spatial.DefaultSimplifyTolerance),
		Night:           night,
	}
}
