package planner

import (
	"math/rand"

	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

// maxBoundaryCandidates caps how many isochrone boundary points are
// considered as waypoint candidates
const maxBoundaryCandidates = 50

// WaypointSelector picks a single target waypoint inside a
// reachability boundary for destination-less wander requests. It
// always returns exactly one waypoint and never fails: the fallback
// chain exhausts before giving up.
type WaypointSelector struct {
	index *index.Index
	rng   *rand.Rand
}

// NewWaypointSelector creates a waypoint selector. The random source
// is injectable so tests can force choices.
func NewWaypointSelector(ix *index.Index, rng *rand.Rand) *WaypointSelector {
	return &WaypointSelector{index: ix, rng: rng}
}

// Select chooses one waypoint from the isochrone boundary ring.
// Candidates must be on land, inside the optional area box, and within
// maxDistanceMeters of the origin; each constraint is relaxed in turn
// when the filtered set comes up empty.
func (s *WaypointSelector) Select(boundary []models.LatLng, intent models.Intent, origin models.LatLng, maxDistanceMeters float64, area *models.BoundingBox) models.LatLng {
	candidates := downsampleRing(boundary, maxBoundaryCandidates)

	var onLand []models.LatLng
	for _, p := range candidates {
		if IsOnLand(p) {
			onLand = append(onLand, p)
		}
	}

	inArea := onLand
	if area != nil {
		inArea = nil
		for _, p := range onLand {
			if area.Contains(p.Lat, p.Lng) {
				inArea = append(inArea, p)
			}
		}
	}

	var filtered []models.LatLng
	for _, p := range inArea {
		if spatial.Distance(origin, p) <= maxDistanceMeters {
			filtered = append(filtered, p)
		}
	}

	// Relax constraints in order: distance cap, then area box
	if len(filtered) == 0 {
		filtered = inArea
	}
	if len(filtered) == 0 {
		filtered = onLand
	}
	if len(filtered) == 0 {
		if len(boundary) > 0 {
			// Ring midpoint, pushed onto land if needed
			return coerceOntoLand(spatial.Centroid(boundary))
		}
		// Degenerate input: wander a short way north of the origin
		return spatial.Offset(origin, 0, 300)
	}

	return s.pickByIntent(filtered, intent, origin)
}

// pickByIntent applies the per-intent selection rule to a non-empty
// candidate set
func (s *WaypointSelector) pickByIntent(candidates []models.LatLng, intent models.Intent, origin models.LatLng) models.LatLng {
	switch intent {
	case models.IntentExercise:
		// Farthest from the origin
		best := candidates[0]
		bestDist := -1.0
		for _, p := range candidates {
			dx := p.Lng - origin.Lng
			dy := p.Lat - origin.Lat
			d := dx*dx + dy*dy
			if d > bestDist {
				bestDist = d
				best = p
			}
		}
		return best
	case models.IntentCalm, models.IntentNature:
		return s.pickByNeighborhood(candidates, func(f *models.StreetFeature) float64 { return f.Green })
	case models.IntentDiscover:
		return s.pickByNeighborhood(candidates, func(f *models.StreetFeature) float64 { return f.Cultural })
	case models.IntentScenic:
		return s.pickByNeighborhood(candidates, func(f *models.StreetFeature) float64 { return f.Green + f.Cultural })
	default:
		return candidates[s.rng.Intn(len(candidates))]
	}
}

// pickByNeighborhood maximizes the 3x3-neighborhood average of the
// given criterion; ties keep the first candidate encountered
func (s *WaypointSelector) pickByNeighborhood(candidates []models.LatLng, fn func(*models.StreetFeature) float64) models.LatLng {
	best := candidates[0]
	bestScore := -1.0
	for _, p := range candidates {
		avg, ok := s.index.NeighborhoodAverage(p.Lng, p.Lat, fn)
		if !ok {
			continue
		}
		if avg > bestScore {
			bestScore = avg
			best = p
		}
	}
	return best
}

// downsampleRing thins a boundary ring to at most limit points while
// keeping its ordering
func downsampleRing(ring []models.LatLng, limit int) []models.LatLng {
	if len(ring) <= limit {
		out := make([]models.LatLng, len(ring))
		copy(out, ring)
		return out
	}

	out := make([]models.LatLng, 0, limit)
	step := float64(len(ring)) / float64(limit)
	for i := 0; i < limit; i++ {
		out = append(out, ring[int(float64(i)*step)])
	}
	return out
}
