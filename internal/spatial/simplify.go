package spatial

import (
	"math"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// DefaultSimplifyTolerance is roughly 8 meters in degrees, enough for
// display polylines without visible shape loss
const DefaultSimplifyTolerance = 0.00008

// Simplify reduces a polyline's point count with the Douglas-Peucker
// algorithm. The first and last points are always preserved. Only the
// display polyline goes through this; distance, duration and scoring
// always use the provider's original output.
func Simplify(points models.Polyline, tolerance float64) models.Polyline {
	if len(points) <= 2 {
		return points.Clone()
	}
	if tolerance <= 0 {
		tolerance = DefaultSimplifyTolerance
	}
	return douglasPeucker(points, tolerance)
}

func douglasPeucker(points models.Polyline, tolerance float64) models.Polyline {
	if len(points) <= 2 {
		return points.Clone()
	}

	// Find the point farthest from the chord between the endpoints
	first := points[0]
	last := points[len(points)-1]
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return models.Polyline{first, last}
	}

	left := douglasPeucker(points[:maxIdx+1], tolerance)
	right := douglasPeucker(points[maxIdx:], tolerance)

	// Drop the duplicated split point
	out := make(models.Polyline, 0, len(left)+len(right)-1)
	out = append(out, left...)
	out = append(out, right[1:]...)
	return out
}

// perpendicularDistance returns the distance in degrees from p to the
// line through a and b
func perpendicularDistance(p, a, b models.LatLng) float64 {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat

	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lng-a.Lng, p.Lat-a.Lat)
	}

	// Project p onto the segment, clamped to its endpoints
	t := ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	nearestLng := a.Lng + t*dx
	nearestLat := a.Lat + t*dy
	return math.Hypot(p.Lng-nearestLng, p.Lat-nearestLat)
}
