package spatial

import (
	"github.com/reroute/reroute-backend-go/internal/models"
)

// Centroid calculates the geographic centroid of a set of points
func Centroid(points []models.LatLng) models.LatLng {
	if len(points) == 0 {
		return models.LatLng{}
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	return models.LatLng{
		Lat: sumLat / float64(len(points)),
		Lng: sumLng / float64(len(points)),
	}
}

// PathLength calculates the total length of a polyline in meters
func PathLength(points models.Polyline) float64 {
	if len(points) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(points); i++ {
		totalDist += Distance(points[i-1], points[i])
	}

	return totalDist
}

// PointAlongFraction returns the polyline vertex closest to the given
// fraction (0-1) of the path's cumulative length, and its index
func PointAlongFraction(points models.Polyline, fraction float64) (models.LatLng, int) {
	if len(points) == 0 {
		return models.LatLng{}, -1
	}
	if fraction <= 0 || len(points) == 1 {
		return points[0], 0
	}
	if fraction >= 1 {
		return points[len(points)-1], len(points) - 1
	}

	target := PathLength(points) * fraction
	var walked float64
	for i := 1; i < len(points); i++ {
		walked += Distance(points[i-1], points[i])
		if walked >= target {
			return points[i], i
		}
	}
	return points[len(points)-1], len(points) - 1
}

// EvenSamples returns up to count points spaced evenly along the
// polyline by vertex index. The first and last vertex are always
// included when count >= 2.
func EvenSamples(points models.Polyline, count int) models.Polyline {
	if count <= 0 || len(points) == 0 {
		return nil
	}
	if len(points) <= count {
		return points.Clone()
	}

	samples := make(models.Polyline, 0, count)
	step := float64(len(points)-1) / float64(count-1)
	for i := 0; i < count; i++ {
		idx := int(float64(i) * step)
		samples = append(samples, points[idx])
	}
	samples[count-1] = points[len(points)-1]
	return samples
}
