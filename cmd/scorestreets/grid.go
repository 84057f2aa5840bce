package main

import (
	"math"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// Degree-bucketed point grids stand in for a KD-tree: with cells sized
// to the query radius, every radius query touches at most nine buckets.

type gridKey struct{ x, y int }

type pointGrid struct {
	cellDeg float64
	cells   map[gridKey][]int
	points  []models.LatLng
}

func buildPointGrid(points []models.LatLng) *pointGrid {
	g := &pointGrid{
		cellDeg: bufferDeg,
		cells:   make(map[gridKey][]int),
		points:  points,
	}
	for i, p := range points {
		key := g.keyFor(p.Lng, p.Lat)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

func (g *pointGrid) keyFor(lng, lat float64) gridKey {
	return gridKey{
		x: int(math.Floor(lng / g.cellDeg)),
		y: int(math.Floor(lat / g.cellDeg)),
	}
}

// countNear counts the distinct points within bufferDeg of any vertex
func (g *pointGrid) countNear(vertices []models.LatLng) int {
	if len(g.points) == 0 {
		return 0
	}

	seen := make(map[int]struct{})
	for _, v := range vertices {
		center := g.keyFor(v.Lng, v.Lat)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, idx := range g.cells[gridKey{center.x + dx, center.y + dy}] {
					p := g.points[idx]
					if degreeDistance(v, p) <= bufferDeg {
						seen[idx] = struct{}{}
					}
				}
			}
		}
	}
	return len(seen)
}

type noiseGrid struct {
	cellDeg  float64
	cells    map[gridKey][]int
	segments []noiseSegment
}

func buildNoiseGrid(segments []noiseSegment) *noiseGrid {
	g := &noiseGrid{
		cellDeg:  noiseMatchDeg,
		cells:    make(map[gridKey][]int),
		segments: segments,
	}
	for i, s := range segments {
		key := g.keyFor(s.Centroid.Lng, s.Centroid.Lat)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

func (g *noiseGrid) keyFor(lng, lat float64) gridKey {
	return gridKey{
		x: int(math.Floor(lng / g.cellDeg)),
		y: int(math.Floor(lat / g.cellDeg)),
	}
}

// nearestDB returns the dB band of the closest noise segment within
// noiseMatchDeg of the point, if any
func (g *noiseGrid) nearestDB(point models.LatLng) (float64, bool) {
	center := g.keyFor(point.Lng, point.Lat)

	bestDist := math.Inf(1)
	var bestDB float64
	found := false
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, idx := range g.cells[gridKey{center.x + dx, center.y + dy}] {
				s := g.segments[idx]
				d := degreeDistance(point, s.Centroid)
				if d <= noiseMatchDeg && d < bestDist {
					bestDist = d
					bestDB = s.DB
					found = true
				}
			}
		}
	}
	return bestDB, found
}

func degreeDistance(a, b models.LatLng) float64 {
	dx := a.Lng - b.Lng
	dy := a.Lat - b.Lat
	return math.Sqrt(dx*dx + dy*dy)
}
