package index

import (
	"math"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// cellsPerDegree gives ~100m cells at Barcelona's latitude
const cellsPerDegree = 1000

// cellKey identifies one grid cell. Derived by rounding longitude and
// latitude to 1/1000 of a degree.
type cellKey struct {
	x int // rounded longitude
	y int // rounded latitude
}

func keyFor(lng, lat float64) cellKey {
	return cellKey{
		x: int(math.Round(lng * cellsPerDegree)),
		y: int(math.Round(lat * cellsPerDegree)),
	}
}

// Index is a grid-keyed lookup over street-quality features. Built once
// from the full feature set and read-only afterwards; readers never
// block each other.
type Index struct {
	features []models.StreetFeature
	cells    map[cellKey][]*models.StreetFeature
}

// Build constructs a grid index from the feature set. Every vertex of
// every feature registers its owning feature in the vertex's cell; a
// feature spanning many cells appears in each of them. Building is pure
// and deterministic for a given input.
func Build(features []models.StreetFeature) *Index {
	ix := &Index{
		features: make([]models.StreetFeature, len(features)),
		cells:    make(map[cellKey][]*models.StreetFeature),
	}
	copy(ix.features, features)

	for i := range ix.features {
		f := &ix.features[i]
		seen := make(map[cellKey]bool)
		for _, path := range f.Paths {
			for _, pt := range path {
				key := keyFor(pt.Lng, pt.Lat)
				if seen[key] {
					continue
				}
				seen[key] = true
				ix.cells[key] = append(ix.cells[key], f)
			}
		}
	}

	return ix
}

// FeatureCount returns the number of indexed features
func (ix *Index) FeatureCount() int {
	return len(ix.features)
}

// LookupNeighborhood returns the union of features registered in the
// 3x3 block of cells centered on the query point's cell
func (ix *Index) LookupNeighborhood(lng, lat float64) []*models.StreetFeature {
	center := keyFor(lng, lat)

	var result []*models.StreetFeature
	seen := make(map[*models.StreetFeature]bool)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			key := cellKey{x: center.x + dx, y: center.y + dy}
			for _, f := range ix.cells[key] {
				if seen[f] {
					continue
				}
				seen[f] = true
				result = append(result, f)
			}
		}
	}
	return result
}

// NearestFeature returns the feature owning the vertex closest to the
// query point among the 3x3 neighborhood, or nil when the neighborhood
// is empty. Distance is squared-degree distance to the nearest vertex,
// not the nearest point on the segment; at ~100m cell granularity the
// approximation is fine for city-scale scoring.
func (ix *Index) NearestFeature(lng, lat float64) *models.StreetFeature {
	candidates := ix.LookupNeighborhood(lng, lat)
	if len(candidates) == 0 {
		return nil
	}

	var best *models.StreetFeature
	bestDist := math.MaxFloat64
	for _, f := range candidates {
		for _, path := range f.Paths {
			for _, pt := range path {
				dx := pt.Lng - lng
				dy := pt.Lat - lat
				d := dx*dx + dy*dy
				if d < bestDist {
					bestDist = d
					best = f
				}
			}
		}
	}
	return best
}

// NeighborhoodAverage averages fn over the 3x3 neighborhood's features.
// Returns false when no features are registered near the point.
func (ix *Index) NeighborhoodAverage(lng, lat float64, fn func(*models.StreetFeature) float64) (float64, bool) {
	features := ix.LookupNeighborhood(lng, lat)
	if len(features) == 0 {
		return 0, false
	}

	var sum float64
	for _, f := range features {
		sum += fn(f)
	}
	return sum / float64(len(features)), true
}
