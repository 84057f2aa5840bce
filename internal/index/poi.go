package index

import (
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

// POIIndex is a geohash-bucketed lookup over point-of-interest
// features, used for fixed-radius searches around route sample points.
// Read-only after construction.
type POIIndex struct {
	pois      []models.POIFeature
	cells     map[string][]*models.POIFeature
	precision int
	radius    float64
}

// BuildPOIIndex buckets POIs into geohash cells coarse enough that a
// center-plus-neighbors scan covers the given search radius
func BuildPOIIndex(pois []models.POIFeature, radiusMeters float64) *POIIndex {
	px := &POIIndex{
		pois:      make([]models.POIFeature, len(pois)),
		cells:     make(map[string][]*models.POIFeature),
		precision: spatial.GeohashPrecisionForRadius(radiusMeters),
		radius:    radiusMeters,
	}
	copy(px.pois, pois)

	for i := range px.pois {
		p := &px.pois[i]
		hash := spatial.EncodeGeohash(p.Lat, p.Lng, px.precision)
		px.cells[hash] = append(px.cells[hash], p)
	}

	return px
}

// Within returns all POIs within the index's search radius of the point
func (px *POIIndex) Within(lat, lng float64) []*models.POIFeature {
	center := spatial.EncodeGeohash(lat, lng, px.precision)
	hashes := append([]string{center}, spatial.GeohashNeighbors(center)...)

	var result []*models.POIFeature
	for _, hash := range hashes {
		for _, p := range px.cells[hash] {
			if spatial.HaversineDistance(lat, lng, p.Lat, p.Lng) <= px.radius {
				result = append(result, p)
			}
		}
	}
	return result
}
