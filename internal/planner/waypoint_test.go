package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

func testSelector(features ...models.StreetFeature) *WaypointSelector {
	return NewWaypointSelector(index.Build(features), rand.New(rand.NewSource(1)))
}

func blockFeature(id int64, lat, lng, green, cultural float64) models.StreetFeature {
	var path []models.LatLng
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			path = append(path, models.LatLng{Lat: lat + float64(dy)*0.001, Lng: lng + float64(dx)*0.001})
		}
	}
	return models.StreetFeature{
		ID: id, Paths: [][]models.LatLng{path},
		Green: green, Cultural: cultural, Noise: 0.5, Clean: 0.5,
	}
}

var testOrigin = models.LatLng{Lat: 41.3900, Lng: 2.1700}

func TestSelectExercisePicksFarthest(t *testing.T) {
	s := testSelector()
	boundary := []models.LatLng{
		{Lat: 41.3910, Lng: 2.1700}, // ~110m
		{Lat: 41.3990, Lng: 2.1700}, // ~1km
		{Lat: 41.3940, Lng: 2.1700}, // ~440m
	}

	got := s.Select(boundary, models.IntentExercise, testOrigin, 5000, nil)
	assert.Equal(t, boundary[1], got)
}

func TestSelectCalmPicksGreenestNeighborhood(t *testing.T) {
	green := blockFeature(1, 41.3990, 2.1700, 0.9, 0.1)
	gray := blockFeature(2, 41.3900, 2.1800, 0.1, 0.1)
	s := testSelector(green, gray)

	boundary := []models.LatLng{
		{Lat: 41.3900, Lng: 2.1800}, // gray neighborhood
		{Lat: 41.3990, Lng: 2.1700}, // green neighborhood
	}

	got := s.Select(boundary, models.IntentCalm, testOrigin, 5000, nil)
	assert.Equal(t, boundary[1], got)
}

func TestSelectDiscoverPicksCulturalNeighborhood(t *testing.T) {
	cultural := blockFeature(1, 41.3990, 2.1700, 0.1, 0.9)
	plain := blockFeature(2, 41.3900, 2.1800, 0.1, 0.1)
	s := testSelector(cultural, plain)

	boundary := []models.LatLng{
		{Lat: 41.3900, Lng: 2.1800},
		{Lat: 41.3990, Lng: 2.1700},
	}

	got := s.Select(boundary, models.IntentDiscover, testOrigin, 5000, nil)
	assert.Equal(t, boundary[1], got)
}

func TestSelectRespectsAreaBox(t *testing.T) {
	s := testSelector()
	boundary := []models.LatLng{
		{Lat: 41.3910, Lng: 2.1700},
		{Lat: 41.4000, Lng: 2.2000},
	}
	area := &models.BoundingBox{MinLat: 41.395, MinLng: 2.19, MaxLat: 41.405, MaxLng: 2.21}

	got := s.Select(boundary, models.IntentExercise, testOrigin, 50000, area)
	assert.Equal(t, boundary[1], got)
}

func TestSelectRelaxesDistanceCap(t *testing.T) {
	// Every candidate is farther than the cap: the cap is dropped
	// rather than failing
	s := testSelector()
	boundary := []models.LatLng{
		{Lat: 41.4100, Lng: 2.1700},
		{Lat: 41.4150, Lng: 2.1700},
	}

	got := s.Select(boundary, models.IntentExercise, testOrigin, 100, nil)
	assert.Equal(t, boundary[1], got)
}

func TestSelectAllWaterFallsBackToCoercedCentroid(t *testing.T) {
	s := testSelector()
	// Ring entirely inside the water exclusion box
	boundary := []models.LatLng{
		{Lat: 41.3500, Lng: 2.2000},
		{Lat: 41.3520, Lng: 2.2100},
		{Lat: 41.3510, Lng: 2.2050},
	}

	got := s.Select(boundary, models.IntentScenic, testOrigin, 5000, nil)
	assert.True(t, IsOnLand(got))
}

func TestSelectEmptyBoundaryNeverPanics(t *testing.T) {
	s := testSelector()

	got := s.Select(nil, models.IntentScenic, testOrigin, 5000, nil)
	assert.InDelta(t, 300, spatial.Distance(testOrigin, got), 1)
	assert.Greater(t, got.Lat, testOrigin.Lat)
}

func TestSelectSinglePointRing(t *testing.T) {
	s := testSelector()
	boundary := []models.LatLng{{Lat: 41.3950, Lng: 2.1750}}

	got := s.Select(boundary, models.IntentExercise, testOrigin, 5000, nil)
	assert.Equal(t, boundary[0], got)
}

func TestDownsampleRingKeepsOrder(t *testing.T) {
	ring := make([]models.LatLng, 200)
	for i := range ring {
		ring[i] = models.LatLng{Lat: 41.39 + float64(i)*0.0001, Lng: 2.17}
	}

	out := downsampleRing(ring, maxBoundaryCandidates)
	assert.Len(t, out, maxBoundaryCandidates)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].Lat, out[i-1].Lat)
	}
}
