package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reroute/reroute-backend-go/internal/models"
)

func TestReadCSVRowsStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	data := []byte("\uFEFFTOTAL_DEN,GEOM_WKT\n70 - 75 dB(A),LINESTRING (1 2, 3 4)\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rows, err := readCSVRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "70 - 75 dB(A)", rows[0]["TOTAL_DEN"])
}

func TestParseDBRange(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"70 - 75 dB(A)", 72.5},
		{"40 - 45 dB(A)", 42.5},
		{"< 40 dB(A)", 37.5},
		{"<40 dB(A)", 37.5},
	}
	for _, tt := range tests {
		got, err := parseDBRange(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.InDelta(t, tt.want, got, 1e-9, tt.raw)
	}

	_, err := parseDBRange("loud")
	assert.Error(t, err)
}

func TestParseWKTLines(t *testing.T) {
	paths, err := parseWKTLines("LINESTRING (430000.5 4582000.25, 430100 4582100)")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 2)
	assert.Equal(t, [2]float64{430000.5, 4582000.25}, paths[0][0])

	paths, err = parseWKTLines("MULTILINESTRING ((1 2, 3 4), (5 6, 7 8))")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, [2]float64{5, 6}, paths[1][0])

	_, err = parseWKTLines("POINT (1 2)")
	assert.Error(t, err)
}

func TestUTMToLatLngBarcelona(t *testing.T) {
	// A point in the Eixample, zone 31N
	lat, lng := utmToLatLng(430000, 4582000)
	assert.InDelta(t, 41.39, lat, 0.05)
	assert.InDelta(t, 2.16, lng, 0.05)

	// The central meridian maps back to 3 degrees east
	_, central := utmToLatLng(500000, 4582000)
	assert.InDelta(t, 3.0, central, 1e-6)
}

func TestPointGridCountNear(t *testing.T) {
	points := []models.LatLng{
		{Lat: 41.39000, Lng: 2.17000},
		{Lat: 41.39001, Lng: 2.17001}, // within buffer of the same vertex
		{Lat: 41.39500, Lng: 2.17500}, // far away
	}
	grid := buildPointGrid(points)

	got := grid.countNear([]models.LatLng{{Lat: 41.39000, Lng: 2.17000}})
	assert.Equal(t, 2, got)

	assert.Zero(t, grid.countNear([]models.LatLng{{Lat: 41.40000, Lng: 2.16000}}))
	assert.Zero(t, buildPointGrid(nil).countNear(points))
}

func TestNoiseGridNearest(t *testing.T) {
	segments := []noiseSegment{
		{Centroid: models.LatLng{Lat: 41.39000, Lng: 2.17000}, DB: 72.5},
		{Centroid: models.LatLng{Lat: 41.39040, Lng: 2.17040}, DB: 47.5},
	}
	grid := buildNoiseGrid(segments)

	db, ok := grid.nearestDB(models.LatLng{Lat: 41.39005, Lng: 2.17005})
	require.True(t, ok)
	assert.Equal(t, 72.5, db)

	// Beyond the match cutoff nothing is assigned
	_, ok = grid.nearestDB(models.LatLng{Lat: 41.40000, Lng: 2.19000})
	assert.False(t, ok)
}

func TestScoreStreetsNormalization(t *testing.T) {
	street := func(id int64, lat, lng float64) models.StreetFeature {
		return models.StreetFeature{
			ID:    id,
			Paths: [][]models.LatLng{{{Lat: lat, Lng: lng}, {Lat: lat + 0.0001, Lng: lng}}},
		}
	}
	streets := []models.StreetFeature{
		street(1, 41.3900, 2.1700), // trees nearby
		street(2, 41.3950, 2.1750), // bare
	}
	noise := []noiseSegment{
		{Centroid: models.LatLng{Lat: 41.3900, Lng: 2.1700}, DB: 77.5},
	}
	trees := []models.LatLng{
		{Lat: 41.39002, Lng: 2.17002},
		{Lat: 41.39005, Lng: 2.17005},
	}

	scored := scoreStreets(streets, noise, trees, nil, nil)
	require.Len(t, scored, 2)

	// 77.5 dB is the loud end of the scale
	assert.InDelta(t, 0.0, scored[0].Noise, 1e-9)
	// No noise data near street 2: default medium score
	assert.InDelta(t, defaultNoiseScore, scored[1].Noise, 1e-9)

	assert.Greater(t, scored[0].Green, scored[1].Green)
	assert.Equal(t, 1.0, scored[0].Clean)
	assert.Equal(t, 1.0, scored[1].Clean)
}
