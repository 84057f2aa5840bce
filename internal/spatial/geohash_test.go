package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGeohashKnownValue(t *testing.T) {
	// Plaça de Catalunya
	hash := EncodeGeohash(41.3870, 2.1700, 7)
	assert.Equal(t, "sp3e3qk", hash)
}

func TestGeohashRoundtrip(t *testing.T) {
	lat, lng := 41.3870, 2.1700
	hash := EncodeGeohash(lat, lng, 8)

	gotLat, gotLng := DecodeGeohash(hash)
	assert.InDelta(t, lat, gotLat, 0.001)
	assert.InDelta(t, lng, gotLng, 0.001)
}

func TestGeohashNeighbors(t *testing.T) {
	hash := EncodeGeohash(41.3870, 2.1700, 6)
	neighbors := GeohashNeighbors(hash)
	require.Len(t, neighbors, 8)

	for _, n := range neighbors {
		assert.Len(t, n, 6)
		assert.NotEqual(t, hash, n)
	}
}

func TestGeohashPrecisionForRadius(t *testing.T) {
	// The chosen precision's cell edge must cover the radius, so a
	// center-plus-neighbors scan cannot miss a point inside it
	for _, radius := range []float64{50, 200, 1000, 5000} {
		precision := GeohashPrecisionForRadius(radius)
		require.GreaterOrEqual(t, precision, 1)
		assert.GreaterOrEqual(t, GeohashCellSize(precision), radius, "radius %v", radius)
	}
}
