package valhalla

import (
	"strings"

	"github.com/reroute/reroute-backend-go/internal/models"
)

const polylinePrecision = 1e6

// DecodePolyline decodes a Valhalla encoded shape string. Valhalla uses
// the Google polyline algorithm with six decimal digits of precision.
func DecodePolyline(encoded string) models.Polyline {
	var points models.Polyline
	var lat, lng int64
	index := 0

	for index < len(encoded) {
		dLat, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		index = next

		dLng, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		index = next

		lat += dLat
		lng += dLng
		points = append(points, models.LatLng{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}

	return points
}

// EncodePolyline encodes points as a Valhalla shape string
func EncodePolyline(points models.Polyline) string {
	var sb strings.Builder
	var prevLat, prevLng int64

	for _, p := range points {
		lat := int64(p.Lat * polylinePrecision)
		lng := int64(p.Lng * polylinePrecision)
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return sb.String()
}

func decodeValue(encoded string, index int) (value int64, next int, ok bool) {
	var result int64
	var shift uint

	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int64(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

func encodeValue(sb *strings.Builder, value int64) {
	v := value << 1
	if value < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
		v >>= 5
	}
	sb.WriteByte(byte(v + 63))
}
