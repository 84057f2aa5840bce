package spatial

// Base32 encoding for geohash
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes latitude and longitude into a geohash string
// precision: number of characters in the geohash (1-12)
func EncodeGeohash(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	latRange := []float64{-90.0, 90.0}
	lngRange := []float64{-180.0, 180.0}

	geohash := make([]byte, 0, precision)
	bits := 0
	bit := 0
	ch := 0

	for len(geohash) < precision {
		if bit%2 == 0 {
			// Longitude
			mid := (lngRange[0] + lngRange[1]) / 2
			if lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			// Latitude
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		bits++
		if bits == 5 {
			geohash = append(geohash, base32[ch])
			bits = 0
			ch = 0
		}
		bit++
	}

	return string(geohash)
}

// geohashRanges walks the geohash bits and returns the cell's
// latitude and longitude ranges
func geohashRanges(geohash string) (latRange, lngRange [2]float64) {
	latRange = [2]float64{-90.0, 90.0}
	lngRange = [2]float64{-180.0, 180.0}

	isLng := true
	for i := 0; i < len(geohash); i++ {
		idx := indexOfBase32(geohash[i])
		if idx == -1 {
			continue
		}

		for mask := 16; mask > 0; mask >>= 1 {
			if isLng {
				mid := (lngRange[0] + lngRange[1]) / 2
				if idx&mask != 0 {
					lngRange[0] = mid
				} else {
					lngRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if idx&mask != 0 {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			isLng = !isLng
		}
	}

	return latRange, lngRange
}

// DecodeGeohash decodes a geohash string into latitude and longitude
// Returns center point of the geohash cell
func DecodeGeohash(geohash string) (lat, lng float64) {
	latRange, lngRange := geohashRanges(geohash)
	lat = (latRange[0] + latRange[1]) / 2
	lng = (lngRange[0] + lngRange[1]) / 2
	return
}

// GeohashNeighbors returns the 8 neighboring geohash cells
func GeohashNeighbors(geohash string) []string {
	lat, lng := DecodeGeohash(geohash)
	precision := len(geohash)

	latRange, lngRange := geohashRanges(geohash)
	latDelta := latRange[1] - latRange[0]
	lngDelta := lngRange[1] - lngRange[0]

	neighbors := make([]string, 0, 8)
	for dLat := -1; dLat <= 1; dLat++ {
		for dLng := -1; dLng <= 1; dLng++ {
			if dLat == 0 && dLng == 0 {
				continue
			}
			newLat := lat + float64(dLat)*latDelta
			newLng := lng + float64(dLng)*lngDelta

			// Handle wrapping
			if newLat > 90 {
				newLat = 90
			}
			if newLat < -90 {
				newLat = -90
			}
			if newLng > 180 {
				newLng -= 360
			}
			if newLng < -180 {
				newLng += 360
			}

			neighbors = append(neighbors, EncodeGeohash(newLat, newLng, precision))
		}
	}

	return neighbors
}

// GeohashCellSize returns the approximate cell size in meters for a given precision
func GeohashCellSize(precision int) float64 {
	// Approximate cell sizes at equator
	sizes := map[int]float64{
		1:  5000000,
		2:  625000,
		3:  123000,
		4:  19500,
		5:  3900,
		6:  610,
		7:  120,
		8:  19,
		9:  3.7,
		10: 0.6,
		11: 0.12,
		12: 0.019,
	}

	if size, ok := sizes[precision]; ok {
		return size
	}
	return 0
}

// GeohashPrecisionForRadius returns the coarsest precision whose 3x3
// neighbor block still covers a radius search of the given size. The
// cell edge must be at least the radius so that center + neighbors
// always contain every point within it.
func GeohashPrecisionForRadius(radiusMeters float64) int {
	for precision := 12; precision >= 1; precision-- {
		if GeohashCellSize(precision) >= radiusMeters {
			return precision
		}
	}
	return 1
}

// indexOfBase32 finds the index of a character in the base32 alphabet
func indexOfBase32(ch byte) int {
	for i := 0; i < len(base32); i++ {
		if base32[i] == ch {
			return i
		}
	}
	return -1
}
