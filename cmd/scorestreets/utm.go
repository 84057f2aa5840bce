package main

import "math"

// The noise dataset ships its geometry in ETRS89 / UTM zone 31N
// (EPSG:25831). The inverse transverse Mercator projection below turns
// those easting/northing pairs back into lat/lng.

const (
	utmScale        = 0.9996
	utmFalseEasting = 500000.0
	utmZone31Lng    = 3.0 // central meridian, degrees east

	ellipsoidA          = 6378137.0
	ellipsoidFlattening = 1.0 / 298.257222101
)

// utmToLatLng converts EPSG:25831 easting/northing to WGS84 degrees
func utmToLatLng(easting, northing float64) (lat, lng float64) {
	e2 := ellipsoidFlattening * (2 - ellipsoidFlattening)
	ep2 := e2 / (1 - e2)

	m := northing / utmScale
	mu := m / (ellipsoidA * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := ellipsoidA / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := ellipsoidA * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - utmFalseEasting) / (n1 * utmScale)

	phi := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lambda := (d - (1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi1

	lat = phi * 180 / math.Pi
	lng = utmZone31Lng + lambda*180/math.Pi
	return lat, lng
}
