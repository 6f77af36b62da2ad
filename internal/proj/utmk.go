// Package proj converts between WGS84 geographic coordinates and the UTM-K
// plane (EPSG:5179, GRS80), the meter-based system all distances in the
// pipeline are computed in.
package proj

import "math"

// GRS80 ellipsoid and EPSG:5179 projection parameters.
const (
	a  = 6378137.0
	f  = 1.0 / 298.257222101
	k0 = 0.9996

	lat0 = 38.0 * math.Pi / 180
	lon0 = 127.5 * math.Pi / 180

	falseEasting  = 1000000.0
	falseNorthing = 2000000.0
)

var (
	e2  = f * (2 - f)      // first eccentricity squared
	ep2 = e2 / (1 - e2)    // second eccentricity squared
	m0  = meridianArc(lat0)
)

// meridianArc returns the ellipsoidal meridian arc length from the equator.
func meridianArc(phi float64) float64 {
	return a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))
}

// ToUTMK projects a WGS84 lon/lat (degrees) onto the UTM-K plane in meters.
func ToUTMK(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	sinPhi, cosPhi := math.Sincos(phi)
	tanPhi := sinPhi / cosPhi

	n := a / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	A := (lam - lon0) * cosPhi

	m := meridianArc(phi)

	x = falseEasting + k0*n*(A+
		(1-t+c)*A*A*A/6+
		(5-18*t+t*t+72*c-58*ep2)*A*A*A*A*A/120)
	y = falseNorthing + k0*(m-m0+n*tanPhi*(A*A/2+
		(5-t+9*c+4*c*c)*A*A*A*A/24+
		(61-58*t+t*t+600*c-330*ep2)*A*A*A*A*A*A/720))
	return x, y
}

// FromUTMK inverts ToUTMK, returning WGS84 lon/lat in degrees.
func FromUTMK(x, y float64) (lon, lat float64) {
	m := m0 + (y-falseNorthing)/k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (x - falseEasting) / (n1 * k0)

	phi := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d*d*d*d*d*d/720)
	lam := lon0 + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d*d*d*d*d/120)/cosPhi1

	return lam * 180 / math.Pi, phi * 180 / math.Pi
}
