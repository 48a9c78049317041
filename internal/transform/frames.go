// Package transform holds the frame conversions needed to turn an SGP4 state
// into look angles from a ground station.
//
// TEME is rotated to ECEF by GMST alone. Polar motion and the equation of the
// equinoxes are ignored; the resulting error is tens of metres, far below
// what matters for elevation and azimuth of a LEO pass.
package transform

import (
	"math"
	"time"
)

// Vector is a Cartesian position.
type Vector struct {
	X, Y, Z float64
}

// Norm returns the vector length.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// TEMEToECEF rotates a TEME position (km) into ECEF (metres) at time t.
func TEMEToECEF(teme Vector, t time.Time) Vector {
	return RotateGMST(teme, GMST(t))
}

// RotateGMST applies R3(gmst) to a TEME position in km and returns metres.
func RotateGMST(teme Vector, gmst float64) Vector {
	c, s := math.Cos(gmst), math.Sin(gmst)
	return Vector{
		X: (teme.X*c + teme.Y*s) * 1000,
		Y: (-teme.X*s + teme.Y*c) * 1000,
		Z: teme.Z * 1000,
	}
}

// PlausibleOrbit reports whether a geocentric position in km is finite and
// between 6200 km and 50000 km from the centre of the Earth.
func PlausibleOrbit(km Vector) bool {
	for _, c := range []float64{km.X, km.Y, km.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	r := km.Norm()
	return r >= 6200 && r <= 50000
}
