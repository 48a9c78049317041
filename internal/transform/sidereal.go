package transform

import (
	"math"
	"time"
)

const (
	jdJ2000      = 2451545.0 // Julian Date of J2000.0
	jdUnixEpoch  = 2440587.5 // Julian Date of 1970-01-01T00:00:00Z
	secondsInDay = 86400.0
)

// JulianDate returns the Julian Date of t.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	return jdUnixEpoch + float64(t.Unix())/secondsInDay + float64(t.Nanosecond())/1e9/secondsInDay
}

// GMST returns Greenwich Mean Sidereal Time in radians, IAU-82 model
// (Vallado eq. 3-47), normalised to [0, 2π).
func GMST(t time.Time) float64 {
	tu := (JulianDate(t) - jdJ2000) / 36525.0

	sec := 67310.54841 +
		(876600.0*3600.0+8640184.812866)*tu +
		0.093104*tu*tu -
		6.2e-6*tu*tu*tu

	sec = math.Mod(sec, secondsInDay)
	if sec < 0 {
		sec += secondsInDay
	}
	return sec / secondsInDay * 2 * math.Pi
}
