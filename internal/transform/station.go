package transform

import "math"

// WGS-84.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
)

const deg = math.Pi / 180

// Station is a fixed ground terminal. Its ECEF position is computed once so
// it can be reused for every look-angle evaluation.
type Station struct {
	LatDeg, LonDeg, AltM float64

	sinLat, cosLat float64
	sinLon, cosLon float64
	ecef           Vector
}

// LookAngles is the apparent position of a satellite seen from a Station.
type LookAngles struct {
	Azimuth   float64 // degrees, 0 = north, clockwise, [0, 360)
	Elevation float64 // degrees above the local horizon
	RangeKm   float64
}

// NewStation places a station at geodetic latitude/longitude (degrees) and
// altitude (metres above the WGS-84 ellipsoid).
func NewStation(latDeg, lonDeg, altM float64) Station {
	s := Station{LatDeg: latDeg, LonDeg: lonDeg, AltM: altM}
	s.sinLat, s.cosLat = math.Sincos(latDeg * deg)
	s.sinLon, s.cosLon = math.Sincos(lonDeg * deg)

	n := wgs84A / math.Sqrt(1-wgs84E2*s.sinLat*s.sinLat)
	s.ecef = Vector{
		X: (n + altM) * s.cosLat * s.cosLon,
		Y: (n + altM) * s.cosLat * s.sinLon,
		Z: (n*(1-wgs84E2) + altM) * s.sinLat,
	}
	return s
}

// ECEF returns the station position in metres.
func (s Station) ECEF() Vector {
	return s.ecef
}

// LookAt returns azimuth, elevation and range to a target given in ECEF metres,
// using the south-east-zenith topocentric frame (Vallado §4.4).
func (s Station) LookAt(target Vector) LookAngles {
	dx := target.X - s.ecef.X
	dy := target.Y - s.ecef.Y
	dz := target.Z - s.ecef.Z

	south := s.sinLat*s.cosLon*dx + s.sinLat*s.sinLon*dy - s.cosLat*dz
	east := -s.sinLon*dx + s.cosLon*dy
	up := s.cosLat*s.cosLon*dx + s.cosLat*s.sinLon*dy + s.sinLat*dz

	rng := math.Sqrt(south*south + east*east + up*up)
	if rng == 0 {
		return LookAngles{Elevation: 90}
	}

	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}
	if az >= 2*math.Pi {
		az = 0
	}

	return LookAngles{
		Azimuth:   az / deg,
		Elevation: math.Asin(up/rng) / deg,
		RangeKm:   rng / 1000,
	}
}
