// Package propagation wraps the go-satellite SGP4 implementation.
package propagation

import (
	"fmt"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/star/passlog/internal/transform"
)

// go-satellite's Propagate takes the Satellite by value, so SGP4 error codes
// raised during propagation never reach the caller. Failures are detected by
// checking the output for NaN/Inf and implausible radii instead.

// SGP4Propagator propagates a single element set.
type SGP4Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Propagator initialises SGP4 from the two element lines.
//
// The lines are checked before they reach go-satellite, which calls log.Fatal
// on input it cannot parse.
func NewSGP4Propagator(line1, line2 string, noradID int) (*SGP4Propagator, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if err := ValidateLines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid element set for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, noradID: noradID}, nil
}

// ValidateLines checks the fixed-width shape of a TLE line pair.
func ValidateLines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("catalog numbers differ: %q vs %q", line1[2:7], line2[2:7])
	}
	return nil
}

// NORADID returns the catalog number the propagator was built for.
func (p *SGP4Propagator) NORADID() int {
	return p.noradID
}

// Propagate returns the TEME position in km at t. Sub-second precision is
// truncated.
func (p *SGP4Propagator) Propagate(t time.Time) (transform.Vector, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	teme := transform.Vector{X: pos.X, Y: pos.Y, Z: pos.Z}
	if !transform.PlausibleOrbit(teme) {
		return transform.Vector{}, fmt.Errorf("sgp4 propagation failed for NORAD %d at %s: implausible position %+v km", p.noradID, t.Format(time.RFC3339), teme)
	}
	return teme, nil
}

// ECEF returns the ECEF position in metres at t.
func (p *SGP4Propagator) ECEF(t time.Time) (transform.Vector, error) {
	teme, err := p.Propagate(t)
	if err != nil {
		return transform.Vector{}, err
	}
	return transform.TEMEToECEF(teme, t), nil
}

// LookAngles returns the satellite's azimuth, elevation and range as seen
// from st at t.
func (p *SGP4Propagator) LookAngles(st transform.Station, t time.Time) (transform.LookAngles, error) {
	ecef, err := p.ECEF(t)
	if err != nil {
		return transform.LookAngles{}, err
	}
	return st.LookAt(ecef), nil
}
