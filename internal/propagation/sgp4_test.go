package propagation

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/star/passlog/internal/transform"
)

// Real ISS elements, epoch 2025-02-14.
const (
	issLine1 = "1 25544U 98067A   25045.18032407  .00016717  00000+0  30099-3 0  9993"
	issLine2 = "2 25544  51.6412 193.5765 0003457 126.2851 233.8519 15.49874301495058"
)

func TestPropagateISS(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("NewSGP4Propagator: %v", err)
	}
	if prop.NORADID() != 25544 {
		t.Errorf("NORADID = %d", prop.NORADID())
	}

	target := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	teme, err := prop.Propagate(target)
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	// ~6371 + 420 km.
	mag := teme.Norm()
	if mag < 6650 || mag > 6900 {
		t.Errorf("TEME magnitude = %.1f km, expected ISS orbit", mag)
	}

	ecef, err := prop.ECEF(target)
	if err != nil {
		t.Fatalf("ECEF: %v", err)
	}
	if !transform.PlausibleOrbit(teme) {
		t.Errorf("TEME position implausible: %+v", teme)
	}
	if d := math.Abs(ecef.Norm()/1000 - mag); d > 0.01 {
		t.Errorf("ECEF and TEME magnitudes differ by %.3f km", d)
	}
}

func TestLookAnglesRange(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2, 25544)
	if err != nil {
		t.Fatalf("NewSGP4Propagator: %v", err)
	}
	st := transform.NewStation(40.7128, -74.006, 10)

	start := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 96; i++ {
		la, err := prop.LookAngles(st, start.Add(time.Duration(i)*15*time.Minute))
		if err != nil {
			t.Fatalf("LookAngles: %v", err)
		}
		if la.Elevation < -90 || la.Elevation > 90 {
			t.Errorf("elevation %.2f out of range", la.Elevation)
		}
		if la.Azimuth < 0 || la.Azimuth >= 360 {
			t.Errorf("azimuth %.2f out of range", la.Azimuth)
		}
		// Earth diameter bounds the slant range to a LEO satellite.
		if la.RangeKm < 350 || la.RangeKm > 14000 {
			t.Errorf("range %.1f km out of range", la.RangeKm)
		}
	}
}

func TestNewSGP4PropagatorRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		l1, l2 string
		want   string
	}{
		{"garbage", "invalid line 1", "invalid line 2", "length"},
		{"swapped", issLine2, issLine1, "must start"},
		{"catalog mismatch", issLine1, "2 25545" + issLine2[7:], "catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSGP4Propagator(tt.l1, tt.l2, 25544)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
