package correlate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/star/passlog/internal/orbit"
	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/telemetry"
	"github.com/star/passlog/internal/transform"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

var base = time.Date(2022, 2, 4, 10, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

// fakeEphemeris reports fixed passes and an elevation equal to the number of
// seconds since base.
type fakeEphemeris struct {
	passes   []passes.Pass
	passErr  error
	trackErr error
	tracked  []time.Time
}

func (f *fakeEphemeris) Passes(start, end time.Time) ([]passes.Pass, error) {
	return f.passes, f.passErr
}

func (f *fakeEphemeris) Track(times []time.Time) ([]transform.LookAngles, error) {
	f.tracked = append(f.tracked, times...)
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	out := make([]transform.LookAngles, len(times))
	for i, t := range times {
		s := t.Sub(base).Seconds()
		out[i] = transform.LookAngles{Elevation: s, Azimuth: 2 * s, RangeKm: 1000 + s}
	}
	return out, nil
}

type fakeSource map[string]*fakeEphemeris

func (f fakeSource) Ephemeris(_ context.Context, name string) (orbit.Ephemeris, error) {
	e, ok := f[name]
	if !ok {
		return nil, errors.New("no elements")
	}
	return e, nil
}

func pass(sat string, aos, los int) passes.Pass {
	return passes.Pass{Satellite: sat, AOS: at(aos), Max: at((aos + los) / 2), LOS: at(los), MaxElevation: 45}
}

func tableAt(secs ...int) *telemetry.Table {
	t := &telemetry.Table{}
	for i, s := range secs {
		t.Append("log.csv", []telemetry.Row{{Time: at(s), SentFragmentCnt: int64(i)}})
	}
	return t
}

func TestCorrelateTagsStrictlyInsidePass(t *testing.T) {
	// T1=10, T2=20, T3=30; pass (T1-1, T2+1).
	src := fakeSource{"SAT-A": {passes: []passes.Pass{pass("SAT-A", 9, 21)}}}

	res, err := Correlate(context.Background(), tableAt(10, 20, 30), []string{"SAT-A"}, src, testLogger)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	want := []struct {
		inView bool
		sat    string
	}{{true, "SAT-A"}, {true, "SAT-A"}, {false, ""}}
	for i, w := range want {
		r := res.Rows[i]
		if r.InView != w.inView || r.Satellite != w.sat {
			t.Errorf("row %d: in_view=%v sat=%q, want %v %q", i, r.InView, r.Satellite, w.inView, w.sat)
		}
	}
	if res.Rows[0].Elevation != 10 || res.Rows[1].Azimuth != 40 || res.Rows[1].Range != 1020 {
		t.Errorf("geometry not populated: %+v / %+v", res.Rows[0], res.Rows[1])
	}
	if r := res.Rows[2]; r.Elevation != 0 || r.Azimuth != 0 || r.Range != 0 {
		t.Errorf("out-of-view row has geometry: %+v", r)
	}
	if got := res.InViewCount(); got != 2 {
		t.Errorf("InViewCount = %d, want 2", got)
	}
}

func TestCorrelateBoundsAreExclusive(t *testing.T) {
	src := fakeSource{"SAT-A": {passes: []passes.Pass{pass("SAT-A", 10, 20)}}}
	res, err := Correlate(context.Background(), tableAt(10, 15, 20), []string{"SAT-A"}, src, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows[0].InView || !res.Rows[1].InView || res.Rows[2].InView {
		t.Errorf("in-view flags = %v %v %v, want false true false", res.Rows[0].InView, res.Rows[1].InView, res.Rows[2].InView)
	}
}

func TestCorrelateDropsDuplicateTimestamps(t *testing.T) {
	table := &telemetry.Table{}
	table.Append("a.csv", []telemetry.Row{{Time: at(10), SentFragmentCnt: 1}, {Time: at(20), SentFragmentCnt: 2}})
	table.Append("b.csv", []telemetry.Row{{Time: at(20), SentFragmentCnt: 99}, {Time: at(30), SentFragmentCnt: 3}})

	eph := &fakeEphemeris{passes: []passes.Pass{pass("SAT-A", 0, 40)}}
	res, err := Correlate(context.Background(), table, []string{"SAT-A"}, fakeSource{"SAT-A": eph}, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dropped != 1 || len(res.Rows) != 3 {
		t.Fatalf("dropped=%d rows=%d, want 1/3", res.Dropped, len(res.Rows))
	}
	if res.Rows[1].SentFragmentCnt != 2 {
		t.Errorf("kept row sent=%d, want first occurrence", res.Rows[1].SentFragmentCnt)
	}
	if len(eph.tracked) != 3 {
		t.Errorf("tracked %d timestamps, want 3 unique", len(eph.tracked))
	}
}

func TestCorrelateOverlapLastSatelliteWins(t *testing.T) {
	src := fakeSource{
		"SAT-A": {passes: []passes.Pass{pass("SAT-A", 0, 25)}},
		"SAT-B": {passes: []passes.Pass{pass("SAT-B", 15, 40)}},
	}
	res, err := Correlate(context.Background(), tableAt(10, 20, 30), []string{"SAT-A", "SAT-B"}, src, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"SAT-A", "SAT-B", "SAT-B"}
	for i, w := range want {
		if res.Rows[i].Satellite != w || !res.Rows[i].InView {
			t.Errorf("row %d satellite = %q, want %q", i, res.Rows[i].Satellite, w)
		}
	}
	if res.Overlaps != 1 {
		t.Errorf("overlaps = %d, want 1", res.Overlaps)
	}
	if len(src["SAT-A"].tracked) != 2 || len(src["SAT-B"].tracked) != 2 {
		t.Errorf("tracked A=%d B=%d, want 2/2", len(src["SAT-A"].tracked), len(src["SAT-B"].tracked))
	}
	if res.Rows[1].Elevation != 20 {
		t.Errorf("shared row elevation = %v, want SAT-B geometry", res.Rows[1].Elevation)
	}
}

func TestCorrelateFailedTrackKeepsEarlierClaim(t *testing.T) {
	src := fakeSource{
		"SAT-A": {passes: []passes.Pass{pass("SAT-A", 5, 25)}},
		"SAT-B": {passes: []passes.Pass{pass("SAT-B", 15, 35)}, trackErr: errors.New("track failed")},
	}
	res, err := Correlate(context.Background(), tableAt(10, 20, 30), []string{"SAT-A", "SAT-B"}, src, testLogger)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	if len(res.Failed) != 1 || res.Failed[0] != "SAT-B" {
		t.Errorf("failed = %v, want [SAT-B]", res.Failed)
	}
	for i, sec := range []float64{10, 20} {
		r := res.Rows[i]
		if !r.InView || r.Satellite != "SAT-A" || r.Elevation != sec {
			t.Errorf("row %d = %q in view %v el %v, want SAT-A el %v", i, r.Satellite, r.InView, r.Elevation, sec)
		}
	}
	if res.Rows[2].InView || res.Rows[2].Satellite != "" {
		t.Errorf("row only SAT-B claimed should be out of view: %+v", res.Rows[2])
	}
	if res.Overlaps != 0 {
		t.Errorf("overlaps = %d, want 0", res.Overlaps)
	}
	if _, ok := res.Passes["SAT-B"]; ok {
		t.Error("failed satellite should not report passes")
	}
}

func TestCorrelateSatelliteFailureIsIsolated(t *testing.T) {
	src := fakeSource{
		"SAT-A": {passErr: errors.New("propagation diverged")},
		"SAT-C": {passes: []passes.Pass{pass("SAT-C", 5, 15)}, trackErr: errors.New("track failed")},
		"SAT-D": {passes: []passes.Pass{pass("SAT-D", 25, 35)}},
	}
	res, err := Correlate(context.Background(), tableAt(10, 20, 30), []string{"SAT-A", "SAT-B", "SAT-C", "SAT-D"}, src, testLogger)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	if len(res.Failed) != 3 || len(res.Errors()) != 3 {
		t.Errorf("failed = %v (%d errors), want SAT-A, SAT-B, SAT-C", res.Failed, len(res.Errors()))
	}
	if res.Rows[0].InView {
		t.Error("row of failed track must revert to not in view")
	}
	if !res.Rows[2].InView || res.Rows[2].Satellite != "SAT-D" {
		t.Errorf("healthy satellite not tagged: %+v", res.Rows[2])
	}
}

func TestCorrelateAllFailed(t *testing.T) {
	_, err := Correlate(context.Background(), tableAt(10), []string{"X", "Y"}, fakeSource{}, testLogger)
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}

func TestCorrelateEmptyTable(t *testing.T) {
	if _, err := Correlate(context.Background(), &telemetry.Table{}, []string{"SAT-A"}, fakeSource{}, testLogger); err == nil {
		t.Error("expected error for empty table")
	}
}
