package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/star/passlog/internal/config"
	"github.com/star/passlog/internal/correlate"
	"github.com/star/passlog/internal/metrics"
	"github.com/star/passlog/internal/orbit"
	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/render"
	"github.com/star/passlog/internal/telemetry"
	"github.com/star/passlog/internal/transform"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

var base = time.Date(2022, 2, 4, 10, 0, 0, 0, time.UTC)

type fakeEphemeris struct {
	passes []passes.Pass
}

func (f fakeEphemeris) Passes(start, end time.Time) ([]passes.Pass, error) {
	return f.passes, nil
}

func (f fakeEphemeris) Track(times []time.Time) ([]transform.LookAngles, error) {
	out := make([]transform.LookAngles, len(times))
	for i, t := range times {
		m := t.Sub(base).Minutes()
		out[i] = transform.LookAngles{Elevation: 30, Azimuth: 6 * m, RangeKm: 900}
	}
	return out, nil
}

type fakeSource map[string]fakeEphemeris

func (f fakeSource) Ephemeris(_ context.Context, name string) (orbit.Ephemeris, error) {
	e, ok := f[name]
	if !ok {
		return nil, errors.New("no elements")
	}
	return e, nil
}

// One pass of SAT-A from 10:20 to 10:50; SAT-B has no elements.
var source = fakeSource{"SAT-A": {passes: []passes.Pass{{
	Satellite:    "SAT-A",
	AOS:          base.Add(20 * time.Minute),
	Max:          base.Add(35 * time.Minute),
	LOS:          base.Add(50 * time.Minute),
	MaxElevation: 30,
}}}}

// writeLog writes two hours of one-minute housekeeping rows. The sent
// counter grows every minute and the ack counter every other minute.
func writeLog(t *testing.T, dir string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("terminal boot\n")
	for i := 0; i < 120; i++ {
		fields := make([]string, telemetry.NumColumns)
		for c := range fields {
			fields[c] = "0"
		}
		fields[0] = strconv.FormatInt(base.Add(time.Duration(i)*time.Minute).Unix(), 10)
		fields[11] = strconv.Itoa(i)
		fields[12] = strconv.Itoa(i / 2)
		fields[18] = strconv.Itoa(int(telemetry.MACSuccess))
		fields[19] = "8"
		fields[23] = "8"
		b.WriteString("HK;" + strings.Join(fields, ";") + "\n")
	}
	if err := os.WriteFile(filepath.Join(dir, "terminal.csv"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	in := t.TempDir()
	writeLog(t, in)

	cfg := config.Default()
	cfg.Input.Folder = in
	cfg.Satellites = []string{"SAT-A", "SAT-B"}
	cfg.Output = config.OutputConfig{Dir: filepath.Join(t.TempDir(), "plots"), Width: 800, Height: 600}
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)

	rep, err := Run(context.Background(), cfg, source, testLogger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Rows != 120 || rep.Ingest.Malformed != 0 {
		t.Errorf("rows = %d malformed = %d, want 120/0", rep.Rows, rep.Ingest.Malformed)
	}
	// 10:21 through 10:49.
	if rep.InView != 29 {
		t.Errorf("in view = %d, want 29", rep.InView)
	}
	if len(rep.Failed) != 1 || rep.Failed[0] != "SAT-B" {
		t.Errorf("failed = %v, want [SAT-B]", rep.Failed)
	}
	if len(rep.Passes["SAT-A"]) != 1 {
		t.Errorf("SAT-A passes = %d, want 1", len(rep.Passes["SAT-A"]))
	}

	s := rep.Summary
	if s.Sent != 28 || s.Ack != 14 {
		t.Errorf("sent/ack = %v/%v, want 28/14", s.Sent, s.Ack)
	}
	if !s.Ratio.Defined || s.Ratio.String() != "2.0" {
		t.Errorf("ratio = %s, want 2.0", s.Ratio)
	}
	if s.Span() != 119*time.Minute {
		t.Errorf("span = %v, want 1h59m", s.Span())
	}

	if rep.Charts != 5 {
		t.Errorf("charts = %d, want 5", rep.Charts)
	}
	for _, name := range []string{render.RSSIHeatMapPolar, render.FragmentHistogram} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name+".svg")); err != nil {
			t.Errorf("%s.svg: %v", name, err)
		}
	}

	prom, err := os.ReadFile(filepath.Join(cfg.Output.Dir, metrics.TextfileName))
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	for _, want := range []string{
		"passlog_in_view_rows 29",
		`passlog_satellite_failed{satellite="SAT-B"} 1`,
		`passlog_passes{satellite="SAT-A"} 1`,
		"passlog_charts_written 5",
	} {
		if !strings.Contains(string(prom), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRunWindowExcludesEverything(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window = config.WindowConfig{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	_, err := Run(context.Background(), cfg, source, testLogger)
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
}

func TestRunAllSatellitesFailed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Satellites = []string{"SAT-B", "SAT-C"}

	_, err := Run(context.Background(), cfg, source, testLogger)
	if !errors.Is(err, correlate.ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestRunNoInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Folder = t.TempDir()

	if _, err := Run(context.Background(), cfg, source, testLogger); err == nil {
		t.Fatal("expected error without input files")
	}
}
