// Package correlate tags housekeeping rows with the satellite in view of the
// station when they were logged.
package correlate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/star/passlog/internal/orbit"
	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/telemetry"
	"github.com/star/passlog/internal/transform"
)

// Row is a housekeeping row enriched with pass geometry. Elevation, Azimuth
// and Range are set only when InView is true.
type Row struct {
	telemetry.Row

	Satellite string
	Elevation float64 // degrees
	Azimuth   float64 // degrees, clockwise from north
	Range     float64 // km
	InView    bool
}

// Result is the output of Correlate.
type Result struct {
	Rows   []Row
	Passes map[string][]passes.Pass

	// Failed lists satellites skipped because their elements, passes or
	// track could not be computed; Failures holds the matching errors.
	Failed   []string
	Failures error

	Overlaps int // rows claimed by more than one satellite
	Dropped  int // duplicate timestamps removed
}

// ErrAllFailed is returned when no configured satellite could be processed.
var ErrAllFailed = errors.New("every satellite failed")

// Correlate removes duplicate timestamps from table, then marks each row
// logged strictly inside a pass of one of satellites as in view of that
// satellite and fills in its look angles.
//
// Satellites are processed in the given order. When passes of two satellites
// overlap, the one later in the list wins the shared rows. A satellite whose
// elements, passes or track fail is recorded in the result and claims no rows.
func Correlate(ctx context.Context, table *telemetry.Table, satellites []string, src orbit.Source, logger *slog.Logger) (*Result, error) {
	logger = logger.With("component", "correlate")

	res := &Result{
		Dropped: table.Dedupe(),
		Passes:  make(map[string][]passes.Pass, len(satellites)),
	}
	if res.Dropped > 0 {
		logger.Info("duplicate timestamps dropped", "count", res.Dropped)
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no rows to correlate")
	}

	res.Rows = make([]Row, table.Len())
	for i, r := range table.Rows {
		res.Rows[i] = Row{Row: r}
	}

	fail := func(sat string, err error) {
		res.Failed = append(res.Failed, sat)
		res.Failures = multierr.Append(res.Failures, fmt.Errorf("%s: %w", sat, err))
		logger.Warn("satellite skipped", "satellite", sat, "error", err)
	}

	start, end := table.First(), table.Last()
	type claim struct {
		sat    string
		idx    []int
		angles []transform.LookAngles
	}
	var claims []claim
	for _, sat := range satellites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eph, err := src.Ephemeris(ctx, sat)
		if err != nil {
			fail(sat, err)
			continue
		}
		ps, err := eph.Passes(start, end)
		if err != nil {
			fail(sat, err)
			continue
		}
		idx := inside(res.Rows, ps)
		angles, err := track(res.Rows, idx, eph)
		if err != nil {
			fail(sat, err)
			continue
		}
		res.Passes[sat] = ps
		claims = append(claims, claim{sat: sat, idx: idx, angles: angles})
		logger.Debug("rows claimed", "satellite", sat, "passes", len(ps), "rows", len(idx))
	}

	// Only satellites whose track succeeded reach this point, so a failing
	// satellite never displaces rows another one claimed.
	for _, c := range claims {
		for k, i := range c.idx {
			row := &res.Rows[i]
			if row.InView && row.Satellite != c.sat {
				res.Overlaps++
			}
			row.Satellite = c.sat
			row.InView = true
			row.Elevation = c.angles[k].Elevation
			row.Azimuth = c.angles[k].Azimuth
			row.Range = c.angles[k].RangeKm
		}
	}
	if res.Overlaps > 0 {
		logger.Warn("overlapping passes, later satellite kept", "rows", res.Overlaps)
	}

	if len(satellites) > 0 && len(res.Failed) == len(satellites) {
		return nil, fmt.Errorf("%w: %w", ErrAllFailed, res.Failures)
	}
	return res, nil
}

// inside returns the indices of rows logged strictly inside one of ps.
func inside(rows []Row, ps []passes.Pass) []int {
	var idx []int
	for i := range rows {
		for _, p := range ps {
			if p.Contains(rows[i].Time) {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// track returns look angles for the rows at idx.
func track(rows []Row, idx []int, eph orbit.Ephemeris) ([]transform.LookAngles, error) {
	if len(idx) == 0 {
		return nil, nil
	}
	times := make([]time.Time, len(idx))
	for k, i := range idx {
		times[k] = rows[i].Time
	}

	angles, err := eph.Track(times)
	if err != nil {
		return nil, err
	}
	if len(angles) != len(times) {
		return nil, fmt.Errorf("track returned %d angles for %d times", len(angles), len(times))
	}
	return angles, nil
}

// InViewCount returns how many rows are in view.
func (r *Result) InViewCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.InView {
			n++
		}
	}
	return n
}

// Errors returns the individual satellite failures.
func (r *Result) Errors() []error {
	return multierr.Errors(r.Failures)
}
