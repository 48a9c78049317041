// Package orbit answers the two geometric questions the correlator asks of a
// satellite: when is it in view of the station, and where is it at a given
// instant.
package orbit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/propagation"
	"github.com/star/passlog/internal/tle"
	"github.com/star/passlog/internal/transform"
)

// Source resolves satellite names to ephemerides.
type Source interface {
	Ephemeris(ctx context.Context, name string) (Ephemeris, error)
}

// Ephemeris is one satellite's geometry as seen from a fixed station.
type Ephemeris interface {
	// Passes returns the complete passes overlapping [start, end].
	Passes(start, end time.Time) ([]passes.Pass, error)
	// Track returns look angles for each time, in order.
	Track(times []time.Time) ([]transform.LookAngles, error)
}

// ElementLoader returns the element set for a satellite name.
type ElementLoader interface {
	Load(ctx context.Context, name string) (tle.ElementSet, error)
}

// SearchPadding widens every pass search on both sides so passes already in
// progress at the window edges are still seen whole.
const SearchPadding = 10 * time.Minute

// staleAfter is the element-set age past which propagation accuracy degrades
// enough to warn about.
const staleAfter = 14 * 24 * time.Hour

// Oracle is the TLE/SGP4-backed Source.
type Oracle struct {
	loader       ElementLoader
	station      transform.Station
	minElevation float64
	logger       *slog.Logger
}

// NewOracle creates an Oracle for a station. Passes peaking below
// minElevation degrees are not reported.
func NewOracle(loader ElementLoader, station transform.Station, minElevation float64, logger *slog.Logger) *Oracle {
	return &Oracle{
		loader:       loader,
		station:      station,
		minElevation: minElevation,
		logger:       logger.With("component", "orbit"),
	}
}

// Ephemeris loads name's elements and prepares SGP4 for it.
func (o *Oracle) Ephemeris(ctx context.Context, name string) (Ephemeris, error) {
	set, err := o.loader.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading elements for %s: %w", name, err)
	}
	prop, err := propagation.NewSGP4Propagator(set.Line1, set.Line2, set.NORADID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &ephemeris{
		name:   name,
		set:    set,
		prop:   prop,
		oracle: o,
	}, nil
}

type ephemeris struct {
	name   string
	set    tle.ElementSet
	prop   *propagation.SGP4Propagator
	oracle *Oracle
}

func (e *ephemeris) Passes(start, end time.Time) ([]passes.Pass, error) {
	if age := e.set.Age(start); age > staleAfter || age < -staleAfter {
		e.oracle.logger.Warn("element set epoch far from search window",
			"satellite", e.name,
			"epoch", e.set.Epoch,
			"window_start", start,
		)
	}

	found, err := passes.Predict(e.prop, e.oracle.station, e.name,
		start.Add(-SearchPadding), end.Add(SearchPadding),
		e.oracle.minElevation, e.oracle.logger)
	if err != nil {
		return nil, fmt.Errorf("finding passes of %s: %w", e.name, err)
	}
	e.oracle.logger.Info("passes found", "satellite", e.name, "norad_id", e.prop.NORADID(), "passes", len(found))
	return found, nil
}

func (e *ephemeris) Track(times []time.Time) ([]transform.LookAngles, error) {
	out := make([]transform.LookAngles, len(times))
	for i, t := range times {
		la, err := e.prop.LookAngles(e.oracle.station, t)
		if err != nil {
			return nil, fmt.Errorf("tracking %s: %w", e.name, err)
		}
		out[i] = la
	}
	return out, nil
}
