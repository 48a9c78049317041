package passes

import (
	"log/slog"
	"time"

	"github.com/star/passlog/internal/propagation"
	"github.com/star/passlog/internal/transform"
)

// Pass is one complete visibility window of a satellite.
type Pass struct {
	Satellite string

	AOS          time.Time
	AOSElevation float64
	AOSAzimuth   float64

	Max          time.Time
	MaxElevation float64
	MaxAzimuth   float64

	LOS          time.Time
	LOSElevation float64
	LOSAzimuth   float64

	Duration time.Duration
}

// Contains reports whether t lies strictly inside the pass.
func (p Pass) Contains(t time.Time) bool {
	return t.After(p.AOS) && t.Before(p.LOS)
}

// Assemble walks events in order and returns the passes built from complete
// rise, culmination and set triples whose peak reaches minElevation. A set
// seen without its rise and culmination is skipped with a warning; a rise
// still open at the end of events is dropped.
func Assemble(sat string, events []Event, minElevation float64, logger *slog.Logger) []Pass {
	var (
		out       []Pass
		aos, peak *Event
	)
	for i := range events {
		ev := &events[i]
		switch ev.Kind {
		case Rise:
			aos, peak = ev, nil
		case Culminate:
			if peak == nil || ev.Angles.Elevation > peak.Angles.Elevation {
				peak = ev
			}
		case Set:
			switch {
			case aos == nil || peak == nil:
				logger.Warn("AOS not in time range, skipping",
					"component", "passes",
					"satellite", sat,
					"los", ev.Time,
				)
			case !aos.Time.Before(peak.Time) || !peak.Time.Before(ev.Time):
				logger.Warn("pass events out of order, skipping",
					"component", "passes",
					"satellite", sat,
					"aos", aos.Time,
					"max", peak.Time,
					"los", ev.Time,
				)
			case peak.Angles.Elevation >= minElevation:
				out = append(out, Pass{
					Satellite:    sat,
					AOS:          aos.Time,
					AOSElevation: aos.Angles.Elevation,
					AOSAzimuth:   aos.Angles.Azimuth,
					Max:          peak.Time,
					MaxElevation: peak.Angles.Elevation,
					MaxAzimuth:   peak.Angles.Azimuth,
					LOS:          ev.Time,
					LOSElevation: ev.Angles.Elevation,
					LOSAzimuth:   ev.Angles.Azimuth,
					Duration:     ev.Time.Sub(aos.Time),
				})
			}
			aos, peak = nil, nil
		}
	}
	if aos != nil {
		logger.Debug("pass still open at end of window, dropped",
			"component", "passes",
			"satellite", sat,
			"aos", aos.Time,
		)
	}
	return out
}

// Predict returns the passes of prop over st between start and end.
func Predict(prop *propagation.SGP4Propagator, st transform.Station, sat string, start, end time.Time, minElevation float64, logger *slog.Logger) ([]Pass, error) {
	fn := func(t time.Time) (transform.LookAngles, error) {
		return prop.LookAngles(st, t)
	}
	events, err := FindEvents(fn, start, end, 0)
	if err != nil {
		return nil, err
	}
	return Assemble(sat, events, minElevation, logger), nil
}
