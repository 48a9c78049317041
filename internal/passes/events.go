// Package passes finds satellite passes over a ground station.
//
// A pass is assembled from three horizon events: the satellite rising
// above the horizon (AOS), culminating (MAX) and setting below it again
// (LOS). Events are located on a coarse time grid and refined to one second.
package passes

import (
	"fmt"
	"sort"
	"time"

	"github.com/star/passlog/internal/transform"
)

// EventKind identifies a horizon event.
type EventKind int

const (
	Rise EventKind = iota
	Culminate
	Set
)

func (k EventKind) String() string {
	switch k {
	case Rise:
		return "rise"
	case Culminate:
		return "culminate"
	case Set:
		return "set"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one horizon event with the look angles at its time.
type Event struct {
	Kind   EventKind
	Time   time.Time
	Angles transform.LookAngles
}

// AnglesFunc returns the look angles to a satellite at t.
type AnglesFunc func(t time.Time) (transform.LookAngles, error)

const (
	coarseStep = 30 * time.Second
	fineStep   = time.Second
)

// FindEvents scans [start, end] and returns the rise, culmination and set
// events relative to horizon (degrees), in time order. A satellite already
// above the horizon at start yields no rise; one still above at end yields
// no set.
func FindEvents(fn AnglesFunc, start, end time.Time, horizon float64) ([]Event, error) {
	if !end.After(start) {
		return nil, nil
	}

	var grid []time.Time
	for t := start; t.Before(end); t = t.Add(coarseStep) {
		grid = append(grid, t)
	}
	grid = append(grid, end)

	el := make([]float64, len(grid))
	for i, t := range grid {
		la, err := fn(t)
		if err != nil {
			return nil, fmt.Errorf("look angles at %s: %w", t.Format(time.RFC3339), err)
		}
		el[i] = la.Elevation
	}

	var events []Event
	for i := 1; i < len(grid); i++ {
		switch {
		case el[i-1] < horizon && el[i] >= horizon:
			ev, err := crossing(fn, Rise, grid[i-1], grid[i], horizon)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		case el[i-1] >= horizon && el[i] < horizon:
			ev, err := crossing(fn, Set, grid[i-1], grid[i], horizon)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}

		if i+1 < len(grid) && el[i] >= horizon && el[i-1] < el[i] && el[i] >= el[i+1] {
			ev, err := culmination(fn, grid[i-1], grid[i+1])
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(a, b int) bool {
		if events[a].Time.Equal(events[b].Time) {
			return events[a].Kind < events[b].Kind
		}
		return events[a].Time.Before(events[b].Time)
	})
	return events, nil
}

// crossing bisects a horizon crossing between lo and hi to one second.
// A rise is reported at the first second above the horizon, a set at the
// last one.
func crossing(fn AnglesFunc, kind EventKind, lo, hi time.Time, horizon float64) (Event, error) {
	for hi.Sub(lo) > fineStep {
		mid := lo.Add(hi.Sub(lo) / 2).Truncate(fineStep)
		if !mid.After(lo) {
			mid = lo.Add(fineStep)
		}
		la, err := fn(mid)
		if err != nil {
			return Event{}, fmt.Errorf("look angles at %s: %w", mid.Format(time.RFC3339), err)
		}
		above := la.Elevation >= horizon
		if above == (kind == Rise) {
			hi = mid
		} else {
			lo = mid
		}
	}

	at := hi
	if kind == Set {
		at = lo
	}
	la, err := fn(at)
	if err != nil {
		return Event{}, fmt.Errorf("look angles at %s: %w", at.Format(time.RFC3339), err)
	}
	return Event{Kind: kind, Time: at, Angles: la}, nil
}

// culmination finds the elevation maximum in [lo, hi] by ternary search.
func culmination(fn AnglesFunc, lo, hi time.Time) (Event, error) {
	eval := func(t time.Time) (transform.LookAngles, error) {
		la, err := fn(t)
		if err != nil {
			return la, fmt.Errorf("look angles at %s: %w", t.Format(time.RFC3339), err)
		}
		return la, nil
	}

	for hi.Sub(lo) > 2*fineStep {
		third := (hi.Sub(lo) / 3).Truncate(fineStep)
		if third < fineStep {
			third = fineStep
		}
		m1, m2 := lo.Add(third), hi.Add(-third)
		a1, err := eval(m1)
		if err != nil {
			return Event{}, err
		}
		a2, err := eval(m2)
		if err != nil {
			return Event{}, err
		}
		if a1.Elevation < a2.Elevation {
			lo = m1
		} else {
			hi = m2
		}
	}

	best := Event{Kind: Culminate}
	for t := lo; !t.After(hi); t = t.Add(fineStep) {
		la, err := eval(t)
		if err != nil {
			return Event{}, err
		}
		if best.Time.IsZero() || la.Elevation > best.Angles.Elevation {
			best.Time, best.Angles = t, la
		}
	}
	return best, nil
}
