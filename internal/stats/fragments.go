package stats

import (
	"sort"
	"time"

	"github.com/star/passlog/internal/correlate"
	"github.com/star/passlog/internal/telemetry"
)

// Counter selects a cumulative fragment counter from a row.
type Counter struct {
	Name  string
	Value func(telemetry.Row) int64
}

var (
	Sent = Counter{Name: "sent", Value: func(r telemetry.Row) int64 { return r.SentFragmentCnt }}
	Ack  = Counter{Name: "ack", Value: func(r telemetry.Row) int64 { return r.AckFragmentCnt }}
)

// Daily is one UTC calendar day of a fragment counter.
type Daily struct {
	Date       time.Time // midnight UTC
	Raw        float64
	Correction float64
	Value      float64 // Raw - Correction
}

// InView returns the indices of rows inside a tracked pass where the
// satellite was at or above minElevation and the RSSI reached rssiThreshold.
// Rows outside every pass carry no elevation and are never in view, even with
// a minElevation of zero. The indices are in row order.
func InView(rows []correlate.Row, minElevation, rssiThreshold float64) []int {
	var idx []int
	for i, r := range rows {
		if r.InView && r.Elevation >= minElevation && r.PeakRSSI >= rssiThreshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// DailyFragments returns per-day counter increments over the in-view rows,
// corrected for increments that happened while no satellite was in view.
//
// The raw value sums forward differences of the counter across consecutive
// in-view rows. The correction holds the last in-view counter value across
// the out-of-view rows that follow it; growth of the counter above that held
// value is activity not attributable to a tracked pass and is subtracted.
// Rows are bucketed by their own UTC date. Only days with in-view rows are
// returned.
func DailyFragments(rows []correlate.Row, inView []int, c Counter) []Daily {
	if len(inView) == 0 {
		return nil
	}

	raw := make(map[time.Time]float64)
	var order []time.Time
	for k, i := range inView {
		day := utcDate(rows[i].Time)
		if _, ok := raw[day]; !ok {
			order = append(order, day)
			raw[day] = 0
		}
		if k > 0 {
			raw[day] += float64(c.Value(rows[i].Row) - c.Value(rows[inView[k-1]].Row))
		}
	}

	correction := outOfViewGrowth(rows, inView, c)

	sort.Slice(order, func(a, b int) bool { return order[a].Before(order[b]) })
	out := make([]Daily, len(order))
	for i, day := range order {
		out[i] = Daily{
			Date:       day,
			Raw:        raw[day],
			Correction: correction[day],
			Value:      raw[day] - correction[day],
		}
	}
	return out
}

// outOfViewGrowth sums, per UTC date, the positive steps of the counter's
// offset above the zero-order hold of its last in-view value. The hold is
// only defined between the first and last in-view rows.
func outOfViewGrowth(rows []correlate.Row, inView []int, c Counter) map[time.Time]float64 {
	first, last := inView[0], inView[len(inView)-1]

	var (
		held     int64
		next     int
		prev     int64
		havePrev bool
		out      = make(map[time.Time]float64)
	)
	for i := first; i <= last; i++ {
		if next < len(inView) && inView[next] == i {
			held = c.Value(rows[i].Row)
			next++
		}
		offset := c.Value(rows[i].Row) - held
		if offset <= 0 {
			continue
		}
		if havePrev {
			if d := offset - prev; d > 0 {
				out[utcDate(rows[i].Time)] += float64(d)
			}
		}
		prev, havePrev = offset, true
	}
	return out
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
