package telemetry

import (
	"sort"
	"time"
)

// Table is an ordered set of housekeeping rows indexed by timestamp.
// The index is not unique until Dedupe has been called.
type Table struct {
	Rows    []Row
	Sources []string // file each row came from, parallel to Rows
}

// Append adds rows read from source to the end of the table.
func (t *Table) Append(source string, rows []Row) {
	for _, r := range rows {
		t.Rows = append(t.Rows, r)
		t.Sources = append(t.Sources, source)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Times returns the row timestamps in table order.
func (t *Table) Times() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Time
	}
	return out
}

// Dedupe drops every row whose timestamp was already seen earlier in the
// table, keeping the first occurrence. Returns the number of rows dropped.
func (t *Table) Dedupe() int {
	seen := make(map[int64]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	keptSrc := t.Sources[:0]
	for i, r := range t.Rows {
		key := r.Time.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
		if i < len(t.Sources) {
			keptSrc = append(keptSrc, t.Sources[i])
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	t.Sources = keptSrc
	return dropped
}

// Window keeps only rows with start < Time < end. A zero bound is open.
// Returns the number of rows removed.
func (t *Table) Window(start, end time.Time) int {
	kept := t.Rows[:0]
	keptSrc := t.Sources[:0]
	for i, r := range t.Rows {
		if !start.IsZero() && !r.Time.After(start) {
			continue
		}
		if !end.IsZero() && !r.Time.Before(end) {
			continue
		}
		kept = append(kept, r)
		if i < len(t.Sources) {
			keptSrc = append(keptSrc, t.Sources[i])
		}
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	t.Sources = keptSrc
	return removed
}

// SortByTime orders rows by timestamp, keeping the relative order of equal
// timestamps.
func (t *Table) SortByTime() {
	idx := make([]int, len(t.Rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.Rows[idx[a]].Time.Before(t.Rows[idx[b]].Time)
	})

	rows := make([]Row, len(t.Rows))
	var srcs []string
	if len(t.Sources) == len(t.Rows) {
		srcs = make([]string, len(t.Rows))
	}
	for i, j := range idx {
		rows[i] = t.Rows[j]
		if srcs != nil {
			srcs[i] = t.Sources[j]
		}
	}
	t.Rows = rows
	if srcs != nil {
		t.Sources = srcs
	}
}

// First returns the earliest row timestamp, or the zero time.
func (t *Table) First() time.Time {
	var first time.Time
	for i, r := range t.Rows {
		if i == 0 || r.Time.Before(first) {
			first = r.Time
		}
	}
	return first
}

// Last returns the latest row timestamp, or the zero time.
func (t *Table) Last() time.Time {
	var last time.Time
	for i, r := range t.Rows {
		if i == 0 || r.Time.After(last) {
			last = r.Time
		}
	}
	return last
}

// Span returns the duration between the first and last row.
func (t *Table) Span() time.Duration {
	return t.Last().Sub(t.First())
}

// RowsBySource counts the rows contributed by each input file.
func (t *Table) RowsBySource() map[string]int {
	counts := make(map[string]int)
	for _, src := range t.Sources {
		counts[src]++
	}
	return counts
}
