package telemetry

import (
	"testing"
	"time"
)

func rowAt(sec int64) Row {
	return Row{Time: time.Unix(sec, 0).UTC()}
}

func TestTableDedupeKeepsFirst(t *testing.T) {
	table := &Table{}
	table.Append("a.csv", []Row{rowAt(100), rowAt(200)})
	dup := rowAt(200)
	dup.AckFragmentCnt = 7
	table.Append("b.csv", []Row{dup, rowAt(300)})

	if dropped := table.Dedupe(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if table.Len() != 3 {
		t.Fatalf("len = %d, want 3", table.Len())
	}
	if table.Rows[1].AckFragmentCnt != 0 || table.Sources[1] != "a.csv" {
		t.Errorf("duplicate resolved to %+v from %s, want first occurrence", table.Rows[1], table.Sources[1])
	}
	if table.Sources[2] != "b.csv" {
		t.Errorf("sources out of step: %v", table.Sources)
	}
}

func TestTableWindowIsOpenInterval(t *testing.T) {
	table := &Table{}
	table.Append("x", []Row{rowAt(100), rowAt(150), rowAt(200)})

	removed := table.Window(time.Unix(100, 0), time.Unix(200, 0))
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if table.Len() != 1 || table.Rows[0].Time.Unix() != 150 {
		t.Errorf("rows = %+v, want only t=150", table.Rows)
	}

	open := &Table{}
	open.Append("x", []Row{rowAt(1), rowAt(2)})
	if removed := open.Window(time.Time{}, time.Time{}); removed != 0 {
		t.Errorf("zero bounds removed %d rows", removed)
	}
}

func TestTableSortAndBounds(t *testing.T) {
	table := &Table{}
	table.Append("b", []Row{rowAt(300), rowAt(400)})
	table.Append("a", []Row{rowAt(100), rowAt(200)})

	if table.First().Unix() != 100 || table.Last().Unix() != 400 {
		t.Errorf("bounds = %v..%v", table.First(), table.Last())
	}
	if table.Span() != 300*time.Second {
		t.Errorf("span = %v", table.Span())
	}

	table.SortByTime()
	for i, want := range []int64{100, 200, 300, 400} {
		if got := table.Rows[i].Time.Unix(); got != want {
			t.Errorf("row %d = %d, want %d", i, got, want)
		}
	}
	if table.Sources[0] != "a" || table.Sources[3] != "b" {
		t.Errorf("sources not reordered: %v", table.Sources)
	}
	if counts := table.RowsBySource(); len(counts) != 2 || counts["a"] != 2 || counts["b"] != 2 {
		t.Errorf("RowsBySource = %v", counts)
	}

	empty := &Table{}
	if !empty.First().IsZero() || !empty.Last().IsZero() {
		t.Error("empty table bounds should be zero")
	}
}
