package tle

import (
	"strings"
	"testing"
	"time"
)

func TestParseMixedFormats(t *testing.T) {
	data := strings.Join([]string{
		"ASTROCAST-0101",
		"1 99901U 21001A   22035.50000000  .00001000  00000-0  50000-4 0  9990",
		"2 99901  97.5000 120.0000 0010000  90.0000 270.0000 15.10000000    01",
		issLine1,
		issLine2,
		"garbage",
		"0 ISS (ZARYA)",
		issLine1,
		issLine2,
	}, "\n")

	entries, err := Parse(strings.NewReader(data), testLogger)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].Name != "ASTROCAST-0101" || entries[0].NORADID != 99901 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	wantEpoch := time.Date(2022, 2, 4, 12, 0, 0, 0, time.UTC)
	if !entries[0].Epoch.Equal(wantEpoch) {
		t.Errorf("epoch = %v, want %v", entries[0].Epoch, wantEpoch)
	}
	if entries[1].Name != "" || entries[1].NORADID != 25544 {
		t.Errorf("bare entry = %+v", entries[1])
	}
	if entries[2].Name != "ISS (ZARYA)" {
		t.Errorf("name with 0 prefix = %q", entries[2].Name)
	}
}

func TestParseEpochCentury(t *testing.T) {
	tests := []struct {
		in   string
		year int
	}{
		{"57001.00000000", 1957},
		{"99365.00000000", 1999},
		{"00001.00000000", 2000},
		{"25045.18032407", 2025},
	}
	for _, tt := range tests {
		got, err := parseEpoch(tt.in)
		if err != nil {
			t.Fatalf("parseEpoch(%q): %v", tt.in, err)
		}
		if got.Year() != tt.year {
			t.Errorf("parseEpoch(%q) year = %d, want %d", tt.in, got.Year(), tt.year)
		}
	}
	for _, bad := range []string{"2x", "25000.5", "25400.0", "-1001.0", "ab123.4"} {
		if _, err := parseEpoch(bad); err == nil {
			t.Errorf("parseEpoch(%q): expected error", bad)
		}
	}

	got, err := parseEpoch("24060.75000000")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, time.February, 29, 18, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseEpoch = %v, want %v", got, want)
	}
}

func TestFind(t *testing.T) {
	entries := []ElementSet{
		{Name: "ASTROCAST-0101", NORADID: 1},
		{Name: "ASTROCAST-0102", NORADID: 2},
	}

	e, err := Find(entries, " astrocast-0102 ")
	if err != nil || e.NORADID != 2 {
		t.Errorf("Find case-insensitive = %+v, %v", e, err)
	}
	if _, err := Find(entries, "ASTROCAST-0201"); err == nil {
		t.Error("expected error for unknown name among several entries")
	}

	single := []ElementSet{{NORADID: 25544}}
	if e, err := Find(single, "ISS"); err != nil || e.NORADID != 25544 {
		t.Errorf("single-entry fallback = %+v, %v", e, err)
	}
	if _, err := Find(nil, "ISS"); err == nil {
		t.Error("expected error for empty data")
	}
}
