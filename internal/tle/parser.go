package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Parse reads TLE data from r. Both the 3-line (name + elements) and bare
// 2-line formats are accepted, mixed freely. Malformed entries are skipped
// with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]ElementSet, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []ElementSet
	for i := 0; i < len(lines); {
		var name, line1, line2 string
		switch {
		case i+1 < len(lines) && isLine(lines[i], '1') && isLine(lines[i+1], '2'):
			line1, line2 = lines[i], lines[i+1]
			i += 2
		case i+2 < len(lines) && isLine(lines[i+1], '1') && isLine(lines[i+2], '2'):
			name = strings.TrimSpace(strings.TrimPrefix(lines[i], "0 "))
			line1, line2 = lines[i+1], lines[i+2]
			i += 3
		default:
			logger.Warn("skipping malformed TLE entry", "line_index", i, "line", lines[i])
			i++
			continue
		}

		e, err := parseElements(name, line1, line2)
		if err != nil {
			logger.Warn("skipping TLE entry", "name", name, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Find returns the entry whose name matches name, ignoring case and
// surrounding space. When no name matches and data holds a single entry, that
// entry is returned; a per-satellite query answers with exactly one set.
func Find(entries []ElementSet, name string) (ElementSet, error) {
	want := strings.TrimSpace(name)
	for _, e := range entries {
		if strings.EqualFold(e.Name, want) {
			return e, nil
		}
	}
	if len(entries) == 1 {
		return entries[0], nil
	}
	return ElementSet{}, fmt.Errorf("no element set named %q among %d entries", name, len(entries))
}

func isLine(s string, n byte) bool {
	return len(s) >= 2 && s[0] == n && s[1] == ' '
}

func parseElements(name, line1, line2 string) (ElementSet, error) {
	if len(line1) < 32 {
		return ElementSet{}, fmt.Errorf("line1 too short (%d chars)", len(line1))
	}

	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return ElementSet{}, fmt.Errorf("invalid NORAD ID %q: %w", noradStr, err)
	}

	epochStr := strings.TrimSpace(line1[18:32])
	epoch, err := parseEpoch(epochStr)
	if err != nil {
		return ElementSet{}, err
	}

	return ElementSet{
		NORADID: noradID,
		Name:    name,
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch reads the YYDDD.DDDDDDDD epoch field. The integer thousands
// carry the two-digit year and the remainder is the fractional day of year,
// counted from 1.
func parseEpoch(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if len(field) < 5 {
		return time.Time{}, fmt.Errorf("epoch %q: too short", field)
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch %q: %w", field, err)
	}
	yy := int(v / 1000)
	day := v - float64(yy*1000)
	if yy > 99 || day < 1 || day >= 367 {
		return time.Time{}, fmt.Errorf("epoch %q: out of range", field)
	}
	// Day zero of January is the last day of the previous year.
	start := time.Date(fullYear(yy), time.January, 0, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(day * float64(24*time.Hour))).Round(time.Microsecond), nil
}

// fullYear applies the TLE year pivot: 57-99 are the 1900s, the rest 2000s.
func fullYear(yy int) int {
	if yy >= 57 {
		return 1900 + yy
	}
	return 2000 + yy
}
