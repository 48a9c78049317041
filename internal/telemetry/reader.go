package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// ReadGlob parses every file matching pattern, in lexical order, and
// concatenates their rows into one table. No match or an unreadable file is
// an error.
func ReadGlob(pattern, marker string, logger *slog.Logger) (*Table, Report, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, Report{}, fmt.Errorf("invalid log pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, Report{}, fmt.Errorf("no log files match %q", pattern)
	}
	sort.Strings(paths)

	table := &Table{}
	var total Report
	for _, path := range paths {
		rows, rep, err := ReadFile(path, marker, logger)
		if err != nil {
			return nil, total, err
		}
		table.Append(path, rows)
		total.Add(rep)

		logger.Info("log file parsed",
			"component", "ingest",
			"file", path,
			"rows", rep.Rows,
			"malformed", rep.Malformed,
		)
	}

	return table, total, nil
}

// ReadFile parses one log file. Files ending in .gz or .zst are decompressed
// on the fly.
func ReadFile(path, marker string, logger *slog.Logger) ([]Row, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(path, f)
	if err != nil {
		return nil, Report{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer closeFn()

	rows, rep, err := Parse(r, marker, logger.With("file", path))
	if err != nil {
		return nil, rep, fmt.Errorf("parsing %s: %w", path, err)
	}
	rep.Files = 1
	return rows, rep, nil
}

func decompress(path string, f io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip header: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return f, func() {}, nil
	}
}
