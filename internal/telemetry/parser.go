package telemetry

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// DefaultMarker prefixes every housekeeping line in a terminal log.
const DefaultMarker = "HK"

// MaxLineBytes bounds how much of a single log line is kept. Longer lines
// are skipped; a marked one counts as malformed.
const MaxLineBytes = 64 * 1024

// Report counts what a parse pass saw.
type Report struct {
	Files     int
	Lines     int
	Marked    int // lines starting with the marker
	Rows      int
	Malformed int
}

// Add merges o into r.
func (r *Report) Add(o Report) {
	r.Files += o.Files
	r.Lines += o.Lines
	r.Marked += o.Marked
	r.Rows += o.Rows
	r.Malformed += o.Malformed
}

// Parse reads a terminal log from r and returns the housekeeping rows it holds.
// Lines not starting with marker are ignored. Marked lines that do not decode
// into a full record are skipped and counted as malformed.
func Parse(r io.Reader, marker string, logger *slog.Logger) ([]Row, Report, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	var (
		rows []Row
		rep  Report
	)

	br := bufio.NewReaderSize(r, 64*1024)
	prefix := []byte(marker)
	var buf []byte
	for {
		line, truncated, err := nextLine(br, buf, MaxLineBytes)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rep, fmt.Errorf("reading log: %w", err)
		}
		buf = line
		rep.Lines++
		if !bytes.HasPrefix(line, prefix) {
			continue
		}
		rep.Marked++
		if truncated {
			rep.Malformed++
			logger.Debug("skipping over-long housekeeping line", "line", rep.Lines)
			continue
		}

		text := strings.TrimRight(string(line), "\r\n ")
		row, err := parseRecord(stripMarker(text, marker))
		if err != nil {
			rep.Malformed++
			logger.Debug("skipping malformed housekeeping line", "line", rep.Lines, "error", err)
			continue
		}
		rows = append(rows, row)
	}

	rep.Rows = len(rows)
	return rows, rep, nil
}

// nextLine reads one line into buf. A line longer than limit is cut to limit
// bytes, reported as truncated, and the remainder is consumed. Returns io.EOF
// only when no bytes are left.
func nextLine(br *bufio.Reader, buf []byte, limit int) ([]byte, bool, error) {
	buf = buf[:0]
	truncated := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !truncated {
			if room := limit - len(buf); len(chunk) > room {
				buf = append(buf, chunk[:room]...)
				truncated = true
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch err {
		case nil:
			return buf, truncated, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(buf) == 0 && !truncated {
				return nil, false, io.EOF
			}
			return buf, truncated, nil
		default:
			return nil, false, err
		}
	}
}

// stripMarker removes the marker and the single separator that follows it.
func stripMarker(line, marker string) string {
	rest := line[len(marker):]
	if rest != "" {
		switch rest[0] {
		case ';', ',', ' ', ':', '\t':
			rest = rest[1:]
		}
	}
	return rest
}

// parseRecord decodes one semicolon-separated housekeeping record.
func parseRecord(s string) (Row, error) {
	fields := strings.Split(s, ";")
	if len(fields) != NumColumns {
		return Row{}, fmt.Errorf("got %d fields, want %d", len(fields), NumColumns)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	epoch, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid epoch %q: %w", fields[0], err)
	}

	ints := make([]int64, NumColumns)
	floats := make([]float64, NumColumns)
	for i := 1; i < NumColumns; i++ {
		switch i {
		case colPeakRSSI, colPeakRSSILastContact:
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return Row{}, fmt.Errorf("invalid %s %q: %w", Columns[i], fields[i], err)
			}
			floats[i] = v
		default:
			v, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return Row{}, fmt.Errorf("invalid %s %q: %w", Columns[i], fields[i], err)
			}
			ints[i] = v
		}
	}

	return Row{
		Time:                    time.Unix(epoch, 0).UTC(),
		SatSearchPhaseCnt:       ints[1],
		SatDetectOperationCnt:   ints[2],
		SignalDemodPhaseCnt:     ints[3],
		SignalDemodAttemptCnt:   ints[4],
		SignalDemodSuccessCnt:   ints[5],
		AckDemodAttemptCnt:      ints[6],
		AckDemodSuccessCnt:      ints[7],
		QueuedMsgCnt:            ints[8],
		DequeuedUnackMsgCnt:     ints[9],
		AckMsgCnt:               ints[10],
		SentFragmentCnt:         ints[11],
		AckFragmentCnt:          ints[12],
		CmdDemodAttemptCnt:      ints[13],
		CmdDemodSuccessCnt:      ints[14],
		MsgInQueue:              ints[15],
		AckMsgInQueue:           ints[16],
		LastReset:               ints[17],
		LastMACResult:           MACResult(ints[18]),
		PeakRSSI:                floats[colPeakRSSI],
		TimeSinceLastSatSearch:  ints[20],
		TimeStartLastContact:    ints[21],
		TimeEndLastContact:      ints[22],
		PeakRSSILastContact:     floats[colPeakRSSILastContact],
		TimePeakRSSILastContact: ints[24],
	}, nil
}

const (
	colPeakRSSI            = 19
	colPeakRSSILastContact = 23
)
