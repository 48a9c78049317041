package stats

import (
	"strconv"
	"time"
)

// Ratio is sent/ack fragments; it is undefined when nothing was acknowledged.
type Ratio struct {
	Value   float64
	Defined bool
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

// Summary totals the corrected daily fragment counts of a run.
type Summary struct {
	Sent  float64
	Ack   float64
	Ratio Ratio

	Start, End time.Time
}

// Span returns the observation window length.
func (s Summary) Span() time.Duration {
	return s.End.Sub(s.Start)
}

// Summarize totals the corrected sent and ack series.
func Summarize(sent, ack []Daily) Summary {
	var s Summary
	for _, d := range sent {
		s.Sent += d.Value
	}
	for _, d := range ack {
		s.Ack += d.Value
	}
	if s.Ack != 0 {
		s.Ratio = Ratio{Value: s.Sent / s.Ack, Defined: true}
	}
	return s
}
