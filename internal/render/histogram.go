package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/star/passlog/internal/stats"
)

// histogram draws corrected sent and ack fragments side by side for each
// UTC day, titled with the run totals.
func (r *Renderer) histogram(in Input, rp chart.RendererProvider, w io.Writer) error {
	sent := byDate(in.Sent)
	ack := byDate(in.Ack)

	var days []time.Time
	for d := range sent {
		days = append(days, d)
	}
	for d := range ack {
		if _, ok := sent[d]; !ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return errors.New("no daily fragment counts")
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	sentStyle := chart.Style{FillColor: paletteColor(0), StrokeColor: paletteColor(0), StrokeWidth: 1}
	ackStyle := chart.Style{FillColor: paletteColor(1), StrokeColor: paletteColor(1), StrokeWidth: 1}

	var bars []chart.Value
	lo, hi := 0.0, 0.0
	for _, d := range days {
		s, a := sent[d], ack[d]
		date := d.Format("2006-01-02")
		bars = append(bars,
			chart.Value{Label: fmt.Sprintf("%s sent %.0f", date, s), Value: s, Style: sentStyle},
			chart.Value{Label: fmt.Sprintf("%s ack %.0f", date, a), Value: a, Style: ackStyle},
		)
		lo = math.Min(lo, math.Min(s, a))
		hi = math.Max(hi, math.Max(s, a))
	}
	if hi == lo {
		hi = lo + 1
	}

	barWidth := (r.opts.Width - 200) / (2 * len(bars))
	barWidth = max(10, min(barWidth, 120))

	sum := in.Summary
	bc := chart.BarChart{
		Title:      histogramTitle(sum),
		TitleStyle: chart.Style{FontSize: 11},
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   barWidth,
		YAxis: chart.YAxis{
			Name:  "fragments",
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(rp, w)
}

func histogramTitle(s stats.Summary) string {
	return fmt.Sprintf("Sent fragments %.0f - ACK fragments %.0f - Ratio: %s | Observation window: %s - %s (%.1fH)",
		s.Sent, s.Ack, s.Ratio,
		s.Start.UTC().Format("2006-01-02 15:04:05"),
		s.End.UTC().Format("2006-01-02 15:04:05"),
		s.Span().Hours(),
	)
}

func byDate(days []stats.Daily) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(days))
	for _, d := range days {
		out[d.Date] += d.Value
	}
	return out
}
