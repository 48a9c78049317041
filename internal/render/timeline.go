package render

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/star/passlog/internal/telemetry"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

func dots(col drawing.Color) chart.Style {
	return chart.Style{StrokeWidth: chart.Disabled, DotWidth: 2, DotColor: col}
}

// timeline stacks three panels sharing the time axis: smoothed RSSI with
// raw RSSI per MAC result, elevation per satellite, and the ack fragment
// counter. Panel heights are 3:1:1.
func (r *Renderer) timeline(in Input, rp chart.RendererProvider, w io.Writer) error {
	if len(in.Rows) < 2 || !in.Rows[0].Time.Before(in.Rows[len(in.Rows)-1].Time) {
		return errors.New("need at least two distinct timestamps")
	}
	if len(in.Smoothed) != len(in.Rows) {
		return errors.New("smoothed series does not match rows")
	}

	width, height := r.opts.Width, r.opts.Height
	h0 := height * 3 / 5
	h1 := height / 5
	h2 := height - h0 - h1

	base, err := rp(width, height)
	if err != nil {
		return err
	}

	panels := []struct {
		chart chart.Chart
		dy    int
	}{
		{r.rssiPanel(in, h0), 0},
		{r.elevationPanel(in, h1), h0},
		{r.ackPanel(in, h2), h0 + h1},
	}
	for _, p := range panels {
		if err := p.chart.Render(stacked(base, p.dy), io.Discard); err != nil {
			return err
		}
	}
	return base.Save(w)
}

func (r *Renderer) panel(in Input, title string, height int) chart.Chart {
	first, last := in.Rows[0].Time, in.Rows[len(in.Rows)-1].Time
	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 11},
		Width:      r.opts.Width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 10}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(first),
				Max: chart.TimeToFloat64(last),
			},
		},
	}
}

func (r *Renderer) rssiPanel(in Input, height int) chart.Chart {
	times := make([]time.Time, len(in.Rows))
	raw := make([]float64, len(in.Rows))
	for i, row := range in.Rows {
		times[i] = row.Time
		raw[i] = row.PeakRSSI
	}

	c := r.panel(in, "RSSI and last MAC result", height)
	c.YAxis = chart.YAxis{Name: "RSSI", Range: valueRange(in.Smoothed, raw)}
	c.Series = []chart.Series{chart.TimeSeries{
		Name:    "RSSI (smoothed)",
		Style:   chart.Style{StrokeColor: chart.ColorBlack, StrokeWidth: 1.5},
		XValues: times,
		YValues: in.Smoothed,
	}}

	for i, mac := range telemetry.MACResults() {
		var xs []time.Time
		var ys []float64
		for _, row := range in.Rows {
			if row.LastMACResult == mac {
				xs = append(xs, row.Time)
				ys = append(ys, row.PeakRSSI)
			}
		}
		if len(xs) == 0 {
			continue
		}
		c.Series = append(c.Series, chart.TimeSeries{
			Name:    mac.String(),
			Style:   dots(paletteColor(i)),
			XValues: xs,
			YValues: ys,
		})
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c
}

func (r *Renderer) elevationPanel(in Input, height int) chart.Chart {
	c := r.panel(in, "Elevation", height)
	c.YAxis = chart.YAxis{Name: "deg", Range: &chart.ContinuousRange{Min: 0, Max: 90}}

	for i, sat := range in.Satellites {
		var xs []time.Time
		var ys []float64
		for _, row := range in.Rows {
			if row.InView && row.Satellite == sat {
				xs = append(xs, row.Time)
				ys = append(ys, row.Elevation)
			}
		}
		if len(xs) == 0 {
			continue
		}
		c.Series = append(c.Series, chart.TimeSeries{
			Name:    sat,
			Style:   dots(paletteColor(i)),
			XValues: xs,
			YValues: ys,
		})
	}
	if len(c.Series) == 0 {
		first, last := in.Rows[0].Time, in.Rows[len(in.Rows)-1].Time
		c.Series = []chart.Series{chart.TimeSeries{
			Name:    "no pass",
			Style:   chart.Style{StrokeColor: chart.ColorLightGray, StrokeWidth: 1},
			XValues: []time.Time{first, last},
			YValues: []float64{0, 0},
		}}
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c
}

func (r *Renderer) ackPanel(in Input, height int) chart.Chart {
	times := make([]time.Time, len(in.Rows))
	acks := make([]float64, len(in.Rows))
	for i, row := range in.Rows {
		times[i] = row.Time
		acks[i] = float64(row.AckFragmentCnt)
	}

	c := r.panel(in, "ack_fragment_cnt", height)
	c.YAxis = chart.YAxis{Range: valueRange(acks)}
	c.Series = []chart.Series{chart.TimeSeries{
		Name:    "ack_fragment_cnt",
		Style:   chart.Style{StrokeColor: paletteColor(0), StrokeWidth: 1.5},
		XValues: times,
		YValues: acks,
	}}
	return c
}

// valueRange spans every finite value with a small margin. A flat series
// gets a unit margin so the axis is never empty.
func valueRange(series ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	switch {
	case lo > hi:
		return &chart.ContinuousRange{Min: 0, Max: 1}
	case lo == hi:
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
