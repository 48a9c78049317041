// Package render draws the diagnostic charts of a run with go-chart. Every
// chart is written twice into the output directory, as PNG and as SVG.
package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/star/passlog/internal/correlate"
	"github.com/star/passlog/internal/stats"
)

// Chart base names.
const (
	RSSIHeatMapPolar    = "rssi_heat_map_polar"
	RSSIHeatMapDiscrete = "rssi_heat_map_discrete"
	MACSuccessPolar     = "mac_success_polar"
	RSSIMACElevCounter  = "rssi_mac_elev_counter"
	FragmentHistogram   = "histogram_fragments_sent_in_view_container"
)

// Options sizes the charts and fixes the scales shared between them.
type Options struct {
	Dir           string
	Width, Height int

	MinElevation float64 // polar plots start here
	RSSIMin      float64 // colour scale lower bound
	RSSIMax      float64 // colour scale upper bound
}

// Input is everything the charts are drawn from.
type Input struct {
	Rows       []correlate.Row
	InView     []int     // indices into Rows with geometry and detectable RSSI
	Smoothed   []float64 // smoothed RSSI, parallel to Rows
	Satellites []string  // configured order, used for colours and legends
	Sent, Ack  []stats.Daily
	Summary    stats.Summary
}

// Renderer writes charts into a directory.
type Renderer struct {
	opts   Options
	text   chart.Style // font and colour for hand-drawn labels
	logger *slog.Logger
}

// New creates the output directory and loads the chart font.
func New(opts Options, logger *slog.Logger) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.RSSIMax <= opts.RSSIMin {
		return nil, fmt.Errorf("rssi scale [%g, %g] is empty", opts.RSSIMin, opts.RSSIMax)
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("loading chart font: %w", err)
	}
	return &Renderer{
		opts:   opts,
		text:   chart.Style{Font: font, FontSize: 10, FontColor: chart.ColorBlack},
		logger: logger.With("component", "render"),
	}, nil
}

// All draws every chart. A chart that cannot be drawn is skipped with a
// warning. Returns the number of charts written.
func (r *Renderer) All(in Input) int {
	charts := []struct {
		name string
		draw drawFunc
	}{
		{RSSIHeatMapPolar, r.rssiHeatMap},
		{RSSIHeatMapDiscrete, r.rssiScatter},
		{MACSuccessPolar, r.macSuccess},
		{RSSIMACElevCounter, r.timeline},
		{FragmentHistogram, r.histogram},
	}

	written := 0
	for _, c := range charts {
		if err := r.write(c.name, func(rp chart.RendererProvider, w io.Writer) error {
			return c.draw(in, rp, w)
		}); err != nil {
			r.logger.Warn("chart skipped", "chart", c.name, "error", err)
			continue
		}
		written++
		r.logger.Info("chart written", "chart", c.name)
	}
	return written
}

type drawFunc func(in Input, rp chart.RendererProvider, w io.Writer) error

// write renders a chart in both formats. Nothing is written unless both
// renders succeed.
func (r *Renderer) write(name string, draw func(rp chart.RendererProvider, w io.Writer) error) error {
	formats := []struct {
		ext string
		rp  chart.RendererProvider
	}{
		{".png", chart.PNG},
		{".svg", chart.SVG},
	}

	out := make([]bytes.Buffer, len(formats))
	for i, f := range formats {
		if err := draw(f.rp, &out[i]); err != nil {
			return fmt.Errorf("%s%s: %w", name, f.ext, err)
		}
	}
	for i, f := range formats {
		path := filepath.Join(r.opts.Dir, name+f.ext)
		if err := os.WriteFile(path, out[i].Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
