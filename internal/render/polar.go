package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/star/passlog/internal/telemetry"
)

// Heat map grid resolution in degrees.
const gridStep = 5.0

var errNoInView = errors.New("no in-view rows")

// polar is a sky plot: north up, azimuth clockwise, zenith in the centre and
// the minimum elevation on the outer ring.
type polar struct {
	r      chart.Renderer
	cx, cy int
	radius float64
	minEl  float64
	text   chart.Style
}

func (r *Renderer) newPolar(rp chart.RendererProvider, title string) (*polar, error) {
	w, h := r.opts.Width, r.opts.Height
	radius := math.Min(float64(w-260), float64(h-140)) / 2
	if radius < 50 {
		return nil, fmt.Errorf("canvas %dx%d too small for a polar plot", w, h)
	}

	cr, err := rp(w, h)
	if err != nil {
		return nil, err
	}
	chart.Draw.Box(cr, chart.Box{Right: w, Bottom: h}, chart.Style{
		FillColor:   chart.ColorWhite,
		StrokeColor: chart.ColorWhite,
		StrokeWidth: 1,
	})

	p := &polar{
		r:      cr,
		cx:     60 + int(radius),
		cy:     80 + int(radius),
		radius: radius,
		minEl:  r.opts.MinElevation,
		text:   r.text,
	}
	ts := r.text
	ts.FontSize = 13
	p.label(title, w/2, 30, ts)
	return p, nil
}

// radial maps an elevation to a distance from the centre.
func (p *polar) radial(el float64) float64 {
	return (90 - el) / (90 - p.minEl) * p.radius
}

func (p *polar) point(az, el float64) (int, int) {
	rr := p.radial(el)
	a := az * math.Pi / 180
	return p.cx + int(math.Round(rr*math.Sin(a))), p.cy - int(math.Round(rr*math.Cos(a)))
}

// label draws text centred on (x, y).
func (p *polar) label(s string, x, y int, style chart.Style) {
	box := chart.Draw.MeasureText(p.r, s, style)
	chart.Draw.Text(p.r, s, x-box.Width()/2, y+box.Height()/2, style)
}

// frame draws elevation rings, azimuth spokes and compass labels over
// whatever has been drawn so far.
func (p *polar) frame() {
	grid := chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1}

	rings := []float64{p.minEl}
	for el := 15.0; el < 90; el += 15 {
		if el > p.minEl {
			rings = append(rings, el)
		}
	}
	for _, el := range rings {
		grid.WriteDrawingOptionsToRenderer(p.r)
		p.r.Circle(p.radial(el), p.cx, p.cy)
		p.r.Stroke()
		p.r.ResetStyle()

		x, y := p.point(22.5, el)
		p.label(strconv.FormatFloat(el, 'f', 0, 64)+"°", x, y, p.text)
	}

	for az := 0.0; az < 360; az += 30 {
		x, y := p.point(az, p.minEl)
		grid.WriteDrawingOptionsToRenderer(p.r)
		p.r.MoveTo(p.cx, p.cy)
		p.r.LineTo(x, y)
		p.r.Stroke()
		p.r.ResetStyle()
	}

	for i, name := range []string{"N", "E", "S", "W"} {
		a := float64(i) * math.Pi / 2
		d := p.radius + 18
		x := p.cx + int(math.Round(d*math.Sin(a)))
		y := p.cy - int(math.Round(d*math.Cos(a)))
		p.label(name, x, y, p.text)
	}
}

func (p *polar) dot(az, el, size float64, col drawing.Color) {
	x, y := p.point(az, el)
	style := chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1}
	style.WriteDrawingOptionsToRenderer(p.r)
	p.r.Circle(size, x, y)
	p.r.FillStroke()
	p.r.ResetStyle()
}

// sector fills the annular sector between two elevations and two azimuths.
func (p *polar) sector(el0, el1, az0, az1 float64, col drawing.Color) {
	const steps = 4
	style := chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1}
	style.WriteDrawingOptionsToRenderer(p.r)

	x, y := p.point(az0, el0)
	p.r.MoveTo(x, y)
	for i := 1; i <= steps; i++ {
		x, y = p.point(az0+(az1-az0)*float64(i)/steps, el0)
		p.r.LineTo(x, y)
	}
	for i := steps; i >= 0; i-- {
		x, y = p.point(az0+(az1-az0)*float64(i)/steps, el1)
		p.r.LineTo(x, y)
	}
	p.r.Close()
	p.r.FillStroke()
	p.r.ResetStyle()
}

// colorBar draws the RSSI scale to the right of the plot.
func (p *polar) colorBar(scale colorScale, title string) {
	const (
		width = 20
		steps = 64
	)
	left := p.cx + int(p.radius) + 60
	top := p.cy - int(p.radius)
	height := 2 * p.radius

	for i := 0; i < steps; i++ {
		v := scale.max - (scale.max-scale.min)*(float64(i)+0.5)/steps
		col := scale.color(v)
		y0 := top + int(height*float64(i)/steps)
		y1 := top + int(height*float64(i+1)/steps)
		chart.Draw.Box(p.r, chart.Box{Left: left, Top: y0, Right: left + width, Bottom: y1}, chart.Style{
			FillColor:   col,
			StrokeColor: col,
			StrokeWidth: 1,
		})
	}

	p.label(strconv.FormatFloat(scale.max, 'f', 1, 64), left+width/2, top-12, p.text)
	p.label(strconv.FormatFloat(scale.min, 'f', 1, 64), left+width/2, top+int(height)+12, p.text)
	p.label(title, left+width/2, top-32, p.text)
}

// colorScale maps RSSI onto a diverging blue-white-red ramp, clamped to
// [min, max].
type colorScale struct {
	min, max float64
}

var coolwarm = []drawing.Color{
	{R: 59, G: 76, B: 192, A: 255},
	{R: 221, G: 221, B: 221, A: 255},
	{R: 180, G: 4, B: 38, A: 255},
}

func (s colorScale) color(v float64) drawing.Color {
	t := (v - s.min) / (s.max - s.min)
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	seg := t * float64(len(coolwarm)-1)
	i := int(seg)
	if i >= len(coolwarm)-1 {
		return coolwarm[len(coolwarm)-1]
	}
	f := seg - float64(i)
	a, b := coolwarm[i], coolwarm[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func (r *Renderer) scale() colorScale {
	return colorScale{min: r.opts.RSSIMin, max: r.opts.RSSIMax}
}

type sample struct {
	el, az, rssi float64
}

func samples(in Input) []sample {
	out := make([]sample, 0, len(in.InView))
	for _, i := range in.InView {
		row := in.Rows[i]
		out = append(out, sample{el: row.Elevation, az: row.Azimuth, rssi: row.PeakRSSI})
	}
	return out
}

// nearest returns the RSSI of the sample closest to (el, az) in degree space,
// with azimuth distance taken around the circle.
func nearest(samples []sample, el, az float64) float64 {
	best, bestD := 0.0, math.Inf(1)
	for _, s := range samples {
		da := math.Abs(s.az - az)
		if da > 180 {
			da = 360 - da
		}
		de := s.el - el
		if d := de*de + da*da; d < bestD {
			best, bestD = s.rssi, d
		}
	}
	return best
}

// rssiHeatMap interpolates in-view RSSI onto a regular elevation/azimuth
// grid and fills each grid cell.
func (r *Renderer) rssiHeatMap(in Input, rp chart.RendererProvider, w io.Writer) error {
	pts := samples(in)
	if len(pts) == 0 {
		return errNoInView
	}
	p, err := r.newPolar(rp, "RSSI heat map")
	if err != nil {
		return err
	}
	scale := r.scale()

	for el := r.opts.MinElevation; el <= 90; el += gridStep {
		el0 := math.Max(r.opts.MinElevation, el-gridStep/2)
		el1 := math.Min(90, el+gridStep/2)
		for az := 0.0; az < 360; az += gridStep {
			col := scale.color(nearest(pts, el, az))
			p.sector(el0, el1, az-gridStep/2, az+gridStep/2, col)
		}
	}

	p.frame()
	p.colorBar(scale, "RSSI")
	return p.r.Save(w)
}

// rssiScatter plots every in-view row at its look angles, coloured by RSSI.
func (r *Renderer) rssiScatter(in Input, rp chart.RendererProvider, w io.Writer) error {
	pts := samples(in)
	if len(pts) == 0 {
		return errNoInView
	}
	p, err := r.newPolar(rp, "RSSI per satellite position")
	if err != nil {
		return err
	}
	scale := r.scale()

	p.frame()
	for _, s := range pts {
		p.dot(s.az, s.el, 3, scale.color(s.rssi))
	}
	p.colorBar(scale, "RSSI")
	return p.r.Save(w)
}

// macSuccess plots the in-view rows whose last MAC exchange succeeded.
func (r *Renderer) macSuccess(in Input, rp chart.RendererProvider, w io.Writer) error {
	var hits []sample
	for _, i := range in.InView {
		row := in.Rows[i]
		if row.LastMACResult == telemetry.MACSuccess {
			hits = append(hits, sample{el: row.Elevation, az: row.Azimuth})
		}
	}
	if len(hits) == 0 {
		return errors.New("no successful MAC exchange in view")
	}
	p, err := r.newPolar(rp, fmt.Sprintf("MAC success (%d)", len(hits)))
	if err != nil {
		return err
	}

	p.frame()
	for _, s := range hits {
		p.dot(s.az, s.el, 3, chart.ColorBlue)
	}
	return p.r.Save(w)
}
