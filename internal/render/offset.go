package render

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// offsetRenderer shifts everything drawn through it down by dy pixels and
// ignores Save, so several charts can share one canvas.
type offsetRenderer struct {
	chart.Renderer
	dy int
}

func stacked(base chart.Renderer, dy int) chart.RendererProvider {
	return func(int, int) (chart.Renderer, error) {
		return &offsetRenderer{Renderer: base, dy: dy}, nil
	}
}

func (o *offsetRenderer) MoveTo(x, y int) { o.Renderer.MoveTo(x, y+o.dy) }

func (o *offsetRenderer) LineTo(x, y int) { o.Renderer.LineTo(x, y+o.dy) }

func (o *offsetRenderer) QuadCurveTo(cx, cy, x, y int) {
	o.Renderer.QuadCurveTo(cx, cy+o.dy, x, y+o.dy)
}

func (o *offsetRenderer) ArcTo(cx, cy int, rx, ry, startAngle, delta float64) {
	o.Renderer.ArcTo(cx, cy+o.dy, rx, ry, startAngle, delta)
}

func (o *offsetRenderer) Circle(radius float64, x, y int) {
	o.Renderer.Circle(radius, x, y+o.dy)
}

func (o *offsetRenderer) Text(body string, x, y int) { o.Renderer.Text(body, x, y+o.dy) }

func (o *offsetRenderer) Save(io.Writer) error { return nil }
