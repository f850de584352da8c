// Package plot draws function graphs for graph based cards.
//
// A [Graph] is a square canvas showing the window [-XMax, XMax] x
// [YMin, YMax] with axes through the origin, integer ticks, and a thick
// curve through the sampled points.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gogpu/gg"
)

// DefaultSize is the canvas edge in pixels.
const DefaultSize = 1200

// Graph describes the visible window of a plot.
type Graph struct {
	XMax float64 // x runs over [-XMax, XMax]
	YMin float64
	YMax float64
	Size int // canvas edge in pixels, DefaultSize when zero
}

// Linspace returns n evenly spaced values over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	xs := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	return xs
}

// Sample evaluates f at every x.
func Sample(f func(float64) float64, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

func (g Graph) validate(xs, ys []float64) error {
	if g.XMax <= 0 || g.YMax <= g.YMin {
		return fmt.Errorf("invalid plot window x<=%g y=[%g,%g]", g.XMax, g.YMin, g.YMax)
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("got %d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("need at least 2 points, got %d", len(xs))
	}
	return nil
}

// Encode draws the curve through (xs[i], ys[i]) and writes it as PNG.
// Non-finite points break the curve.
func (g Graph) Encode(w io.Writer, xs, ys []float64) error {
	if err := g.validate(xs, ys); err != nil {
		return err
	}
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}

	dc := gg.NewContext(size, size)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	s := float64(size)
	px := func(x float64) float64 { return (x + g.XMax) / (2 * g.XMax) * s }
	py := func(y float64) float64 { return (g.YMax - y) / (g.YMax - g.YMin) * s }
	unit := s / 200

	// axes through the origin, clamped to the window edge
	ox := px(clamp(0, -g.XMax, g.XMax))
	oy := py(clamp(0, g.YMin, g.YMax))
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(unit)
	dc.DrawLine(0, oy, s, oy)
	dc.DrawLine(ox, 0, ox, s)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing axes: %w", err)
	}

	tick := 2 * unit
	dc.SetLineWidth(unit / 2)
	for i := math.Ceil(-g.XMax); i <= g.XMax; i++ {
		if i == 0 || i == -g.XMax || i == g.XMax {
			continue
		}
		dc.DrawLine(px(i), oy-tick, px(i), oy+tick)
	}
	for i := math.Ceil(g.YMin); i <= g.YMax; i++ {
		if i == 0 || i == g.YMin || i == g.YMax {
			continue
		}
		dc.DrawLine(ox-tick, py(i), ox+tick, py(i))
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing ticks: %w", err)
	}

	dc.SetRGB(0, 0, 1)
	dc.SetLineWidth(2 * unit)
	pen := false
	for i := range xs {
		x, y := xs[i], ys[i]
		if !finite(x) || !finite(y) {
			pen = false
			continue
		}
		// keep far out of range points near the canvas so the stroke stays sane
		y = clamp(y, g.YMin-(g.YMax-g.YMin), g.YMax+(g.YMax-g.YMin))
		if pen {
			dc.LineTo(px(x), py(y))
		} else {
			dc.MoveTo(px(x), py(y))
			pen = true
		}
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing curve: %w", err)
	}

	return dc.EncodePNG(w)
}

// PNG returns the encoded graph.
func (g Graph) PNG(xs, ys []float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Encode(&buf, xs, ys); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes the graph to path.
func (g Graph) WriteFile(path string, xs, ys []float64) error {
	data, err := g.PNG(xs, ys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
