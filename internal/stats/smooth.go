// Package stats derives signal and fragment statistics from correlated rows.
package stats

import "math"

// DefaultSmoothingWidth is the Hann window length applied to RSSI traces.
const DefaultSmoothingWidth = 8

// HanningWindow returns the n-point Hann window
// w[i] = 0.5 - 0.5*cos(2*pi*i/(n-1)), whose end points are zero.
func HanningWindow(n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Smooth convolves values with a normalised Hann window of the given width,
// keeping only fully overlapping positions, then repeats the edge values so
// the result has the same length as values. Inputs shorter than the window
// are returned unchanged as a copy.
func Smooth(values []float64, width int) []float64 {
	out := make([]float64, len(values))
	if width <= 1 || len(values) < width {
		copy(out, values)
		return out
	}

	w := HanningWindow(width)
	var sum float64
	for _, v := range w {
		sum += v
	}
	for i := range w {
		w[i] /= sum
	}

	before := width / 2
	valid := len(values) - width + 1
	for k := 0; k < valid; k++ {
		var acc float64
		for j, wj := range w {
			// The window is symmetric, so correlation equals convolution.
			acc += values[k+j] * wj
		}
		out[before+k] = acc
	}
	for i := 0; i < before; i++ {
		out[i] = out[before]
	}
	for i := before + valid; i < len(out); i++ {
		out[i] = out[before+valid-1]
	}
	return out
}
