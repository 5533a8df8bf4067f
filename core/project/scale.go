// Package project converts aggregated values into chart geometry.
package project

import (
	"math"

	"github.com/huangsam/minigraph/internal/mathutil"
	"github.com/huangsam/minigraph/schema"
)

// ColorFunc returns the display color of a value.
type ColorFunc func(v float64) string

// Scale maps values onto the vertical axis of a drawing box.
// Higher values map to smaller y.
type Scale struct {
	Bounds      schema.Bounds
	Box         schema.Box
	Logarithmic bool
}

func (s Scale) transform(v float64) float64 {
	if s.Logarithmic {
		return mathutil.Log10Floor(v)
	}
	return v
}

// Ratio returns the transformed value span covered by one unit of height.
// It is 1 when the span or the height is degenerate.
func (s Scale) Ratio() float64 {
	r := (s.transform(s.Bounds.Max) - s.transform(s.Bounds.Min)) / s.Box.Height
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 1
	}
	return r
}

// Y returns the vertical position of v.
func (s Scale) Y(v float64) float64 {
	return s.Box.Y + s.Box.Height - (s.transform(v)-s.transform(s.Bounds.Min))/s.Ratio()
}

// Baseline returns the vertical position of zero, clamped into the bounds.
// Bars and areas fill between a value and this line.
func (s Scale) Baseline() float64 {
	return s.Y(mathutil.Clamp(0, s.Bounds.Min, s.Bounds.Max))
}

// Fraction returns how far up the box v sits, between 0 and 1.
func (s Scale) Fraction(v float64) float64 {
	if s.Box.Height <= 0 {
		return 0
	}
	return mathutil.Clamp((s.Box.Y+s.Box.Height-s.Y(v))/s.Box.Height, 0, 1)
}

// slots divides width into n equal slots separated by gap and returns the slot width.
func slots(box schema.Box, n int, gap float64) float64 {
	if n <= 0 {
		return 0
	}
	return max((box.Width-gap*float64(n-1))/float64(n), 0)
}

func noColor(float64) string { return "" }

func colorOrNone(color ColorFunc) ColorFunc {
	if color == nil {
		return noColor
	}
	return color
}
