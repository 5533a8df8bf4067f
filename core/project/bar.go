package project

import (
	"math"

	"github.com/huangsam/minigraph/schema"
)

// Bar builds one rectangle per value, anchored at the zero baseline.
func Bar(values []float64, scale Scale, gap float64, color ColorFunc) schema.BarGeometry {
	color = colorOrNone(color)
	width := slots(scale.Box, len(values), gap)
	baseline := scale.Baseline()

	bars := make([]schema.Rect, len(values))
	for i, v := range values {
		y := scale.Y(v)
		bars[i] = schema.Rect{
			X:      scale.Box.X + float64(i)*(width+gap),
			Y:      math.Min(y, baseline),
			Width:  width,
			Height: math.Abs(baseline - y),
			Value:  v,
			Color:  color(v),
		}
	}
	return schema.BarGeometry{Bars: bars}
}

// Barcode builds one full-height cell per value, colored by value.
func Barcode(values []float64, box schema.Box, gap float64, color ColorFunc) schema.BarcodeGeometry {
	color = colorOrNone(color)
	width := slots(box, len(values), gap)

	cells := make([]schema.Rect, len(values))
	for i, v := range values {
		cells[i] = schema.Rect{
			X:      box.X + float64(i)*(width+gap),
			Y:      box.Y,
			Width:  width,
			Height: box.Height,
			Value:  v,
			Color:  color(v),
		}
	}
	return schema.BarcodeGeometry{Cells: cells}
}
