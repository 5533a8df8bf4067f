package project

import (
	"github.com/huangsam/minigraph/internal/mathutil"
	"github.com/huangsam/minigraph/schema"
)

// Points projects values into an evenly spaced point stream across the box.
// A single value is padded with a duplicate so the stream spans the full width.
func Points(values []float64, scale Scale, smoothing bool) []schema.ProjectedCoordinate {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		values = []float64{values[0], values[0]}
	}

	baseline := scale.Baseline()
	step := scale.Box.Width / float64(len(values)-1)
	out := make([]schema.ProjectedCoordinate, len(values))
	for i, v := range values {
		out[i] = schema.ProjectedCoordinate{
			X:         scale.Box.X + step*float64(i),
			Y:         scale.Y(v),
			Value:     v,
			YBaseline: baseline,
		}
	}
	if smoothing {
		return Smooth(out)
	}
	return out
}

// Smooth replaces every vertex after the first with the midpoint of it and its predecessor.
// The midpoint carries the average of both values.
func Smooth(points []schema.ProjectedCoordinate) []schema.ProjectedCoordinate {
	out := make([]schema.ProjectedCoordinate, len(points))
	for i, p := range points {
		if i == 0 {
			out[i] = p
			continue
		}
		prev := points[i-1]
		out[i] = schema.ProjectedCoordinate{
			X:         mathutil.Lerp(prev.X, p.X, 0.5),
			Y:         mathutil.Lerp(prev.Y, p.Y, 0.5),
			Value:     mathutil.Lerp(prev.Value, p.Value, 0.5),
			YBaseline: p.YBaseline,
		}
	}
	return out
}

// Line builds the geometry of a line chart.
func Line(values []float64, scale Scale, smoothing bool) schema.LineGeometry {
	return schema.LineGeometry{Points: Points(values, scale, smoothing)}
}

// Area builds the geometry of an area chart.
// The polygon closes the point stream against the zero baseline.
func Area(values []float64, scale Scale, smoothing bool) schema.AreaGeometry {
	points := Points(values, scale, smoothing)
	if len(points) == 0 {
		return schema.AreaGeometry{}
	}

	baseline := scale.Baseline()
	first, last := points[0], points[len(points)-1]
	polygon := make([]schema.ProjectedCoordinate, 0, len(points)+2)
	polygon = append(polygon, points...)
	polygon = append(polygon,
		schema.ProjectedCoordinate{X: last.X, Y: baseline, Value: 0, YBaseline: baseline},
		schema.ProjectedCoordinate{X: first.X, Y: baseline, Value: 0, YBaseline: baseline},
	)
	return schema.AreaGeometry{Points: points, Polygon: polygon}
}
