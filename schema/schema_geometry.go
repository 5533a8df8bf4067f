package schema

import (
	"slices"
	"time"
)

// AggregatedPoint is the reduced value of one bucket.
type AggregatedPoint struct {
	Index  int       `json:"index"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Value  float64   `json:"value"`
	Filled bool      `json:"filled"` // Value was carried forward from an earlier bucket
}

// ProjectedCoordinate is a point in drawing-area units.
// Value is the untransformed aggregated value; Y and YBaseline already encode the scale.
type ProjectedCoordinate struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Value     float64 `json:"value"`
	YBaseline float64 `json:"y_baseline"`
}

// Rect is a filled rectangle in drawing-area units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

// Level is one stacked sub-rectangle of an equalizer column or graded column.
type Level struct {
	Rect
	Rank   int  `json:"rank"`
	Filled bool `json:"filled"`
}

// Column is one bucket of an equalizer or graded chart.
type Column struct {
	Index  int     `json:"index"`
	Value  float64 `json:"value"`
	Levels []Level `json:"levels"`
}

// Wedge is one angular cell of a radial barcode.
type Wedge struct {
	StartAngle  float64 `json:"start_angle"` // Degrees, clockwise from 12 o'clock
	EndAngle    float64 `json:"end_angle"`
	InnerRadius float64 `json:"inner_radius"`
	OuterRadius float64 `json:"outer_radius"`
	Value       float64 `json:"value"`
	Color       string  `json:"color"`
}

// ChartGeometry is the geometry of exactly one chart type.
type ChartGeometry interface {
	Kind() ChartType
}

// LineGeometry is an ordered point stream.
type LineGeometry struct {
	Points []ProjectedCoordinate `json:"points"`
}

// AreaGeometry is a point stream closed against the zero baseline.
type AreaGeometry struct {
	Points  []ProjectedCoordinate `json:"points"`
	Polygon []ProjectedCoordinate `json:"polygon"`
}

// BarGeometry has one rectangle per bucket.
type BarGeometry struct {
	Bars []Rect `json:"bars"`
}

// EqualizerGeometry has one column of stacked levels per bucket.
type EqualizerGeometry struct {
	Step    float64  `json:"step"`
	Columns []Column `json:"columns"`
}

// GradedGeometry has one column of rank levels per bucket.
type GradedGeometry struct {
	Columns []Column `json:"columns"`
}

// BarcodeGeometry has one full-height column per bucket.
type BarcodeGeometry struct {
	Cells []Rect `json:"cells"`
}

// RadialBarcodeGeometry has one wedge per bucket around a center.
type RadialBarcodeGeometry struct {
	CenterX float64       `json:"center_x"`
	CenterY float64       `json:"center_y"`
	Radius  float64       `json:"radius"`
	Variant RadialVariant `json:"variant"`
	Wedges  []Wedge       `json:"wedges"`
}

// Kind implements ChartGeometry.
func (LineGeometry) Kind() ChartType { return LineChart }

// Kind implements ChartGeometry.
func (AreaGeometry) Kind() ChartType { return AreaChart }

// Kind implements ChartGeometry.
func (BarGeometry) Kind() ChartType { return BarChart }

// Kind implements ChartGeometry.
func (EqualizerGeometry) Kind() ChartType { return EqualizerChart }

// Kind implements ChartGeometry.
func (GradedGeometry) Kind() ChartType { return GradedChart }

// Kind implements ChartGeometry.
func (BarcodeGeometry) Kind() ChartType { return BarcodeChart }

// Kind implements ChartGeometry.
func (RadialBarcodeGeometry) Kind() ChartType { return RadialBarcodeChart }

// CloneGeometry returns a copy of g that shares no slices with it.
func CloneGeometry(g ChartGeometry) ChartGeometry {
	switch geo := g.(type) {
	case LineGeometry:
		geo.Points = slices.Clone(geo.Points)
		return geo
	case AreaGeometry:
		geo.Points = slices.Clone(geo.Points)
		geo.Polygon = slices.Clone(geo.Polygon)
		return geo
	case BarGeometry:
		geo.Bars = slices.Clone(geo.Bars)
		return geo
	case EqualizerGeometry:
		geo.Columns = cloneColumns(geo.Columns)
		return geo
	case GradedGeometry:
		geo.Columns = cloneColumns(geo.Columns)
		return geo
	case BarcodeGeometry:
		geo.Cells = slices.Clone(geo.Cells)
		return geo
	case RadialBarcodeGeometry:
		geo.Wedges = slices.Clone(geo.Wedges)
		return geo
	default:
		return g
	}
}

func cloneColumns(columns []Column) []Column {
	out := slices.Clone(columns)
	for i := range out {
		out[i].Levels = slices.Clone(out[i].Levels)
	}
	return out
}
