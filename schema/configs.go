package schema

// ColorStop is a (value, color) pair on a threshold scale.
// Interior stops may omit Value; it is interpolated from their valued neighbors.
type ColorStop struct {
	Value *float64 `json:"value,omitempty" mapstructure:"value"`
	Color string   `json:"color" mapstructure:"color"`
}

// Stop is a shorthand for a ColorStop with a declared value.
func Stop(value float64, color string) ColorStop {
	return ColorStop{Value: &value, Color: color}
}

// BinRange is a half-open [Min, Max) range of a ranked bin.
type BinRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// BinRank groups one or more ranges that share an ordinal position and color.
type BinRank struct {
	Label  string     `json:"label,omitempty" mapstructure:"label"`
	Color  string     `json:"color" mapstructure:"color"`
	Ranges []BinRange `json:"ranges" mapstructure:"ranges"`
}

// BoundSpec is a parsed bound override.
// An unset spec follows the data; a fixed spec is used verbatim;
// an elastic spec ("~N") acts as a floor or ceiling that widens with the data.
type BoundSpec struct {
	Set     bool    `json:"set"`
	Elastic bool    `json:"elastic"`
	Value   float64 `json:"value"`
}

// AxisBounds holds the bound overrides of one axis.
type AxisBounds struct {
	Lower    BoundSpec `json:"lower"`
	Upper    BoundSpec `json:"upper"`
	MinRange float64   `json:"min_range"` // Minimum max-min span; 0 disables
}

// Box is a rectangular drawing area.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry holds sizing options for the geometry builders.
type Geometry struct {
	Box            Box           `json:"box"`
	Gap            float64       `json:"gap"`             // Spacing between bars, columns and levels
	EqualizerStep  float64       `json:"equalizer_step"`  // Value span of one equalizer level; 0 derives it
	RadialGap      float64       `json:"radial_gap"`      // Degrees left empty between wedges
	InnerRadius    float64       `json:"inner_radius"`    // Fraction (0..1) of the outer radius
	RadialVariant  RadialVariant `json:"radial_variant"`  // Radial barcode variant
	EqualizerSteps int           `json:"equalizer_steps"` // Number of levels used when EqualizerStep is 0
}

// GraphConfig is the full configuration of one graph engine instance.
type GraphConfig struct {
	Entity      string             `json:"entity"`
	Chart       ChartType          `json:"chart"`
	Window      WindowSpec         `json:"window"`
	Aggregate   AggregateFunc      `json:"aggregate"`
	Logarithmic bool               `json:"logarithmic"`
	Smoothing   bool               `json:"smoothing"`
	ValueFactor float64            `json:"value_factor"`
	StateMap    map[string]float64 `json:"state_map,omitempty"`
	UseBins     bool               `json:"use_bins"` // Map states to their ranked bin index
	ColorStops  []ColorStop        `json:"color_stops,omitempty"`
	ColorMode   ColorMode          `json:"color_mode"`
	Bins        []BinRank          `json:"bins,omitempty"`
	FixedColor  string             `json:"fixed_color,omitempty"` // Overrides computed colors
	Axis        Axis               `json:"axis"`
	Primary     AxisBounds         `json:"primary"`
	Secondary   AxisBounds         `json:"secondary"`
	Geometry    Geometry           `json:"geometry"`
}

// AxisBounds returns the bound overrides of the axis the series is drawn on.
func (c GraphConfig) AxisBounds() AxisBounds {
	if c.Axis == SecondaryAxis {
		return c.Secondary
	}
	return c.Primary
}
