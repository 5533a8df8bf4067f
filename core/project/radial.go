package project

import (
	"math"

	"github.com/huangsam/minigraph/internal/mathutil"
	"github.com/huangsam/minigraph/schema"
)

// RadialBarcode builds one wedge per value around the center of the box.
// Wedges split 360 degrees evenly, starting at 12 o'clock, with gap degrees between them.
// The barcode variant encodes values by color only; the sunburst variants also
// scale the radial extent of each wedge by the value.
func RadialBarcode(values []float64, scale Scale, g schema.Geometry, color ColorFunc) schema.RadialBarcodeGeometry {
	color = colorOrNone(color)
	box := scale.Box
	variant := g.RadialVariant
	if variant == "" {
		variant = schema.RadialBarcode
	}

	radius := math.Max(math.Min(box.Width, box.Height)/2, 0)
	inner := radius * mathutil.Clamp(g.InnerRadius, 0, 1)
	geo := schema.RadialBarcodeGeometry{
		CenterX: box.X + box.Width/2,
		CenterY: box.Y + box.Height/2,
		Radius:  radius,
		Variant: variant,
		Wedges:  make([]schema.Wedge, len(values)),
	}
	if len(values) == 0 {
		return geo
	}

	slice := 360 / float64(len(values))
	gap := mathutil.Clamp(g.RadialGap, 0, slice)
	for i, v := range values {
		w := schema.Wedge{
			StartAngle:  float64(i)*slice + gap/2,
			EndAngle:    float64(i+1)*slice - gap/2,
			InnerRadius: inner,
			OuterRadius: radius,
			Value:       v,
			Color:       color(v),
		}
		frac := scale.Fraction(v)
		switch variant {
		case schema.RadialSunburst:
			w.OuterRadius = inner + (radius-inner)*frac
		case schema.RadialSunburstCentered:
			mid := (inner + radius) / 2
			half := (radius - inner) / 2 * frac
			w.InnerRadius = mid - half
			w.OuterRadius = mid + half
		}
		geo.Wedges[i] = w
	}
	return geo
}
