package colors

import (
	"github.com/huangsam/minigraph/internal/mathutil"
	"github.com/huangsam/minigraph/schema"
	"github.com/lucasb-eyer/go-colorful"
)

type entry struct {
	value float64
	color colorful.Color
}

// Palette looks up colors on a prepared threshold scale.
type Palette struct {
	mode    schema.ColorMode
	entries []entry // Descending by value
	fixed   string
}

// NewPalette parses the colors of descending thresholds through cache.
// A non-empty fixed color overrides every lookup.
func NewPalette(thresholds []Threshold, mode schema.ColorMode, fixed string, cache *Cache) (*Palette, error) {
	p := &Palette{mode: mode}
	if fixed != "" {
		c, err := cache.Parse(fixed)
		if err != nil {
			return nil, err
		}
		p.fixed = Format(c)
	}
	p.entries = make([]entry, len(thresholds))
	for i, t := range thresholds {
		c, err := cache.Parse(t.Color)
		if err != nil {
			return nil, err
		}
		p.entries[i] = entry{value: t.Value, color: c}
	}
	return p, nil
}

// Empty reports whether the palette can produce colors.
func (p *Palette) Empty() bool {
	return p.fixed == "" && len(p.entries) == 0
}

// Color returns the color of value, or "" for an empty palette.
// The matched stop is the highest one at or below value; values outside
// the scale take the color of the nearest end.
func (p *Palette) Color(value float64) string {
	if p.fixed != "" {
		return p.fixed
	}
	if len(p.entries) == 0 {
		return ""
	}
	return Format(p.at(value))
}

func (p *Palette) at(value float64) colorful.Color {
	for i, s := range p.entries {
		if s.value > value {
			continue
		}
		if i == 0 || p.mode == schema.SteppedColors {
			return s.color
		}
		n := p.entries[i-1]
		if n.value == s.value {
			return s.color
		}
		frac := (n.value - value) / (n.value - s.value)
		return Blend(s.color, n.color, 1-frac)
	}
	return p.entries[len(p.entries)-1].color
}

// Gradient maps the scale onto bounds as offsets from the top (max) of the drawing area.
// Stops outside bounds are clamped to the nearest edge with the color found at that edge.
func (p *Palette) Gradient(bounds schema.Bounds, logarithmic bool) []schema.GradientStop {
	if p.Empty() {
		return nil
	}
	transform := func(v float64) float64 { return v }
	if logarithmic {
		transform = mathutil.Log10Floor
	}
	tmin, tmax := transform(bounds.Min), transform(bounds.Max)
	if p.fixed != "" || tmax <= tmin {
		c := p.Color(bounds.Max)
		return []schema.GradientStop{{Offset: 0, Color: c}, {Offset: 100, Color: c}}
	}

	var out []schema.GradientStop
	above, below := false, false
	for _, s := range p.entries {
		switch {
		case s.value > bounds.Max:
			above = true
		case s.value < bounds.Min:
			below = true
		}
	}
	if above {
		out = append(out, schema.GradientStop{Offset: 0, Color: p.Color(bounds.Max)})
	}
	for _, s := range p.entries {
		if s.value > bounds.Max || s.value < bounds.Min {
			continue
		}
		offset := (tmax - transform(s.value)) / (tmax - tmin) * 100
		out = append(out, schema.GradientStop{
			Offset: mathutil.Clamp(offset, 0, 100),
			Color:  Format(s.color),
		})
	}
	if below {
		out = append(out, schema.GradientStop{Offset: 100, Color: p.Color(bounds.Min)})
	}
	return out
}
