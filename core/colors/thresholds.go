package colors

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/minigraph/schema"
)

// steppedEpsilon separates the two halves of a duplicated stop in stepped mode.
const steppedEpsilon = 0.0001

// Threshold is a color stop with a resolved value.
type Threshold struct {
	Value float64
	Color string
}

// Interpolate resolves the value of every stop. A stop without a value is placed
// linearly by index between its nearest valued neighbors.
func Interpolate(stops []schema.ColorStop) ([]Threshold, error) {
	if len(stops) == 0 {
		return nil, nil
	}
	if stops[0].Value == nil || stops[len(stops)-1].Value == nil {
		return nil, ErrMissingStopValue
	}

	out := make([]Threshold, len(stops))
	left := 0
	for i, stop := range stops {
		out[i].Color = stop.Color
		if stop.Value != nil {
			out[i].Value = *stop.Value
			left = i
			continue
		}
		right := i + 1
		for stops[right].Value == nil {
			right++
		}
		lv, rv := *stops[left].Value, *stops[right].Value
		out[i].Value = lv + (rv-lv)*float64(i-left)/float64(right-left)
	}
	return out, nil
}

// Sort orders thresholds by descending value. Equal values keep their input order.
func Sort(thresholds []Threshold) []Threshold {
	out := slices.Clone(thresholds)
	slices.SortStableFunc(out, func(a, b Threshold) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// Expand returns the rendering form of descending thresholds for mode.
// Smooth keeps them; stepped follows each stop with a copy just below it
// carrying the next lower stop's color, which produces hard edges.
func Expand(sorted []Threshold, mode schema.ColorMode) []Threshold {
	if mode != schema.SteppedColors {
		return slices.Clone(sorted)
	}
	out := make([]Threshold, 0, 2*len(sorted))
	for i, t := range sorted {
		out = append(out, t)
		if i+1 < len(sorted) {
			out = append(out, Threshold{Value: t.Value - steppedEpsilon, Color: sorted[i+1].Color})
		}
	}
	return out
}

// Prepare interpolates, sorts and expands stops in one step.
func Prepare(stops []schema.ColorStop, mode schema.ColorMode) ([]Threshold, error) {
	resolved, err := Interpolate(stops)
	if err != nil {
		return nil, err
	}
	for _, t := range resolved {
		if _, err := Parse(t.Color); err != nil {
			return nil, fmt.Errorf("color stop %v: %w", t.Value, err)
		}
	}
	return Expand(Sort(resolved), mode), nil
}
