// Package bounds computes the effective value range of an axis.
package bounds

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/minigraph/schema"
)

// ErrInvalidBound is returned for a bound that is neither a number nor "~N".
var ErrInvalidBound = errors.New("invalid bound")

// Kind selects which side of the range a boundary is for.
type Kind int

const (
	// Lower is the minimum side.
	Lower Kind = iota
	// Upper is the maximum side.
	Upper
)

// ParseSpec converts a configured bound into a BoundSpec.
// nil and "" are unset, numbers and numeric strings are fixed, and "~N" is elastic.
func ParseSpec(v any) (schema.BoundSpec, error) {
	switch t := v.(type) {
	case nil:
		return schema.BoundSpec{}, nil
	case schema.BoundSpec:
		return t, nil
	case float64:
		return fixed(t)
	case float32:
		return fixed(float64(t))
	case int:
		return fixed(float64(t))
	case int64:
		return fixed(float64(t))
	case string:
		return parseString(t)
	default:
		return schema.BoundSpec{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidBound, v)
	}
}

func fixed(v float64) (schema.BoundSpec, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return schema.BoundSpec{}, fmt.Errorf("%w: %v", ErrInvalidBound, v)
	}
	return schema.BoundSpec{Set: true, Value: v}, nil
}

func parseString(s string) (schema.BoundSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return schema.BoundSpec{}, nil
	}
	elastic := strings.HasPrefix(s, "~")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(s, "~")), 64)
	if err != nil {
		return schema.BoundSpec{}, fmt.Errorf("%w: %q", ErrInvalidBound, s)
	}
	spec, err := fixed(v)
	if err != nil {
		return schema.BoundSpec{}, err
	}
	spec.Elastic = elastic
	return spec, nil
}

// FormatSpec renders a BoundSpec back into its configuration form.
func FormatSpec(spec schema.BoundSpec) string {
	if !spec.Set {
		return ""
	}
	s := strconv.FormatFloat(spec.Value, 'f', -1, 64)
	if spec.Elastic {
		return "~" + s
	}
	return s
}

// Boundary returns one side of the range of values under spec.
// An unset spec takes the extremum of values, or fallback when there are none.
func Boundary(kind Kind, values []float64, spec schema.BoundSpec, fallback float64) float64 {
	if spec.Set && !spec.Elastic {
		return spec.Value
	}
	candidates := finite(values)
	if spec.Elastic {
		candidates = append(candidates, spec.Value)
	}
	if len(candidates) == 0 {
		return fallback
	}
	if kind == Lower {
		return slices.Min(candidates)
	}
	return slices.Max(candidates)
}

// Compute returns the bounds of values under cfg.
// The upper bound never ends below the lower one. A range narrower than
// cfg.MinRange is widened by half the deficit on each side.
func Compute(values []float64, cfg schema.AxisBounds) schema.Bounds {
	b := schema.Bounds{}
	b.Min = Boundary(Lower, values, cfg.Lower, 0)
	b.Max = Boundary(Upper, values, cfg.Upper, b.Min)
	if b.Max < b.Min {
		b.Max = b.Min
	}
	if deficit := cfg.MinRange - b.Range(); cfg.MinRange > 0 && deficit > 0 {
		b.Min -= deficit / 2
		b.Max += deficit / 2
	}
	return b
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values)+1)
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
