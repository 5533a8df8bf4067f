// Package agg has the reducers that turn the samples of a bucket into one value.
package agg

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/minigraph/schema"
)

// ErrUnknownAggregate is returned for an aggregate function name outside the supported set.
var ErrUnknownAggregate = errors.New("unknown aggregate function")

// Func reduces the finite values of a bucket, in chronological order, to a single value.
// It is never called with an empty slice.
type Func func(values []float64) float64

// funcs is the fixed dispatch table for every schema.AggregateFunc.
var funcs = map[schema.AggregateFunc]Func{
	schema.AggAvg:    Avg,
	schema.AggMedian: Median,
	schema.AggMax:    Max,
	schema.AggMin:    Min,
	schema.AggFirst:  First,
	schema.AggLast:   Last,
	schema.AggSum:    Sum,
	schema.AggDelta:  Delta,
	schema.AggDiff:   Diff,
}

// Lookup returns the reducer for name.
func Lookup(name schema.AggregateFunc) (Func, error) {
	fn, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, name)
	}
	return fn, nil
}

// Parse normalizes a user-provided aggregate function name.
func Parse(s string) (schema.AggregateFunc, error) {
	name := schema.AggregateFunc(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return schema.AggAvg, nil
	}
	if _, ok := funcs[name]; !ok {
		return "", fmt.Errorf("%w: %q. must be one of %v", ErrUnknownAggregate, s, schema.AllAggregateFuncs)
	}
	return name, nil
}

// IsInterval reports whether name measures change within a bucket rather than a level.
// Interval functions have no meaningful last known level to carry forward.
func IsInterval(name schema.AggregateFunc) bool {
	return name == schema.AggDelta || name == schema.AggDiff
}

// Avg returns the arithmetic mean.
// A total that overflows falls back to an incremental mean, which stays finite.
func Avg(values []float64) float64 {
	if total := Sum(values); !math.IsInf(total, 0) {
		return total / float64(len(values))
	}
	mean := 0.0
	for i, v := range values {
		mean += (v - mean) / float64(i+1)
	}
	return mean
}

// Median returns the middle value, or the mean of the two middle values for an even count.
func Median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return sorted[mid-1]/2 + sorted[mid]/2
	}
	return sorted[mid]
}

// Max returns the largest value.
func Max(values []float64) float64 {
	return slices.Max(values)
}

// Min returns the smallest value.
func Min(values []float64) float64 {
	return slices.Min(values)
}

// First returns the chronologically first value.
func First(values []float64) float64 {
	return values[0]
}

// Last returns the chronologically last value.
func Last(values []float64) float64 {
	return values[len(values)-1]
}

// Sum returns the total of all values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Delta returns max - min.
func Delta(values []float64) float64 {
	return Max(values) - Min(values)
}

// Diff returns last - first.
func Diff(values []float64) float64 {
	return Last(values) - First(values)
}

// Values extracts the usable working values of samples, preserving order.
func Values(samples []schema.HistorySample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.HasValue() {
			out = append(out, s.Value)
		}
	}
	return out
}

// Filled is the reduced value of one bucket and whether it was carried forward.
type Filled struct {
	Value  float64
	Filled bool
}

// Fill reduces every group with name and forward-fills the empty ones.
// An empty group takes the fallback of the previous non-empty group: its last value
// for level functions, 0 for interval functions. Leading empty groups are 0.
func Fill(groups [][]schema.HistorySample, name schema.AggregateFunc) ([]Filled, error) {
	fn, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return FillWith(groups, fn, IsInterval(name)), nil
}

// FillWith is Fill for an already resolved reducer.
// A reduction that overflows to an infinity counts as an empty group.
func FillWith(groups [][]schema.HistorySample, fn Func, interval bool) []Filled {
	out := make([]Filled, len(groups))
	fallback := 0.0
	for i, group := range groups {
		values := Values(group)
		if len(values) == 0 {
			out[i] = Filled{Value: fallback, Filled: true}
			continue
		}
		v := fn(values)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			out[i] = Filled{Value: fallback, Filled: true}
			continue
		}
		out[i] = Filled{Value: v}
		if interval {
			fallback = 0
		} else {
			fallback = Last(values)
		}
	}
	return out
}
