// Package mathutil provides small numeric helpers shared by the chart builders.
package mathutil

import (
	"cmp"
	"math"
)

// Clamp restricts a value to be within a specified range.
// Returns low if val < low, high if val > high, otherwise returns val.
func Clamp[T cmp.Ordered](val, low, high T) T {
	if val < low {
		return low
	}
	if val > high {
		return high
	}
	return val
}

// Log10Floor returns log10(max(1, x)), which is 0 for every non-positive input.
func Log10Floor(x float64) float64 {
	return math.Log10(math.Max(1, x))
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
