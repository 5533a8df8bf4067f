// Package schema has configs, models and constants for all parts of minigraph.
package schema

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// HistorySample is a single observation of an entity's state.
// Samples are immutable once received from a history source.
type HistorySample struct {
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"` // Raw state text as recorded
	Raw       float64   `json:"raw"`   // Parsed numeric state (NaN for text states)
	Value     float64   `json:"value"` // Working value after state mapping (NaN when unmapped)
}

// NewSample builds a sample from a raw state string.
// Numeric states are parsed into Raw and Value; text states leave both NaN.
func NewSample(ts time.Time, state string) HistorySample {
	raw := ParseState(state)
	return HistorySample{Timestamp: ts, State: state, Raw: raw, Value: raw}
}

// NumericSample builds a sample from a numeric state.
func NumericSample(ts time.Time, v float64) HistorySample {
	return HistorySample{
		Timestamp: ts,
		State:     strconv.FormatFloat(v, 'f', -1, 64),
		Raw:       v,
		Value:     v,
	}
}

// ParseState parses a raw state into a number, returning NaN if it is not numeric.
func ParseState(state string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(state), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// HasValue reports whether the working value is usable for aggregation.
func (s HistorySample) HasValue() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

// WindowSpec describes the time window charted by a graph.
type WindowSpec struct {
	Kind           WindowKind `json:"kind"`
	Hours          float64    `json:"hours"`            // Window length for rolling windows
	BucketsPerHour int        `json:"buckets_per_hour"` // Bucket resolution
	OffsetDays     int        `json:"offset_days"`      // Calendar windows only: 0 is today, N is N days back
}

// RequiredBucketCount returns the number of buckets the window is divided into.
// It is always at least 1.
func (w WindowSpec) RequiredBucketCount() int {
	if w.Kind == RealTimeWindow {
		return 1
	}
	n := int(math.Ceil(w.Hours * float64(w.BucketsPerHour)))
	return max(n, 1)
}

// BucketWidth returns the duration covered by one bucket.
func (w WindowSpec) BucketWidth() time.Duration {
	if w.BucketsPerHour <= 0 {
		return time.Hour
	}
	return time.Hour / time.Duration(w.BucketsPerHour)
}

// Bounds is an effective [Min, Max] value range.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Range returns Max - Min.
func (b Bounds) Range() float64 {
	return b.Max - b.Min
}

// SampleRecord is a raw sample tagged with its entity, as stored and exchanged in files.
type SampleRecord struct {
	Entity    string    `json:"entity"`
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"`
}

// Sample converts the record into a HistorySample.
func (r SampleRecord) Sample() HistorySample {
	return NewSample(r.Timestamp, r.State)
}
