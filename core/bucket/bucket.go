// Package bucket partitions a sample history into fixed-width time buckets.
package bucket

import (
	"math"
	"slices"
	"time"

	"github.com/huangsam/minigraph/schema"
)

// Bucket is one fixed-width time slot of a window.
// Index 0 is the opening edge of the window; the last index is the newest slot.
type Bucket struct {
	Index   int
	Start   time.Time
	End     time.Time
	Samples []schema.HistorySample
}

// Span is a window resolved against a reference time.
type Span struct {
	Kind           schema.WindowKind
	End            time.Time
	Hours          float64
	BucketsPerHour int
}

// Start returns the opening edge of the span.
func (s Span) Start() time.Time {
	return s.End.Add(-time.Duration(s.Hours * float64(time.Hour)))
}

// RequiredBucketCount returns the number of buckets the span is divided into.
func (s Span) RequiredBucketCount() int {
	return schema.WindowSpec{Kind: s.Kind, Hours: s.Hours, BucketsPerHour: s.BucketsPerHour}.RequiredBucketCount()
}

// Resolve computes the end time and effective length of w at now.
// Calendar windows snap to local midnight of now's location.
func Resolve(w schema.WindowSpec, now time.Time) Span {
	span := Span{Kind: w.Kind, End: now, Hours: w.Hours, BucketsPerHour: max(w.BucketsPerHour, 1)}
	switch w.Kind {
	case schema.RealTimeWindow:
		span.Hours = 0
	case schema.CalendarWindow:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if w.OffsetDays == 0 {
			span.Hours = now.Sub(midnight).Hours()
		} else {
			days := w.OffsetDays
			if days < 0 {
				days = -days
			}
			span.End = midnight.AddDate(0, 0, 1-days)
			span.Hours = 24
		}
	}
	return span
}

// Key returns the bucket key of a sample taken at ts.
// Samples at or before the opening edge get key 0.
func (s Span) Key(ts time.Time) int {
	bph := float64(s.BucketsPerHour)
	age := s.End.Sub(ts).Hours()
	interval := age*bph - s.Hours*bph
	if interval < 0 {
		return int(math.Floor(math.Abs(interval)))
	}
	return 0
}

// Bucketize groups samples into exactly RequiredBucketCount buckets of the resolved window.
// Bucket 0 keeps only its most recent sample; keys past the newest slot fold into it.
func Bucketize(samples []schema.HistorySample, w schema.WindowSpec, now time.Time) []Bucket {
	span := Resolve(w, now)
	return span.Bucketize(samples)
}

// Bucketize groups samples into the buckets of s.
func (s Span) Bucketize(samples []schema.HistorySample) []Bucket {
	n := s.RequiredBucketCount()
	buckets := s.empty(n)

	ordered := slices.Clone(samples)
	slices.SortStableFunc(ordered, func(a, b schema.HistorySample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	for _, sample := range ordered {
		key := min(s.Key(sample.Timestamp), n-1)
		buckets[key].Samples = append(buckets[key].Samples, sample)
	}

	if first := buckets[0].Samples; len(first) > 1 {
		buckets[0].Samples = first[len(first)-1:]
	}
	return buckets
}

func (s Span) empty(n int) []Bucket {
	start := s.Start()
	width := time.Hour / time.Duration(s.BucketsPerHour)
	buckets := make([]Bucket, n)
	for i := range buckets {
		b := Bucket{Index: i, Start: start.Add(time.Duration(i) * width)}
		b.End = b.Start.Add(width)
		if b.End.After(s.End) || i == n-1 {
			b.End = maxTime(s.End, b.Start)
		}
		buckets[i] = b
	}
	return buckets
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Groups returns the samples of every bucket in index order.
func Groups(buckets []Bucket) [][]schema.HistorySample {
	out := make([][]schema.HistorySample, len(buckets))
	for i, b := range buckets {
		out[i] = b.Samples
	}
	return out
}
