package bucket

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/minigraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func rolling(hours float64, bph int) schema.WindowSpec {
	return schema.WindowSpec{Kind: schema.RollingWindow, Hours: hours, BucketsPerHour: bph}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		window    schema.WindowSpec
		wantEnd   time.Time
		wantHours float64
	}{
		{
			name:      "rolling ends now",
			window:    rolling(24, 1),
			wantEnd:   now,
			wantHours: 24,
		},
		{
			name:      "realtime ends now with zero length",
			window:    schema.WindowSpec{Kind: schema.RealTimeWindow, Hours: 24, BucketsPerHour: 1},
			wantEnd:   now,
			wantHours: 0,
		},
		{
			name:      "calendar today covers elapsed hours",
			window:    schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1},
			wantEnd:   now,
			wantHours: 14.5,
		},
		{
			name:      "calendar yesterday ends at midnight",
			window:    schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1, OffsetDays: 1},
			wantEnd:   time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			wantHours: 24,
		},
		{
			name:      "calendar negative offset is treated as days back",
			window:    schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1, OffsetDays: -3},
			wantEnd:   time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
			wantHours: 24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span := Resolve(tt.window, now)
			assert.True(t, tt.wantEnd.Equal(span.End), "end %v, want %v", span.End, tt.wantEnd)
			assert.InDelta(t, tt.wantHours, span.Hours, 1e-9)
		})
	}
}

func TestBucketizeExactCount(t *testing.T) {
	windows := []schema.WindowSpec{
		rolling(24, 1),
		rolling(1.5, 4),
		rolling(0.1, 1),
		{Kind: schema.RealTimeWindow, BucketsPerHour: 2},
		{Kind: schema.CalendarWindow, BucketsPerHour: 2},
		{Kind: schema.CalendarWindow, BucketsPerHour: 3, OffsetDays: 2},
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for _, w := range windows {
		samples := make([]schema.HistorySample, 200)
		for i := range samples {
			offset := time.Duration(rng.Int64N(int64(72 * time.Hour)))
			samples[i] = schema.NumericSample(now.Add(-offset+time.Hour), float64(i))
		}

		span := Resolve(w, now)
		buckets := Bucketize(samples, w, now)
		require.Len(t, buckets, span.RequiredBucketCount(), "window %+v", w)
		assert.LessOrEqual(t, len(buckets[0].Samples), 1, "window %+v", w)

		total := 0
		for i, b := range buckets {
			assert.Equal(t, i, b.Index)
			total += len(b.Samples)
		}
		assert.Positive(t, total)
	}
}

func TestBucketizeEmptyInput(t *testing.T) {
	buckets := Bucketize(nil, rolling(24, 1), now)
	require.Len(t, buckets, 24)
	for _, b := range buckets {
		assert.Empty(t, b.Samples)
	}
}

func TestBucketizeKeys(t *testing.T) {
	samples := []schema.HistorySample{
		schema.NumericSample(now.Add(-30*time.Minute), 3),
		schema.NumericSample(now.Add(-90*time.Minute), 2),
		schema.NumericSample(now.Add(-150*time.Minute), 1),
	}

	buckets := Bucketize(samples, rolling(3, 1), now)
	require.Len(t, buckets, 3)
	assert.Equal(t, 1.0, buckets[0].Samples[0].Value)
	assert.Equal(t, 2.0, buckets[1].Samples[0].Value)
	assert.Equal(t, 3.0, buckets[2].Samples[0].Value)
}

func TestBucketizeCollapsesOldestBucket(t *testing.T) {
	samples := []schema.HistorySample{
		schema.NumericSample(now.Add(-30*time.Hour), 1),
		schema.NumericSample(now.Add(-26*time.Hour), 2),
		schema.NumericSample(now.Add(-23*time.Hour-30*time.Minute), 4),
		schema.NumericSample(now.Add(-23*time.Hour-45*time.Minute), 3),
	}

	buckets := Bucketize(samples, rolling(24, 1), now)
	require.Len(t, buckets[0].Samples, 1)
	assert.Equal(t, 4.0, buckets[0].Samples[0].Value)
}

func TestBucketizeFoldsNewestSamples(t *testing.T) {
	samples := []schema.HistorySample{
		schema.NumericSample(now, 8),
		schema.NumericSample(now.Add(5*time.Minute), 9),
	}

	buckets := Bucketize(samples, rolling(2, 1), now)
	require.Len(t, buckets, 2)
	assert.Empty(t, buckets[0].Samples)
	require.Len(t, buckets[1].Samples, 2)
	assert.Equal(t, 9.0, buckets[1].Samples[1].Value)
}

func TestBucketizeSortsInput(t *testing.T) {
	samples := []schema.HistorySample{
		schema.NumericSample(now.Add(-10*time.Minute), 2),
		schema.NumericSample(now.Add(-50*time.Minute), 1),
	}

	buckets := Bucketize(samples, rolling(2, 1), now)
	newest := buckets[1].Samples
	require.Len(t, newest, 2)
	assert.Equal(t, 1.0, newest[0].Value)
	assert.Equal(t, 2.0, newest[1].Value)
}

func TestBucketizeRealTime(t *testing.T) {
	samples := []schema.HistorySample{
		schema.NumericSample(now.Add(-2*time.Hour), 1),
		schema.NumericSample(now.Add(-time.Minute), 7),
	}

	w := schema.WindowSpec{Kind: schema.RealTimeWindow, Hours: 24, BucketsPerHour: 1}
	buckets := Bucketize(samples, w, now)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Samples, 1)
	assert.Equal(t, 7.0, buckets[0].Samples[0].Value)
}

func TestBucketTimeRanges(t *testing.T) {
	buckets := Bucketize(nil, rolling(2, 2), now)
	require.Len(t, buckets, 4)

	assert.True(t, now.Add(-2*time.Hour).Equal(buckets[0].Start))
	assert.True(t, now.Add(-90*time.Minute).Equal(buckets[0].End))
	assert.True(t, now.Add(-30*time.Minute).Equal(buckets[3].Start))
	assert.True(t, now.Equal(buckets[3].End))
}

func TestCalendarTodayPartialBucket(t *testing.T) {
	w := schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1}
	buckets := Bucketize(nil, w, now)
	require.Len(t, buckets, 15)
	last := buckets[len(buckets)-1]
	assert.True(t, now.Equal(last.End))
	assert.Equal(t, 30*time.Minute, last.End.Sub(last.Start))
}

func TestGroups(t *testing.T) {
	samples := []schema.HistorySample{schema.NumericSample(now.Add(-10*time.Minute), 5)}
	groups := Groups(Bucketize(samples, rolling(3, 1), now))
	require.Len(t, groups, 3)
	assert.Empty(t, groups[0])
	assert.Empty(t, groups[1])
	assert.Len(t, groups[2], 1)
}
