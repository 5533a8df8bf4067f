package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/minigraph/core/colors"
	"github.com/huangsam/minigraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)

func dayConfig() schema.GraphConfig {
	return schema.GraphConfig{
		Entity:    "sensor.temperature",
		Window:    schema.WindowSpec{Kind: schema.RollingWindow, Hours: 24, BucketsPerHour: 1},
		Aggregate: schema.AggAvg,
	}
}

// quietEngine builds an engine that records warnings instead of printing them.
func quietEngine(t *testing.T, cfg schema.GraphConfig) (*Engine, *[]string) {
	t.Helper()
	var warnings []string
	engine, err := NewEngine(cfg, WithWarnFunc(func(msg string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s: %v", msg, err))
	}))
	require.NoError(t, err)
	return engine, &warnings
}

func TestEngineTwoSamplesPerHour(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())

	var samples []schema.HistorySample
	for h := range 24 {
		hour := now.Add(-time.Duration(h) * time.Hour)
		samples = append(samples,
			schema.NumericSample(hour.Add(-15*time.Minute), 10),
			schema.NumericSample(hour.Add(-45*time.Minute), 10),
		)
	}

	result := engine.Update(samples, now)
	require.Len(t, result.Points, 24)
	for _, p := range result.Points {
		assert.Equal(t, 10.0, p.Value)
		assert.False(t, p.Filled, "bucket %d", p.Index)
	}
	assert.Equal(t, schema.Bounds{Min: 10, Max: 10}, result.Bounds)
	assert.Equal(t, Ready, engine.State())
}

func TestEngineForwardFillsSingleSample(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())

	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-24*time.Hour), 5),
	}, now)

	require.Len(t, result.Points, 24)
	assert.Equal(t, 5.0, result.Points[0].Value)
	assert.False(t, result.Points[0].Filled)
	for _, p := range result.Points[1:] {
		assert.Equal(t, 5.0, p.Value)
		assert.True(t, p.Filled)
	}
}

func TestEngineEmptyHistory(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())

	result := engine.Update(nil, now)
	require.Len(t, result.Points, 24)
	assert.Equal(t, schema.Bounds{}, result.Bounds)
	line, ok := result.Geometry.(schema.LineGeometry)
	require.True(t, ok)
	assert.Len(t, line.Points, 24)
	for _, p := range line.Points {
		assert.Equal(t, p.YBaseline, p.Y)
	}
}

func TestEngineGettersBeforeUpdate(t *testing.T) {
	cfg := dayConfig()
	cfg.Chart = schema.BarChart
	engine, _ := quietEngine(t, cfg)

	assert.Equal(t, Uninitialized, engine.State())
	assert.Equal(t, "uninitialized", engine.State().String())
	assert.Equal(t, schema.Bounds{}, engine.Bounds())
	assert.Empty(t, engine.Points())
	assert.Empty(t, engine.Gradient())
	assert.Equal(t, schema.Stats{}, engine.Stats())
	require.NotNil(t, engine.Geometry())
	assert.Equal(t, schema.BarChart, engine.Geometry().Kind())
	assert.Equal(t, "sensor.temperature", engine.Snapshot().Entity)
}

func TestNewEngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.GraphConfig)
		target error
	}{
		{"unknown chart", func(c *schema.GraphConfig) { c.Chart = "pie" }, ErrUnknownChart},
		{"unknown window", func(c *schema.GraphConfig) { c.Window.Kind = "weekly" }, ErrInvalidWindow},
		{"rolling without hours", func(c *schema.GraphConfig) { c.Window.Hours = 0 }, ErrInvalidWindow},
		{"negative resolution", func(c *schema.GraphConfig) { c.Window.BucketsPerHour = -1 }, ErrInvalidWindow},
		{"unknown aggregate", func(c *schema.GraphConfig) { c.Aggregate = "p99" }, ErrUnknownAggregate},
		{"missing stop value", func(c *schema.GraphConfig) {
			c.ColorStops = []schema.ColorStop{schema.Stop(0, "red"), {Color: "green"}}
		}, ErrMissingStopValue},
		{"bad stop color", func(c *schema.GraphConfig) {
			c.ColorStops = []schema.ColorStop{schema.Stop(0, "red"), schema.Stop(1, "greenish")}
		}, colors.ErrInvalidColor},
		{"graded without bins", func(c *schema.GraphConfig) { c.Chart = schema.GradedChart }, colors.ErrInvalidBin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := dayConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestNewEngineDefaults(t *testing.T) {
	engine, err := NewEngine(schema.GraphConfig{Window: schema.WindowSpec{Hours: 6}})
	require.NoError(t, err)
	cfg := engine.Config()
	assert.Equal(t, schema.LineChart, cfg.Chart)
	assert.Equal(t, schema.RollingWindow, cfg.Window.Kind)
	assert.Equal(t, 1, cfg.Window.BucketsPerHour)
	assert.Equal(t, schema.AggAvg, cfg.Aggregate)
	assert.Equal(t, schema.SmoothColors, cfg.ColorMode)
	assert.Equal(t, schema.PrimaryAxis, cfg.Axis)
	assert.Equal(t, defaultBox, cfg.Geometry.Box)
}

func TestEngineUnmappedStatesAreWarnings(t *testing.T) {
	cfg := dayConfig()
	cfg.StateMap = map[string]float64{"on": 1, "off": 0}
	cfg.Aggregate = schema.AggMax
	engine, warnings := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{
		schema.NewSample(now.Add(-2*time.Hour), "on"),
		schema.NewSample(now.Add(-90*time.Minute), "unavailable"),
		schema.NewSample(now.Add(-30*time.Minute), "off"),
	}, now)

	require.Len(t, *warnings, 1)
	assert.Contains(t, (*warnings)[0], "sensor.temperature")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unavailable")
	assert.Equal(t, 1.0, result.Points[22].Value)
	assert.Equal(t, 0.0, result.Points[23].Value)
}

func TestEngineColors(t *testing.T) {
	cfg := dayConfig()
	cfg.ColorStops = []schema.ColorStop{schema.Stop(0, "blue"), schema.Stop(100, "red")}
	cfg.ColorMode = schema.SteppedColors
	engine, _ := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-23*time.Hour-30*time.Minute), 20),
		schema.NumericSample(now.Add(-30*time.Minute), 120),
	}, now)

	require.Len(t, result.Colors, 24)
	assert.Equal(t, "#0000ff", result.Colors[0])
	assert.Equal(t, "#ff0000", result.Colors[23])
	assert.NotEmpty(t, result.Gradient)
	assert.Equal(t, "#ff0000", engine.Color(500))
}

func TestEngineFixedColor(t *testing.T) {
	cfg := dayConfig()
	cfg.Chart = schema.BarChart
	cfg.FixedColor = "orange"
	engine, _ := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{schema.NumericSample(now.Add(-time.Hour), 3)}, now)
	bars := result.Geometry.(schema.BarGeometry).Bars
	require.Len(t, bars, 24)
	for _, b := range bars {
		assert.Equal(t, "#ffa500", b.Color)
	}
}

func TestEngineGeometryMatchesChart(t *testing.T) {
	stops := []schema.ColorStop{schema.Stop(0, "green"), schema.Stop(50, "yellow"), schema.Stop(80, "red")}
	samples := []schema.HistorySample{
		schema.NumericSample(now.Add(-20*time.Hour), 10),
		schema.NumericSample(now.Add(-10*time.Hour), 60),
		schema.NumericSample(now.Add(-time.Hour), 90),
	}

	for _, chart := range schema.AllChartTypes {
		t.Run(string(chart), func(t *testing.T) {
			cfg := dayConfig()
			cfg.Chart = chart
			cfg.ColorStops = stops
			engine, _ := quietEngine(t, cfg)

			result := engine.Update(samples, now)
			require.NotNil(t, result.Geometry)
			assert.Equal(t, chart, result.Geometry.Kind())
		})
	}
}

func TestEngineGradedUsesDerivedBins(t *testing.T) {
	cfg := dayConfig()
	cfg.Chart = schema.GradedChart
	cfg.ColorStops = []schema.ColorStop{schema.Stop(0, "green"), schema.Stop(50, "yellow"), schema.Stop(80, "red")}
	engine, _ := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{schema.NumericSample(now.Add(-30*time.Minute), 60)}, now)
	graded := result.Geometry.(schema.GradedGeometry)
	last := graded.Columns[len(graded.Columns)-1]
	require.Len(t, last.Levels, 3)
	assert.True(t, last.Levels[0].Filled)
	assert.True(t, last.Levels[1].Filled)
	assert.False(t, last.Levels[2].Filled)
}

func TestEngineBinMode(t *testing.T) {
	cfg := dayConfig()
	cfg.UseBins = true
	cfg.Aggregate = schema.AggLast
	cfg.Bins = []schema.BinRank{
		{Label: "low", Color: "green", Ranges: []schema.BinRange{{Min: 0, Max: 50}}},
		{Label: "high", Color: "red", Ranges: []schema.BinRange{{Min: 50, Max: 100}}},
	}
	engine, warnings := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-3*time.Hour), 20),
		schema.NumericSample(now.Add(-30*time.Minute), 75),
		schema.NumericSample(now.Add(-10*time.Minute), 500),
	}, now)

	assert.Equal(t, 0.0, result.Points[21].Value)
	assert.Equal(t, 500.0, result.Points[23].Value)
	assert.Len(t, *warnings, 1)
}

func TestEngineSecondaryAxis(t *testing.T) {
	cfg := dayConfig()
	cfg.Axis = schema.SecondaryAxis
	cfg.Primary = schema.AxisBounds{Lower: schema.BoundSpec{Set: true, Value: -100}}
	cfg.Secondary = schema.AxisBounds{MinRange: 20}
	engine, _ := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-24*time.Hour), 40),
		schema.NumericSample(now.Add(-time.Hour), 50),
	}, now)
	assert.Equal(t, schema.Bounds{Min: 35, Max: 55}, result.Bounds)
}

func TestEngineStats(t *testing.T) {
	cfg := dayConfig()
	cfg.Window.Hours = 3
	engine, _ := quietEngine(t, cfg)

	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-150*time.Minute), 4),
		schema.NumericSample(now.Add(-90*time.Minute), 10),
		schema.NumericSample(now.Add(-30*time.Minute), 1),
	}, now)

	assert.Equal(t, 1.0, result.Stats.Min)
	assert.Equal(t, 10.0, result.Stats.Max)
	assert.Equal(t, 5.0, result.Stats.Avg)
	assert.Equal(t, 1.0, result.Stats.Current)
	assert.True(t, now.Add(-2*time.Hour).Equal(result.Stats.MaxAt))
	assert.True(t, now.Add(-time.Hour).Equal(result.Stats.MinAt))
}

func TestEngineSnapshotIsACopy(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())
	engine.Update([]schema.HistorySample{schema.NumericSample(now.Add(-time.Hour), 1)}, now)

	points := engine.Points()
	points[0].Value = 999
	assert.NotEqual(t, 999.0, engine.Points()[0].Value)
}

func TestEngineGeometryIsACopy(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())
	result := engine.Update([]schema.HistorySample{schema.NumericSample(now.Add(-time.Hour), 1)}, now)

	line := result.Geometry.(schema.LineGeometry)
	line.Points[0].Y = -1
	got := engine.Geometry().(schema.LineGeometry)
	assert.NotEqual(t, -1.0, got.Points[0].Y)
	got.Points[0].Y = -2
	assert.NotEqual(t, -2.0, engine.Snapshot().Geometry.(schema.LineGeometry).Points[0].Y)

	cfg := dayConfig()
	cfg.Chart = schema.EqualizerChart
	cfg.Geometry.EqualizerSteps = 4
	eq, _ := quietEngine(t, cfg)
	eqResult := eq.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-2*time.Hour), 0),
		schema.NumericSample(now.Add(-time.Hour), 8),
	}, now)
	columns := eqResult.Geometry.(schema.EqualizerGeometry).Columns
	last := columns[len(columns)-1]
	require.NotEmpty(t, last.Levels)
	last.Levels[0].Color = "mutated"
	again := eq.Geometry().(schema.EqualizerGeometry).Columns
	assert.NotEqual(t, "mutated", again[len(again)-1].Levels[0].Color)
}

func TestEngineConcurrentUpdates(t *testing.T) {
	engine, _ := quietEngine(t, dayConfig())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := float64(i)
			engine.Update([]schema.HistorySample{schema.NumericSample(now.Add(-24*time.Hour), v)}, now)
			_ = engine.Snapshot()
			_ = engine.Bounds()
		}()
	}
	wg.Wait()

	points := engine.Points()
	require.Len(t, points, 24)
	for _, p := range points[1:] {
		assert.Equal(t, points[0].Value, p.Value)
	}
}

func TestEngineWindowAfterLastChange(t *testing.T) {
	engine, warnings := quietEngine(t, dayConfig())
	result := engine.Update([]schema.HistorySample{
		schema.NumericSample(now.Add(-26*time.Hour), 18),
		schema.NumericSample(now.Add(-25*time.Hour), 19),
	}, now)
	assert.Empty(t, *warnings)

	require.Len(t, result.Points, 24)
	assert.Equal(t, 19.0, result.Points[0].Value)
	assert.False(t, result.Points[0].Filled)
	for _, p := range result.Points[1:] {
		assert.Equal(t, 19.0, p.Value, "bucket %d", p.Index)
		assert.True(t, p.Filled)
	}
	assert.Equal(t, 19.0, result.Stats.Current)
}

func TestEngineCalendarWindow(t *testing.T) {
	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	samples := []schema.HistorySample{
		schema.NumericSample(midnight.Add(-26*time.Hour), 1),
		schema.NumericSample(midnight.Add(-2*time.Hour), 5),
		schema.NumericSample(midnight.Add(9*time.Hour+30*time.Minute), 10),
	}

	t.Run("today", func(t *testing.T) {
		cfg := dayConfig()
		cfg.Window = schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1}
		engine, _ := quietEngine(t, cfg)
		result := engine.Update(samples, now)

		require.Len(t, result.Points, 14)
		assert.Equal(t, midnight, result.Points[0].Start)
		assert.Equal(t, now, result.Points[13].End)
		assert.Equal(t, 5.0, result.Points[0].Value)
		assert.Equal(t, 5.0, result.Points[8].Value)
		assert.Equal(t, 10.0, result.Points[9].Value)
		assert.Equal(t, 10.0, result.Points[13].Value)
	})

	t.Run("yesterday", func(t *testing.T) {
		cfg := dayConfig()
		cfg.Window = schema.WindowSpec{Kind: schema.CalendarWindow, BucketsPerHour: 1, OffsetDays: 1}
		engine, _ := quietEngine(t, cfg)
		result := engine.Update(samples[:2], now)

		require.Len(t, result.Points, 24)
		assert.Equal(t, midnight.Add(-24*time.Hour), result.Points[0].Start)
		assert.Equal(t, midnight, result.Points[23].End)
		assert.Equal(t, 1.0, result.Points[0].Value)
		assert.Equal(t, 1.0, result.Points[21].Value)
		assert.Equal(t, 5.0, result.Points[22].Value)
		assert.Equal(t, 5.0, result.Points[23].Value)
	})
}
