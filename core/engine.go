package core

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/minigraph/core/agg"
	"github.com/huangsam/minigraph/core/bounds"
	"github.com/huangsam/minigraph/core/bucket"
	"github.com/huangsam/minigraph/core/colors"
	"github.com/huangsam/minigraph/core/project"
	"github.com/huangsam/minigraph/core/statemap"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
)

// Configuration errors returned by NewEngine.
var (
	ErrUnknownChart     = errors.New("unknown chart type")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrUnknownAggregate = agg.ErrUnknownAggregate
	ErrMissingStopValue = colors.ErrMissingStopValue
)

// defaultBox is the drawing area used when none is configured.
var defaultBox = schema.Box{Width: 500, Height: 100}

// State is the lifecycle state of an Engine.
type State int

const (
	// Uninitialized engines have not been updated yet.
	Uninitialized State = iota
	// Ready engines hold the result of their last update.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// Option configures an Engine.
type Option func(*Engine)

// WithWarnFunc sets where per-sample mapping errors are reported.
func WithWarnFunc(fn contract.WarnFunc) Option {
	return func(e *Engine) { e.warn = fn }
}

// WithColorCache sets the color cache of the engine.
func WithColorCache(cache *colors.Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// Engine owns the configuration and last computed result of one series.
// Update is the only mutator; all getters return copies of its last result.
type Engine struct {
	mu sync.Mutex

	cfg        schema.GraphConfig
	cache      *colors.Cache
	warn       contract.WarnFunc
	reduce     agg.Func
	mapper     *statemap.Mapper
	palette    *colors.Palette
	bins       *colors.Bins
	rankColors []string

	state  State
	result schema.GraphResult
}

// NewEngine validates cfg and prepares its color scale, bins and state mapper.
func NewEngine(cfg schema.GraphConfig, opts ...Option) (*Engine, error) {
	e := &Engine{warn: contract.LogWarn}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = colors.NewCache()
	}

	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	e.cfg = normalized
	e.reduce, err = agg.Lookup(e.cfg.Aggregate)
	if err != nil {
		return nil, err
	}

	thresholds, err := colors.Interpolate(e.cfg.ColorStops)
	if err != nil {
		return nil, fmt.Errorf("color stops: %w", err)
	}
	sorted := colors.Sort(thresholds)
	e.palette, err = colors.NewPalette(colors.Expand(sorted, e.cfg.ColorMode), e.cfg.ColorMode, e.cfg.FixedColor, e.cache)
	if err != nil {
		return nil, fmt.Errorf("color stops: %w", err)
	}

	if len(e.cfg.Bins) > 0 {
		e.bins, err = colors.NewBins(e.cfg.Bins)
		if err != nil {
			return nil, err
		}
	} else if len(thresholds) > 0 {
		e.bins = colors.DeriveBins(thresholds)
	}
	if (e.cfg.UseBins || e.cfg.Chart == schema.GradedChart) && e.bins.Len() == 0 {
		return nil, fmt.Errorf("%w: %s needs bins or color stops", colors.ErrInvalidBin, e.cfg.Chart)
	}
	if e.bins != nil {
		for _, r := range e.bins.Ranks {
			c, err := e.cache.Parse(r.Color)
			if err != nil {
				return nil, fmt.Errorf("bin color: %w", err)
			}
			e.rankColors = append(e.rankColors, colors.Format(c))
		}
	}

	var mapOpts []statemap.Option
	if len(e.cfg.StateMap) > 0 {
		mapOpts = append(mapOpts, statemap.WithTable(e.cfg.StateMap))
	}
	if e.cfg.UseBins {
		mapOpts = append(mapOpts, statemap.WithBins(e.bins))
	}
	mapOpts = append(mapOpts, statemap.WithFactor(e.cfg.ValueFactor))
	e.mapper = statemap.New(mapOpts...)

	e.result = e.neutralResult()
	return e, nil
}

// normalizeConfig fills defaults and rejects invalid enum values.
func normalizeConfig(cfg schema.GraphConfig) (schema.GraphConfig, error) {
	if cfg.Chart == "" {
		cfg.Chart = schema.LineChart
	}
	if _, ok := schema.ValidChartTypes[cfg.Chart]; !ok {
		return cfg, fmt.Errorf("%w: %q. must be one of %v", ErrUnknownChart, cfg.Chart, schema.AllChartTypes)
	}

	w := &cfg.Window
	if w.Kind == "" {
		w.Kind = schema.RollingWindow
	}
	if _, ok := schema.ValidWindowKinds[w.Kind]; !ok {
		return cfg, fmt.Errorf("%w: unknown kind %q", ErrInvalidWindow, w.Kind)
	}
	if w.BucketsPerHour < 0 {
		return cfg, fmt.Errorf("%w: buckets per hour must not be negative", ErrInvalidWindow)
	}
	if w.BucketsPerHour == 0 {
		w.BucketsPerHour = 1
	}
	if w.Kind == schema.RollingWindow && !(w.Hours > 0) {
		return cfg, fmt.Errorf("%w: rolling window needs positive hours", ErrInvalidWindow)
	}

	name, err := agg.Parse(string(cfg.Aggregate))
	if err != nil {
		return cfg, err
	}
	cfg.Aggregate = name

	if cfg.ColorMode == "" {
		cfg.ColorMode = schema.SmoothColors
	}
	if _, ok := schema.ValidColorModes[cfg.ColorMode]; !ok {
		return cfg, fmt.Errorf("unknown color mode %q", cfg.ColorMode)
	}
	if cfg.Axis == "" {
		cfg.Axis = schema.PrimaryAxis
	}
	if cfg.Axis != schema.PrimaryAxis && cfg.Axis != schema.SecondaryAxis {
		return cfg, fmt.Errorf("unknown axis %q", cfg.Axis)
	}
	if v := cfg.Geometry.RadialVariant; v != "" {
		if _, ok := schema.ValidRadialVariants[v]; !ok {
			return cfg, fmt.Errorf("unknown radial variant %q", v)
		}
	}
	if cfg.Geometry.Box.Width <= 0 || cfg.Geometry.Box.Height <= 0 {
		cfg.Geometry.Box = defaultBox
	}
	return cfg, nil
}

// Update recomputes the whole pipeline from samples at time now.
// Mapping errors are reported through the warn function and kept in the result.
func (e *Engine) Update(samples []schema.HistorySample, now time.Time) schema.GraphResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := schema.GraphResult{
		Entity:    e.cfg.Entity,
		Chart:     e.cfg.Chart,
		Aggregate: e.cfg.Aggregate,
		UpdatedAt: now,
	}

	// --- 1. State mapping ---
	mapped, err := e.mapper.MapAll(samples)
	if err != nil {
		e.warn(fmt.Sprintf("State mapping for %s", e.cfg.Entity), err)
		result.Warnings = warningsOf(err)
	}

	// --- 2. Bucketing and aggregation ---
	buckets := bucket.Bucketize(mapped, e.cfg.Window, now)
	filled := agg.FillWith(bucket.Groups(buckets), e.reduce, agg.IsInterval(e.cfg.Aggregate))
	result.Points = make([]schema.AggregatedPoint, len(buckets))
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		result.Points[i] = schema.AggregatedPoint{
			Index:  b.Index,
			Start:  b.Start,
			End:    b.End,
			Value:  filled[i].Value,
			Filled: filled[i].Filled,
		}
		values[i] = filled[i].Value
	}

	// --- 3. Bounds ---
	result.Bounds = bounds.Compute(values, e.cfg.AxisBounds())

	// --- 4. Geometry and colors ---
	scale := project.Scale{Bounds: result.Bounds, Box: e.cfg.Geometry.Box, Logarithmic: e.cfg.Logarithmic}
	result.Geometry = e.buildGeometry(values, scale)
	if !e.palette.Empty() {
		result.Colors = make([]string, len(values))
		for i, v := range values {
			result.Colors[i] = e.palette.Color(v)
		}
		result.Gradient = e.palette.Gradient(result.Bounds, e.cfg.Logarithmic)
	}
	result.Stats = computeStats(result.Points)

	e.result = result
	e.state = Ready
	return e.snapshot()
}

// buildGeometry builds the geometry of the configured chart type.
func (e *Engine) buildGeometry(values []float64, scale project.Scale) schema.ChartGeometry {
	g := e.cfg.Geometry
	color := e.colorFunc()
	switch e.cfg.Chart {
	case schema.AreaChart:
		return project.Area(values, scale, e.cfg.Smoothing)
	case schema.BarChart:
		return project.Bar(values, scale, g.Gap, color)
	case schema.EqualizerChart:
		return project.Equalizer(values, scale, g, color)
	case schema.GradedChart:
		return project.Graded(values, g.Box, g.Gap, e.bins, e.rankColors)
	case schema.BarcodeChart:
		return project.Barcode(values, g.Box, g.Gap, color)
	case schema.RadialBarcodeChart:
		return project.RadialBarcode(values, scale, g, color)
	default:
		return project.Line(values, scale, e.cfg.Smoothing)
	}
}

func (e *Engine) colorFunc() project.ColorFunc {
	if e.palette.Empty() {
		return nil
	}
	return e.palette.Color
}

func warningsOf(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func computeStats(points []schema.AggregatedPoint) schema.Stats {
	if len(points) == 0 {
		return schema.Stats{}
	}
	stats := schema.Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	total := 0.0
	for _, p := range points {
		if p.Value < stats.Min {
			stats.Min, stats.MinAt = p.Value, p.Start
		}
		if p.Value > stats.Max {
			stats.Max, stats.MaxAt = p.Value, p.Start
		}
		total += p.Value
	}
	stats.Avg = total / float64(len(points))
	stats.Current = points[len(points)-1].Value
	return stats
}

// neutralResult is what the getters return before the first update.
func (e *Engine) neutralResult() schema.GraphResult {
	return schema.GraphResult{
		Entity:    e.cfg.Entity,
		Chart:     e.cfg.Chart,
		Aggregate: e.cfg.Aggregate,
		Geometry:  emptyGeometry(e.cfg.Chart),
	}
}

func emptyGeometry(chart schema.ChartType) schema.ChartGeometry {
	switch chart {
	case schema.AreaChart:
		return schema.AreaGeometry{}
	case schema.BarChart:
		return schema.BarGeometry{}
	case schema.EqualizerChart:
		return schema.EqualizerGeometry{}
	case schema.GradedChart:
		return schema.GradedGeometry{}
	case schema.BarcodeChart:
		return schema.BarcodeGeometry{}
	case schema.RadialBarcodeChart:
		return schema.RadialBarcodeGeometry{}
	default:
		return schema.LineGeometry{}
	}
}

func (e *Engine) snapshot() schema.GraphResult {
	out := e.result
	out.Points = slices.Clone(e.result.Points)
	out.Colors = slices.Clone(e.result.Colors)
	out.Gradient = slices.Clone(e.result.Gradient)
	out.Warnings = slices.Clone(e.result.Warnings)
	out.Geometry = schema.CloneGeometry(e.result.Geometry)
	return out
}

// Config returns the normalized configuration.
func (e *Engine) Config() schema.GraphConfig {
	return e.cfg
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns the full result of the last update.
func (e *Engine) Snapshot() schema.GraphResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Bounds returns the effective bounds of the last update.
func (e *Engine) Bounds() schema.Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result.Bounds
}

// Points returns the aggregated points of the last update.
func (e *Engine) Points() []schema.AggregatedPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.result.Points)
}

// Geometry returns the chart geometry of the last update.
func (e *Engine) Geometry() schema.ChartGeometry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return schema.CloneGeometry(e.result.Geometry)
}

// Gradient returns the gradient stops of the last update.
func (e *Engine) Gradient() []schema.GradientStop {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.result.Gradient)
}

// Stats returns the statistics of the last update.
func (e *Engine) Stats() schema.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result.Stats
}

// Color returns the display color of value on the engine's scale.
func (e *Engine) Color(value float64) string {
	return e.palette.Color(value)
}
