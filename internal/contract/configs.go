package contract

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/minigraph/core/bounds"
	"github.com/huangsam/minigraph/schema"
)

// Default values for configuration.
const (
	DefaultLookback       = "24 hours"
	DefaultBucketsPerHour = 1
	MaxBucketsPerHour     = 60
	DefaultPrecision      = 1
	MaxPrecision          = 4
	DefaultBoxWidth       = 500
	DefaultBoxHeight      = 100
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ErrMissingEntity is returned when no entity is given to render.
var ErrMissingEntity = errors.New("entity is required")

// Config holds the runtime configuration for rendering.
// This struct remains the "final, validated" config.
type Config struct {
	Graph schema.GraphConfig
	Now   time.Time // Render instant; the window ends relative to it

	Source     schema.SourceKind
	SourceFile string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored values in table output
}

// AxisRawInput holds the bound overrides of one axis from the YAML config file.
// Lower and Upper accept numbers, numeric strings or elastic "~N" strings.
type AxisRawInput struct {
	Lower    any     `mapstructure:"lower"`
	Upper    any     `mapstructure:"upper"`
	MinRange float64 `mapstructure:"min_range"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Entity string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from renderCmd.Flags() ---
	Chart          string  `mapstructure:"chart"`
	Window         string  `mapstructure:"window"`
	Lookback       string  `mapstructure:"lookback"`
	BucketsPerHour int     `mapstructure:"buckets-per-hour"`
	OffsetDays     int     `mapstructure:"offset-days"`
	Aggregate      string  `mapstructure:"aggregate"`
	Logarithmic    bool    `mapstructure:"log"`
	Smoothing      bool    `mapstructure:"smoothing"`
	ValueFactor    float64 `mapstructure:"value-factor"`
	ColorMode      string  `mapstructure:"color-mode"`
	FixedColor     string  `mapstructure:"fixed-color"`
	UseBins        bool    `mapstructure:"use-bins"`
	Axis           string  `mapstructure:"axis"`
	LowerBound     any     `mapstructure:"lower-bound"`
	UpperBound     any     `mapstructure:"upper-bound"`
	MinRange       float64 `mapstructure:"min-range"`
	BoxWidth       float64 `mapstructure:"box-width"`
	BoxHeight      float64 `mapstructure:"box-height"`
	Gap            float64 `mapstructure:"gap"`
	EqualizerStep  float64 `mapstructure:"equalizer-step"`
	EqualizerSteps int     `mapstructure:"equalizer-steps"`
	RadialGap      float64 `mapstructure:"radial-gap"`
	InnerRadius    float64 `mapstructure:"inner-radius"`
	RadialVariant  string  `mapstructure:"radial-variant"`
	At             string  `mapstructure:"at"`
	Source         string  `mapstructure:"source"`
	SourceFile     string  `mapstructure:"source-file"`

	// --- Thresholds, bins and state map from config file ---
	ColorStops []schema.ColorStop  `mapstructure:"color_stops"`
	Bins       []schema.BinRank    `mapstructure:"bins"`
	StateMap   map[string]float64 `mapstructure:"state_map"`
	Secondary  AxisRawInput       `mapstructure:"secondary"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	g := &clone.Graph
	g.StateMap = maps.Clone(c.Graph.StateMap)
	g.ColorStops = slices.Clone(c.Graph.ColorStops)
	if c.Graph.Bins != nil {
		g.Bins = make([]schema.BinRank, len(c.Graph.Bins))
		for i, rank := range c.Graph.Bins {
			rank.Ranges = slices.Clone(rank.Ranges)
			g.Bins[i] = rank
		}
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ProcessShared(cfg, input); err != nil {
		return err
	}
	if cfg.Graph.Entity == "" {
		return ErrMissingEntity
	}
	return nil
}

// ProcessShared is ProcessAndValidate for commands that take the entity from elsewhere.
func ProcessShared(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processGraph(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input); err != nil {
		return err
	}
	if err := processBounds(cfg, input); err != nil {
		return err
	}
	return processSource(cfg, input)
}

// RevalidateWindow replaces the lookback of a rolling window with a new duration string.
func RevalidateWindow(cfg *Config, lookback string) error {
	if lookback == "" {
		return nil
	}
	d, err := ParseLookbackDuration(lookback)
	if err != nil {
		return fmt.Errorf("invalid lookback: %w", err)
	}
	cfg.Graph.Window.Hours = d.Hours()
	return nil
}

// RenderOverrides are per-request changes to a validated render config.
// Empty or zero fields keep the configured value.
type RenderOverrides struct {
	Entity         string
	Chart          string
	Aggregate      string
	Window         string
	Lookback       string
	At             string
	BucketsPerHour int
	OffsetDays     int
}

// ApplyOverrides validates o and applies it to cfg.
// The render instant is reset to now unless o.At names another one.
func ApplyOverrides(cfg *Config, o RenderOverrides, now time.Time) error {
	g := &cfg.Graph
	if e := strings.TrimSpace(o.Entity); e != "" {
		g.Entity = e
	}
	if g.Entity == "" {
		return ErrMissingEntity
	}
	if o.Chart != "" {
		chart := schema.ChartType(strings.ToLower(o.Chart))
		if _, ok := schema.ValidChartTypes[chart]; !ok {
			return fmt.Errorf("invalid chart '%s'. must be one of %v", o.Chart, schema.AllChartTypes)
		}
		g.Chart = chart
	}
	if o.Aggregate != "" {
		aggregate := schema.AggregateFunc(strings.ToLower(o.Aggregate))
		if !slices.Contains(schema.AllAggregateFuncs, aggregate) {
			return fmt.Errorf("invalid aggregate '%s'. must be one of %v", o.Aggregate, schema.AllAggregateFuncs)
		}
		g.Aggregate = aggregate
	}
	if o.Window != "" {
		kind := schema.WindowKind(strings.ToLower(o.Window))
		if _, ok := schema.ValidWindowKinds[kind]; !ok {
			return fmt.Errorf("invalid window '%s'. must be realtime, calendar, rolling", o.Window)
		}
		g.Window.Kind = kind
	}
	if o.BucketsPerHour != 0 {
		if o.BucketsPerHour < 0 || o.BucketsPerHour > MaxBucketsPerHour {
			return fmt.Errorf("buckets per hour must be between 1 and %d (received %d)", MaxBucketsPerHour, o.BucketsPerHour)
		}
		g.Window.BucketsPerHour = o.BucketsPerHour
	}
	if o.OffsetDays != 0 {
		g.Window.OffsetDays = o.OffsetDays
	}
	lookback := o.Lookback
	if lookback == "" && g.Window.Kind == schema.RollingWindow && g.Window.Hours <= 0 {
		lookback = DefaultLookback
	}
	if err := RevalidateWindow(cfg, lookback); err != nil {
		return err
	}

	at, err := ParseInstant(o.At, now)
	if err != nil {
		return fmt.Errorf("invalid at value: %w", err)
	}
	cfg.Now = at
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackend parses a backend name and checks its connection string.
func ValidateBackend(name, connStr string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(name))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", name)
	}
	if err := ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", err
	}
	return backend, nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("parquet output requires --output-file")
	}

	// --- 3. Render Instant ---
	now, err := ParseInstant(input.At, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --at value: %w", err)
	}
	cfg.Now = now
	return nil
}

// processGraph validates the chart, aggregation, color and geometry settings.
func processGraph(cfg *Config, input *ConfigRawInput) error {
	g := &cfg.Graph

	// --- 1. Entity ---
	g.Entity = strings.TrimSpace(input.Entity)

	// --- 2. Chart Validation ---
	g.Chart = schema.ChartType(strings.ToLower(input.Chart))
	if g.Chart == "" {
		g.Chart = schema.LineChart
	}
	if _, ok := schema.ValidChartTypes[g.Chart]; !ok {
		return fmt.Errorf("invalid chart '%s'. must be one of %v", input.Chart, schema.AllChartTypes)
	}

	// --- 3. Aggregate Validation ---
	g.Aggregate = schema.AggregateFunc(strings.ToLower(input.Aggregate))
	if g.Aggregate == "" {
		g.Aggregate = schema.AggAvg
	}
	if !slices.Contains(schema.AllAggregateFuncs, g.Aggregate) {
		return fmt.Errorf("invalid aggregate '%s'. must be one of %v", input.Aggregate, schema.AllAggregateFuncs)
	}

	// --- 4. Value Mapping ---
	g.Logarithmic = input.Logarithmic
	g.Smoothing = input.Smoothing
	g.ValueFactor = input.ValueFactor
	g.StateMap = maps.Clone(input.StateMap)
	g.UseBins = input.UseBins

	// --- 5. Color Validation ---
	g.ColorMode = schema.ColorMode(strings.ToLower(input.ColorMode))
	if g.ColorMode == "" {
		g.ColorMode = schema.SmoothColors
	}
	if _, ok := schema.ValidColorModes[g.ColorMode]; !ok {
		return fmt.Errorf("invalid color mode '%s'. must be smooth, stepped", input.ColorMode)
	}
	g.ColorStops = slices.Clone(input.ColorStops)
	g.Bins = slices.Clone(input.Bins)
	g.FixedColor = strings.TrimSpace(input.FixedColor)

	// --- 6. Geometry Validation ---
	geo := schema.Geometry{
		Box:            schema.Box{Width: input.BoxWidth, Height: input.BoxHeight},
		Gap:            input.Gap,
		EqualizerStep:  input.EqualizerStep,
		EqualizerSteps: input.EqualizerSteps,
		RadialGap:      input.RadialGap,
		InnerRadius:    input.InnerRadius,
		RadialVariant:  schema.RadialVariant(strings.ToLower(input.RadialVariant)),
	}
	if geo.Box.Width <= 0 || geo.Box.Height <= 0 {
		geo.Box = schema.Box{Width: DefaultBoxWidth, Height: DefaultBoxHeight}
	}
	if geo.Gap < 0 || geo.EqualizerStep < 0 || geo.EqualizerSteps < 0 || geo.RadialGap < 0 {
		return errors.New("gap, equalizer step, equalizer steps and radial gap must not be negative")
	}
	if geo.InnerRadius < 0 || geo.InnerRadius >= 1 {
		return fmt.Errorf("inner radius must be in [0, 1) (received %v)", geo.InnerRadius)
	}
	if geo.RadialVariant == "" {
		geo.RadialVariant = schema.RadialBarcode
	}
	if _, ok := schema.ValidRadialVariants[geo.RadialVariant]; !ok {
		return fmt.Errorf("invalid radial variant '%s'. must be barcode, sunburst, sunburst_centered", input.RadialVariant)
	}
	g.Geometry = geo
	return nil
}

// processWindow resolves the window kind, length and resolution.
func processWindow(cfg *Config, input *ConfigRawInput) error {
	w := schema.WindowSpec{
		Kind:           schema.WindowKind(strings.ToLower(input.Window)),
		BucketsPerHour: input.BucketsPerHour,
		OffsetDays:     input.OffsetDays,
	}
	if w.Kind == "" {
		w.Kind = schema.RollingWindow
	}
	if _, ok := schema.ValidWindowKinds[w.Kind]; !ok {
		return fmt.Errorf("invalid window '%s'. must be realtime, calendar, rolling", input.Window)
	}
	if w.BucketsPerHour == 0 {
		w.BucketsPerHour = DefaultBucketsPerHour
	}
	if w.BucketsPerHour < 0 || w.BucketsPerHour > MaxBucketsPerHour {
		return fmt.Errorf("buckets per hour must be between 1 and %d (received %d)", MaxBucketsPerHour, input.BucketsPerHour)
	}
	if w.Kind == schema.RollingWindow {
		lookback := input.Lookback
		if lookback == "" {
			lookback = DefaultLookback
		}
		d, err := ParseLookbackDuration(lookback)
		if err != nil {
			return fmt.Errorf("invalid lookback: %w", err)
		}
		w.Hours = d.Hours()
	}
	cfg.Graph.Window = w
	return nil
}

// processBounds parses the bound overrides of both axes.
func processBounds(cfg *Config, input *ConfigRawInput) error {
	cfg.Graph.Axis = schema.Axis(strings.ToLower(input.Axis))
	if cfg.Graph.Axis == "" {
		cfg.Graph.Axis = schema.PrimaryAxis
	}
	if cfg.Graph.Axis != schema.PrimaryAxis && cfg.Graph.Axis != schema.SecondaryAxis {
		return fmt.Errorf("invalid axis '%s'. must be primary, secondary", input.Axis)
	}

	primary, err := parseAxis(AxisRawInput{Lower: input.LowerBound, Upper: input.UpperBound, MinRange: input.MinRange})
	if err != nil {
		return fmt.Errorf("primary axis: %w", err)
	}
	secondary, err := parseAxis(input.Secondary)
	if err != nil {
		return fmt.Errorf("secondary axis: %w", err)
	}
	cfg.Graph.Primary = primary
	cfg.Graph.Secondary = secondary
	return nil
}

func parseAxis(raw AxisRawInput) (schema.AxisBounds, error) {
	lower, err := bounds.ParseSpec(raw.Lower)
	if err != nil {
		return schema.AxisBounds{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := bounds.ParseSpec(raw.Upper)
	if err != nil {
		return schema.AxisBounds{}, fmt.Errorf("upper bound: %w", err)
	}
	if raw.MinRange < 0 {
		return schema.AxisBounds{}, fmt.Errorf("min range must not be negative (received %v)", raw.MinRange)
	}
	return schema.AxisBounds{Lower: lower, Upper: upper, MinRange: raw.MinRange}, nil
}

// processSource validates where history samples are read from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = schema.SourceKind(strings.ToLower(input.Source))
	if cfg.Source == "" {
		cfg.Source = schema.StoreSource
	}
	if _, ok := schema.ValidSourceKinds[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be store, csv, json, parquet", input.Source)
	}
	cfg.SourceFile = input.SourceFile
	if cfg.Source != schema.StoreSource && cfg.SourceFile == "" {
		return fmt.Errorf("%s source requires --source-file", cfg.Source)
	}

	backend, err := ValidateBackend(input.HistoryBackend, input.HistoryDBConnect)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return nil
}
