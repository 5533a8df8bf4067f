package schema

// Custom string types for type safety.
type (
	// AggregateFunc names the reducer applied to the samples of a bucket.
	AggregateFunc string

	// ChartType selects the geometry family produced for a series.
	ChartType string

	// WindowKind selects how the history window is anchored in time.
	WindowKind string

	// ColorMode selects between continuous and stepped threshold scales.
	ColorMode string

	// RadialVariant selects how a radial barcode encodes its values.
	RadialVariant string

	// Axis names the y-axis a series is scaled against.
	Axis string

	// OutputMode represents the format of the output.
	OutputMode string

	// SourceKind represents where history samples are read from.
	SourceKind string

	// DatabaseBackend represents the database backend for the history store.
	DatabaseBackend string
)

// All aggregate functions supported.
const (
	AggAvg    AggregateFunc = "avg" // default
	AggMedian AggregateFunc = "median"
	AggMax    AggregateFunc = "max"
	AggMin    AggregateFunc = "min"
	AggFirst  AggregateFunc = "first"
	AggLast   AggregateFunc = "last"
	AggSum    AggregateFunc = "sum"
	AggDelta  AggregateFunc = "delta" // max - min
	AggDiff   AggregateFunc = "diff"  // last - first
)

// All chart types supported.
const (
	LineChart          ChartType = "line" // default
	AreaChart          ChartType = "area"
	BarChart           ChartType = "bar"
	EqualizerChart     ChartType = "equalizer"
	GradedChart        ChartType = "graded"
	BarcodeChart       ChartType = "barcode"
	RadialBarcodeChart ChartType = "radial_barcode"
)

// All window kinds supported.
const (
	RealTimeWindow WindowKind = "realtime"
	CalendarWindow WindowKind = "calendar"
	RollingWindow  WindowKind = "rolling" // default
)

// All color modes supported.
const (
	SmoothColors  ColorMode = "smooth" // default
	SteppedColors ColorMode = "stepped"
)

// All radial barcode variants supported.
const (
	RadialBarcode          RadialVariant = "barcode" // default
	RadialSunburst         RadialVariant = "sunburst"
	RadialSunburstCentered RadialVariant = "sunburst_centered"
)

// All axes supported.
const (
	PrimaryAxis   Axis = "primary" // default
	SecondaryAxis Axis = "secondary"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history sources supported.
const (
	StoreSource   SourceKind = "store" // default
	CSVSource     SourceKind = "csv"
	JSONSource    SourceKind = "json"
	ParquetSource SourceKind = "parquet"
)

// All history store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllAggregateFuncs returns a list of all supported aggregate functions.
var AllAggregateFuncs = []AggregateFunc{AggAvg, AggMedian, AggMax, AggMin, AggFirst, AggLast, AggSum, AggDelta, AggDiff}

// AllChartTypes returns a list of all supported chart types.
var AllChartTypes = []ChartType{LineChart, AreaChart, BarChart, EqualizerChart, GradedChart, BarcodeChart, RadialBarcodeChart}

// ValidChartTypes lists all valid chart types.
var ValidChartTypes = map[ChartType]struct{}{
	LineChart:          {},
	AreaChart:          {},
	BarChart:           {},
	EqualizerChart:     {},
	GradedChart:        {},
	BarcodeChart:       {},
	RadialBarcodeChart: {},
}

// ValidWindowKinds lists all valid window kinds.
var ValidWindowKinds = map[WindowKind]struct{}{
	RealTimeWindow: {},
	CalendarWindow: {},
	RollingWindow:  {},
}

// ValidColorModes lists all valid color modes.
var ValidColorModes = map[ColorMode]struct{}{
	SmoothColors:  {},
	SteppedColors: {},
}

// ValidRadialVariants lists all valid radial barcode variants.
var ValidRadialVariants = map[RadialVariant]struct{}{
	RadialBarcode:          {},
	RadialSunburst:         {},
	RadialSunburstCentered: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSourceKinds lists all valid history sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	StoreSource:   {},
	CSVSource:     {},
	JSONSource:    {},
	ParquetSource: {},
}

// ValidDatabaseBackends lists all valid history store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
