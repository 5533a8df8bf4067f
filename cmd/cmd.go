// Package cmd defines the command-line interface for minigraph.
package cmd

import (
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyEntitiesCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored values in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("at", "", "Render instant in RFC3339 or time ago (defaults to now)")
	rootCmd.PersistentFlags().String("source", string(schema.StoreSource), "History source: store or csv or json or parquet")
	rootCmd.PersistentFlags().String("source-file", "", "History file read by csv, json and parquet sources")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all graph flags to Viper. They are shared by render and mcp.
	for _, c := range []*cobra.Command{renderCmd, mcpCmd} {
		addGraphFlags(c)
	}
	if err := viper.BindPFlags(renderCmd.Flags()); err != nil {
		contract.LogFatal("Error binding render flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}

	// Bind all flags of historyImportCmd to Viper
	historyImportCmd.Flags().String("format", "", "Import file format: csv or json or parquet (defaults to the file extension)")
	if err := viper.BindPFlags(historyImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history import flags", err)
	}
}

// addGraphFlags defines the flags describing how a graph is built.
func addGraphFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("chart", string(schema.LineChart), "Chart type: line, area, bar, equalizer, graded, barcode, radial_barcode")
	f.String("aggregate", string(schema.AggAvg), "Bucket reducer: avg, median, max, min, first, last, sum, delta, diff")
	f.String("window", string(schema.RollingWindow), "Window kind: rolling or calendar or realtime")
	f.String("lookback", contract.DefaultLookback, "Length of a rolling window (e.g., '24 hours', '7d', '90m')")
	f.Int("buckets-per-hour", contract.DefaultBucketsPerHour, "Bucket resolution")
	f.Int("offset-days", 0, "Calendar windows only: days back from today")
	f.Bool("log", false, "Use a logarithmic y-axis")
	f.Bool("smoothing", false, "Smooth line and area charts")
	f.Float64("value-factor", 0, "Multiply numeric states by this factor (0 = off)")
	f.String("color-mode", string(schema.SmoothColors), "Color thresholds: smooth or stepped")
	f.String("fixed-color", "", "Color every value the same")
	f.Bool("use-bins", false, "Map values to the rank of their bin")
	f.String("axis", string(schema.PrimaryAxis), "Axis to scale against: primary or secondary")
	f.String("lower-bound", "", "Lower bound: a number, or ~N for a soft bound")
	f.String("upper-bound", "", "Upper bound: a number, or ~N for a soft bound")
	f.Float64("min-range", 0, "Minimum range of the y-axis")
	f.Float64("box-width", contract.DefaultBoxWidth, "Drawing area width")
	f.Float64("box-height", contract.DefaultBoxHeight, "Drawing area height")
	f.Float64("gap", 0, "Gap between bars and columns")
	f.Float64("equalizer-step", 0, "Value step of one equalizer level")
	f.Int("equalizer-steps", 0, "Number of equalizer levels")
	f.Float64("radial-gap", 0, "Degrees left empty between radial wedges")
	f.Float64("inner-radius", 0, "Radial inner radius as a fraction of the outer radius")
	f.String("radial-variant", string(schema.RadialBarcode), "Radial variant: barcode, sunburst, sunburst_centered")
}
