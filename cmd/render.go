package cmd

import (
	"github.com/huangsam/minigraph/core"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/outwriter"
	"github.com/spf13/cobra"
)

// renderCmd renders the history of one entity.
var renderCmd = &cobra.Command{
	Use:   "render <entity>",
	Short: "Aggregate the history of an entity and print its chart geometry.",
	Long: `Bucket the state history of an entity over a time window, reduce every bucket
and project the values into the geometry of the selected chart.

The window is either rolling (the last --lookback), calendar (today, or
--offset-days back) or realtime (the current state only). Each bucket is
reduced with --aggregate; empty buckets carry the previous value forward.

Color thresholds, bins, the state map and secondary axis bounds are read from
the config file (.minigraph.yaml in the current or home directory):

  color_stops:
    - {value: 0, color: blue}
    - {value: 20, color: green}
    - {value: 30, color: red}
  state_map:
    "on": 1
    "off": 0

Examples:
  # Hourly average temperature over the last day
  minigraph render sensor.temperature

  # Daily energy use as bars, summed per 15 minutes
  minigraph render sensor.energy --chart bar --aggregate sum --buckets-per-hour 4 --window calendar

  # Render from a CSV export instead of the history store
  minigraph render sensor.temperature --source csv --source-file history.csv

  # Export the coordinates for plotting
  minigraph render sensor.temperature --output parquet --output-file points.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRender(rootCtx, cfg, historySource(), outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot render graph", err)
		}
	},
}
