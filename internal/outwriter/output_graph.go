package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/parquet"
	"github.com/huangsam/minigraph/schema"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// tableTimeFormat is the bucket start format of table output.
const tableTimeFormat = "2006-01-02 15:04"

var warnColor = color.New(color.FgYellow, color.Bold)

// WriteGraphResult outputs a rendered graph, dispatching based on the output format configured.
func WriteGraphResult(result schema.GraphResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGraphCSV(w, result, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeGraphParquet(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGraphTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeGraphParquet writes the graph points to a Parquet file.
func writeGraphParquet(result schema.GraphResult, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires an output file")
	}
	return parquet.WritePointsParquet(parquet.ConvertGraphResult(result), outputFile)
}

// writeGraphCSV writes one row per aggregated bucket.
func writeGraphCSV(w io.Writer, result schema.GraphResult, precision int) error {
	fmtFloat, fmtOptional := createFormatters(precision)
	header := []string{"entity", "chart", "index", "start", "end", "value", "filled", "color", "x", "y"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range parquet.ConvertGraphResult(result) {
			row := []string{
				p.Entity,
				p.Chart,
				strconv.Itoa(int(p.Index)),
				p.Start.Format(contract.DateTimeFormat),
				p.End.Format(contract.DateTimeFormat),
				fmtFloat(p.Value),
				strconv.FormatBool(p.Filled),
				p.Color,
				fmtOptional(p.X),
				fmtOptional(p.Y),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeGraphTable generates and writes the human-readable table.
func writeGraphTable(w io.Writer, result schema.GraphResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	table.Header([]string{"#", "Start", "Value", "Color", "Shape"})

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	shapes := describeShapes(result.Geometry, len(result.Points), fmtFloat)
	var data [][]string
	for i, p := range result.Points {
		hex := ""
		if i < len(result.Colors) {
			hex = result.Colors[i]
		}
		value := fmtFloat(p.Value)
		if p.Filled {
			value += "*"
		}
		data = append(data, []string{
			strconv.Itoa(p.Index),
			p.Start.Local().Format(tableTimeFormat),
			tintValue(value, hex, cfg.UseColors),
			hex,
			shapes[i],
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 5. Summary
	s := result.Stats
	_, _ = fmt.Fprintf(w, "Bounds: [%s, %s]  Min: %s  Max: %s  Avg: %s  Current: %s\n",
		fmtFloat(result.Bounds.Min), fmtFloat(result.Bounds.Max),
		fmtFloat(s.Min), fmtFloat(s.Max), fmtFloat(s.Avg), fmtFloat(s.Current))
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("Warning:"), warning)
	}
	prefix := ""
	if cfg.UseEmojis {
		prefix = "📈 "
	}
	_, _ = fmt.Fprintf(w, "%sRendered %s %s chart of %s with %d buckets in %v. History source: %s\n",
		prefix, result.Aggregate, result.Chart, result.Entity, len(result.Points), duration, sourceLabel(cfg))
	return nil
}

// sourceLabel names where the history of a render came from.
func sourceLabel(cfg *contract.Config) string {
	if cfg.Source == schema.StoreSource || cfg.Source == "" {
		return string(cfg.HistoryBackend)
	}
	return fmt.Sprintf("%s (%s)", cfg.SourceFile, cfg.Source)
}

// tintValue renders text in the given hex color when colors are enabled.
func tintValue(text, hex string, useColors bool) string {
	if !useColors || hex == "" {
		return text
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return text
	}
	r, g, b := c.RGB255()
	return color.RGB(int(r), int(g), int(b)).Sprint(text)
}

// describeShapes returns a short description of the drawn shape of each bucket.
// Buckets without their own shape get an empty description.
func describeShapes(geometry schema.ChartGeometry, n int, fmtFloat func(float64) string) []string {
	out := make([]string, n)
	set := func(i int, s string) {
		if i >= 0 && i < n {
			out[i] = s
		}
	}
	point := func(c schema.ProjectedCoordinate) string {
		return fmt.Sprintf("(%s, %s)", fmtFloat(c.X), fmtFloat(c.Y))
	}
	rect := func(r schema.Rect) string {
		return fmt.Sprintf("%sx%s @ (%s, %s)", fmtFloat(r.Width), fmtFloat(r.Height), fmtFloat(r.X), fmtFloat(r.Y))
	}
	levels := func(col schema.Column) string {
		filled := 0
		for _, l := range col.Levels {
			if l.Filled {
				filled++
			}
		}
		return fmt.Sprintf("%d/%d levels", filled, len(col.Levels))
	}

	switch geo := geometry.(type) {
	case schema.LineGeometry:
		if len(geo.Points) == n {
			for i, c := range geo.Points {
				set(i, point(c))
			}
		}
	case schema.AreaGeometry:
		if len(geo.Points) == n {
			for i, c := range geo.Points {
				set(i, point(c))
			}
		}
	case schema.BarGeometry:
		for i, r := range geo.Bars {
			set(i, rect(r))
		}
	case schema.BarcodeGeometry:
		for i, r := range geo.Cells {
			set(i, rect(r))
		}
	case schema.EqualizerGeometry:
		for _, col := range geo.Columns {
			set(col.Index, levels(col))
		}
	case schema.GradedGeometry:
		for _, col := range geo.Columns {
			set(col.Index, levels(col))
		}
	case schema.RadialBarcodeGeometry:
		for i, wedge := range geo.Wedges {
			set(i, fmt.Sprintf("%s-%s deg r %s-%s", fmtFloat(wedge.StartAngle), fmtFloat(wedge.EndAngle),
				fmtFloat(wedge.InnerRadius), fmtFloat(wedge.OuterRadius)))
		}
	}
	return out
}
