// Package parquet provides data structures and functions for exchanging minigraph
// history and chart data as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/huangsam/minigraph/schema"
	"github.com/parquet-go/parquet-go"
)

// Sample represents one recorded state of an entity.
// This struct maps to the minigraph_history database table.
type Sample struct {
	// Entity is the identifier of the tracked entity
	Entity string `parquet:"entity,snappy"`

	// Timestamp is when the state was recorded (stored as TIMESTAMP with nanosecond precision)
	Timestamp time.Time `parquet:"timestamp,snappy"`

	// State is the raw recorded state, numeric or text
	State string `parquet:"state,snappy"`
}

// Point represents one aggregated bucket of a rendered graph.
type Point struct {
	Entity string    `parquet:"entity,snappy"`
	Chart  string    `parquet:"chart,snappy"`
	Index  int32     `parquet:"index,snappy"`
	Start  time.Time `parquet:"start,snappy"`
	End    time.Time `parquet:"end,snappy"`
	Value  float64   `parquet:"value,snappy"`
	Filled bool      `parquet:"filled,snappy"`
	Color  string    `parquet:"color,snappy"`

	// X and Y are the projected coordinates of line and area charts (nullable)
	X *float64 `parquet:"x,optional,snappy"`
	Y *float64 `parquet:"y,optional,snappy"`
}

// WriteSamplesParquet writes a slice of Sample structs to a Parquet file.
func WriteSamplesParquet(data []Sample, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePointsParquet writes a slice of Point structs to a Parquet file.
func WritePointsParquet(data []Point, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { err = errors.Join(err, file.Close()) }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush parquet file: %w", err)
	}
	return nil
}

// ReadSamplesParquet reads all Sample rows from a Parquet file.
func ReadSamplesParquet(inputPath string) ([]Sample, error) {
	rows, err := parquet.ReadFile[Sample](inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", inputPath, err)
	}
	return rows, nil
}

// ConvertSampleRecords converts schema.SampleRecord to Sample for Parquet export.
func ConvertSampleRecords(records []schema.SampleRecord) []Sample {
	result := make([]Sample, len(records))
	for i, r := range records {
		result[i] = Sample{Entity: r.Entity, Timestamp: r.Timestamp, State: r.State}
	}
	return result
}

// ToSampleRecords converts Parquet rows back into schema.SampleRecord.
func ToSampleRecords(rows []Sample) []schema.SampleRecord {
	result := make([]schema.SampleRecord, len(rows))
	for i, r := range rows {
		result[i] = schema.SampleRecord{Entity: r.Entity, Timestamp: r.Timestamp.UTC(), State: r.State}
	}
	return result
}

// ConvertGraphResult flattens a graph result into one Point per aggregated bucket.
func ConvertGraphResult(result schema.GraphResult) []Point {
	var coords []schema.ProjectedCoordinate
	switch geo := result.Geometry.(type) {
	case schema.LineGeometry:
		coords = geo.Points
	case schema.AreaGeometry:
		coords = geo.Points
	}

	points := make([]Point, len(result.Points))
	for i, p := range result.Points {
		points[i] = Point{
			Entity: result.Entity,
			Chart:  string(result.Chart),
			Index:  int32(p.Index),
			Start:  p.Start,
			End:    p.End,
			Value:  p.Value,
			Filled: p.Filled,
		}
		if i < len(result.Colors) {
			points[i].Color = result.Colors[i]
		}
		// A single value is padded to two coordinates and gets none.
		if i < len(coords) && len(coords) == len(result.Points) {
			x, y := coords[i].X, coords[i].Y
			if !math.IsNaN(y) {
				points[i].X, points[i].Y = &x, &y
			}
		}
	}
	return points
}
