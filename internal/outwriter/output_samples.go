package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/history"
	"github.com/huangsam/minigraph/internal/parquet"
	"github.com/huangsam/minigraph/schema"
)

// WriteSampleRecords writes exported history in a layout the history sources can read back.
// Text output falls back to CSV.
func WriteSampleRecords(records []schema.SampleRecord, cfg *contract.Config) error {
	msg := fmt.Sprintf("Exported %d samples", len(records))
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return history.WriteJSON(w, records)
		}, msg)
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires an output file")
		}
		return parquet.WriteSamplesParquet(parquet.ConvertSampleRecords(records), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return history.WriteCSV(w, records)
		}, msg)
	}
}
