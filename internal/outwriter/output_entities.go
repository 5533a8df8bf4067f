package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteEntitySummaries outputs the entities of a history store, dispatching based on the output format configured.
func WriteEntitySummaries(entities []schema.EntitySummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entities)
		}, "Wrote JSON entities"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntitiesCSV(w, entities)
		}, "Wrote CSV entities"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for entity listings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntitiesTable(w, entities, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeEntitiesCSV writes one row per entity.
func writeEntitiesCSV(w io.Writer, entities []schema.EntitySummary) error {
	header := []string{"entity", "samples", "oldest", "newest"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range entities {
			row := []string{
				e.Entity,
				strconv.Itoa(e.Samples),
				e.Oldest.Format(contract.DateTimeFormat),
				e.Newest.Format(contract.DateTimeFormat),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeEntitiesTable generates and writes the human-readable entity table.
func writeEntitiesTable(w io.Writer, entities []schema.EntitySummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Entity", "Samples", "Oldest", "Newest"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	width := getMaxLabelWidth(cfg)
	var data [][]string
	for _, e := range entities {
		data = append(data, []string{
			contract.TruncateLabel(e.Entity, width),
			strconv.Itoa(e.Samples),
			e.Oldest.Local().Format(tableTimeFormat),
			e.Newest.Local().Format(tableTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	total := 0
	for _, e := range entities {
		total += e.Samples
	}
	_, _ = fmt.Fprintf(w, "%d entities with %d samples. History backend: %s\n", len(entities), total, cfg.HistoryBackend)
	return nil
}
