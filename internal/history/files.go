package history

import (
	"cmp"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/parquet"
	"github.com/huangsam/minigraph/schema"
)

// csvHeader is the column layout of CSV history files.
var csvHeader = []string{"entity", "timestamp", "state"}

// FileSource reads history from a CSV, JSON or Parquet file.
// The file is loaded once, on the first Fetch.
type FileSource struct {
	kind schema.SourceKind
	path string

	once    sync.Once
	records []schema.SampleRecord
	err     error
}

var _ contract.HistorySource = &FileSource{} // Compile-time check

// NewFileSource returns a source reading path as kind.
func NewFileSource(kind schema.SourceKind, path string) *FileSource {
	return &FileSource{kind: kind, path: path}
}

// Fetch returns the samples of entity recorded in [start, end], oldest first.
func (f *FileSource) Fetch(_ context.Context, entity string, start, end time.Time) ([]schema.HistorySample, error) {
	if err := f.load(); err != nil {
		return nil, err
	}

	var samples []schema.HistorySample
	for _, r := range f.records {
		if r.Entity != entity || r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		samples = append(samples, r.Sample())
	}
	slices.SortStableFunc(samples, func(a, b schema.HistorySample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return samples, nil
}

// Last returns the newest sample of entity recorded strictly before t.
func (f *FileSource) Last(_ context.Context, entity string, t time.Time) (schema.HistorySample, bool, error) {
	if err := f.load(); err != nil {
		return schema.HistorySample{}, false, err
	}

	var last *schema.SampleRecord
	for i := range f.records {
		r := &f.records[i]
		if r.Entity != entity || !r.Timestamp.Before(t) {
			continue
		}
		if last == nil || !r.Timestamp.Before(last.Timestamp) {
			last = r
		}
	}
	if last == nil {
		return schema.HistorySample{}, false, nil
	}
	return last.Sample(), true, nil
}

// load reads the file on first use.
func (f *FileSource) load() error {
	f.once.Do(func() {
		f.records, f.err = LoadRecords(f.kind, f.path)
	})
	return f.err
}

// LoadRecords reads every record of a history file.
func LoadRecords(kind schema.SourceKind, path string) ([]schema.SampleRecord, error) {
	if kind == schema.ParquetSource {
		rows, err := parquet.ReadSamplesParquet(path)
		if err != nil {
			return nil, err
		}
		return parquet.ToSampleRecords(rows), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch kind {
	case schema.CSVSource:
		return ReadCSV(file)
	case schema.JSONSource:
		return ReadJSON(file)
	default:
		return nil, fmt.Errorf("unsupported history file kind: %s", kind)
	}
}

// ReadCSV reads records from CSV with an entity, timestamp and state header.
// Timestamps are RFC3339 or Unix seconds.
func ReadCSV(r io.Reader) ([]schema.SampleRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", name)
		}
	}

	var records []schema.SampleRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		ts, err := parseTimestamp(row[cols["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, schema.SampleRecord{
			Entity:    strings.TrimSpace(row[cols["entity"]]),
			Timestamp: ts,
			State:     row[cols["state"]],
		})
	}
	return records, nil
}

// ReadJSON reads records from a JSON array.
func ReadJSON(r io.Reader) ([]schema.SampleRecord, error) {
	var records []schema.SampleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON history: %w", err)
	}
	for i := range records {
		records[i].Timestamp = records[i].Timestamp.UTC()
	}
	return records, nil
}

// WriteCSV writes records in the layout read by ReadCSV.
func WriteCSV(w io.Writer, records []schema.SampleRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Entity, r.Timestamp.Format(time.RFC3339Nano), r.State}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []schema.SampleRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// parseTimestamp accepts RFC3339 times and Unix seconds with an optional fraction.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: must be RFC3339 or Unix seconds", s)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC(), nil
}

// Import appends records to the store grouped by entity and returns the number written.
func Import(ctx context.Context, store contract.HistoryStore, records []schema.SampleRecord) (int, error) {
	byEntity := make(map[string][]schema.HistorySample)
	for _, r := range records {
		if r.Entity == "" {
			return 0, fmt.Errorf("record at %s has no entity", r.Timestamp.Format(time.RFC3339))
		}
		byEntity[r.Entity] = append(byEntity[r.Entity], r.Sample())
	}

	entities := make([]string, 0, len(byEntity))
	for entity := range byEntity {
		entities = append(entities, entity)
	}
	slices.Sort(entities)

	total := 0
	for _, entity := range entities {
		n, err := store.Append(ctx, entity, byEntity[entity])
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to import %s: %w", entity, err)
		}
	}
	return total, nil
}

// Export returns every stored record of the entities, oldest first within each entity.
// An empty entity list exports every entity in the store.
func Export(ctx context.Context, store contract.HistoryStore, entities []string) ([]schema.SampleRecord, error) {
	if len(entities) == 0 {
		summaries, err := store.Entities(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range summaries {
			entities = append(entities, s.Entity)
		}
	}

	var records []schema.SampleRecord
	for _, entity := range entities {
		samples, err := store.Fetch(ctx, entity, time.UnixMilli(0), time.UnixMilli(math.MaxInt64))
		if err != nil {
			return nil, err
		}
		for _, s := range samples {
			records = append(records, schema.SampleRecord{Entity: entity, Timestamp: s.Timestamp, State: s.State})
		}
	}
	slices.SortStableFunc(records, func(a, b schema.SampleRecord) int {
		return cmp.Compare(a.Entity, b.Entity)
	})
	return records, nil
}
