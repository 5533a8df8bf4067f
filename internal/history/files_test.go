package history

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/parquet"
	"github.com/huangsam/minigraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `entity,timestamp,state
sensor.temp,2025-11-03T12:00:00Z,22
sensor.temp,2025-11-03T10:00:00Z,20
binary.door,1762164000,on
sensor.temp,1762167600.5,21
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "binary.door", records[2].Entity)
	assert.True(t, records[2].Timestamp.Equal(base))
	assert.Equal(t, time.UTC, records[2].Timestamp.Location())
	assert.True(t, records[3].Timestamp.Equal(base.Add(time.Hour+500*time.Millisecond)))
}

func TestReadCSVColumnOrder(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("State, Timestamp, Entity\nopen,2025-11-03T10:00:00Z,cover.garage\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schema.SampleRecord{Entity: "cover.garage", Timestamp: base, State: "open"}, records[0])
}

func TestReadCSVErrors(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, records)

	_, err = ReadCSV(strings.NewReader("entity,state\nsensor.temp,1\n"))
	assert.ErrorContains(t, err, "timestamp")

	_, err = ReadCSV(strings.NewReader("entity,timestamp,state\nsensor.temp,yesterday,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadCSV(strings.NewReader("entity,timestamp,state\nsensor.temp,1\n"))
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	records, err := ReadJSON(strings.NewReader(`[
		{"entity": "sensor.temp", "timestamp": "2025-11-03T11:00:00+01:00", "state": "20"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Timestamp.Equal(base))
	assert.Equal(t, time.UTC, records[0].Timestamp.Location())

	_, err = ReadJSON(strings.NewReader(`{"entity": 1}`))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	records := []schema.SampleRecord{
		{Entity: "sensor.temp", Timestamp: base, State: "20"},
		{Entity: "binary.door", Timestamp: base.Add(time.Minute), State: "on"},
	}

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, records))
	got, err := ReadCSV(&csvBuf)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, records))
	got, err = ReadJSON(&jsonBuf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	src := NewFileSource(schema.CSVSource, path)
	samples, err := src.Fetch(context.Background(), "sensor.temp", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, []string{"20", "21", "22"}, []string{samples[0].State, samples[1].State, samples[2].State})

	samples, err = src.Fetch(context.Background(), "sensor.temp", base.Add(time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 21.0, samples[0].Value)

	// The file is read once
	require.NoError(t, os.Remove(path))
	samples, err = src.Fetch(context.Background(), "binary.door", base, base)
	require.NoError(t, err)
	require.Len(t, samples, 1)
}

func TestFileSourceLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	ctx := context.Background()
	src := NewFileSource(schema.CSVSource, path)

	last, ok, err := src.Last(ctx, "sensor.temp", base.Add(48*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "22", last.State)

	last, ok, err = src.Last(ctx, "sensor.temp", base.Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "21", last.State)

	_, ok, err = src.Last(ctx, "sensor.temp", base)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(schema.JSONSource, filepath.Join(t.TempDir(), "nope.json"))
	_, err := src.Fetch(context.Background(), "sensor.temp", base, base)
	assert.Error(t, err)
	_, _, err = src.Last(context.Background(), "sensor.temp", base)
	assert.Error(t, err)
}

func TestLoadRecordsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	records := []schema.SampleRecord{{Entity: "sensor.temp", Timestamp: base, State: "20"}}
	require.NoError(t, parquet.WriteSamplesParquet(parquet.ConvertSampleRecords(records), path))

	got, err := LoadRecords(schema.ParquetSource, path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sensor.temp", got[0].Entity)
	assert.True(t, got[0].Timestamp.Equal(base))
}

func TestLoadRecordsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := LoadRecords(schema.StoreSource, path)
	assert.Error(t, err)
}

func TestImportGroupsByEntity(t *testing.T) {
	ctx := context.Background()
	store := &contract.MockHistoryStore{}
	store.On("Append", ctx, "binary.door", mock.MatchedBy(func(s []schema.HistorySample) bool { return len(s) == 1 })).Return(1, nil)
	store.On("Append", ctx, "sensor.temp", mock.MatchedBy(func(s []schema.HistorySample) bool { return len(s) == 2 })).Return(2, nil)

	n, err := Import(ctx, store, []schema.SampleRecord{
		{Entity: "sensor.temp", Timestamp: base, State: "1"},
		{Entity: "binary.door", Timestamp: base, State: "on"},
		{Entity: "sensor.temp", Timestamp: base.Add(time.Hour), State: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	store.AssertExpectations(t)
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()
	store := &contract.MockHistoryStore{}
	_, err := Import(ctx, store, []schema.SampleRecord{{Timestamp: base, State: "1"}})
	assert.ErrorContains(t, err, "no entity")

	store.On("Append", ctx, "sensor.temp", mock.Anything).Return(0, errors.New("disk full"))
	_, err = Import(ctx, store, []schema.SampleRecord{{Entity: "sensor.temp", Timestamp: base, State: "1"}})
	assert.ErrorContains(t, err, "disk full")
}

func TestImportExportSQLite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	n, err := Import(ctx, store, records)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, err := Export(ctx, store, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "binary.door", all[0].Entity)
	assert.Equal(t, "20", all[1].State)
	assert.Equal(t, "22", all[3].State)

	one, err := Export(ctx, store, []string{"sensor.temp"})
	require.NoError(t, err)
	assert.Len(t, one, 3)
}
