package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/minigraph/internal/history"
	"github.com/huangsam/minigraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBackend points the shared config and store manager at backend for one test.
func withBackend(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	saved := *cfg
	t.Cleanup(func() {
		history.Manager.Close()
		*cfg = saved
	})
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	require.NoError(t, history.Manager.Init(backend, connStr))
}

func TestRequireStoreNoneBackend(t *testing.T) {
	withBackend(t, schema.NoneBackend, "")

	store, err := requireStore()
	assert.ErrorIs(t, err, errNoStore)
	assert.Nil(t, store)
}

func TestRequireStoreSQLite(t *testing.T) {
	withBackend(t, schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))

	store, err := requireStore()
	require.NoError(t, err)
	n, err := history.Import(rootCtx, store, []schema.SampleRecord{
		{Entity: "sensor.temperature", Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), State: "21.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRequireStoreUninitialized(t *testing.T) {
	saved := *cfg
	t.Cleanup(func() { *cfg = saved })
	history.Manager.Close()
	cfg.HistoryBackend = schema.SQLiteBackend

	_, err := requireStore()
	assert.ErrorIs(t, err, errNoStore)
}

func TestImportKind(t *testing.T) {
	tests := []struct {
		path, format string
		want         schema.SourceKind
		wantErr      bool
	}{
		{"history.csv", "", schema.CSVSource, false},
		{"history.JSON", "", schema.JSONSource, false},
		{"history.dat", "parquet", schema.ParquetSource, false},
		{"history.txt", "", "", true},
		{"history.csv", "store", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			kind, err := importKind(tt.path, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}
