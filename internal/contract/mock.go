package contract

import (
	"context"
	"time"

	"github.com/huangsam/minigraph/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistorySource is a mock implementation of HistorySource for testing.
type MockHistorySource struct {
	mock.Mock
}

var _ HistorySource = &MockHistorySource{} // Compile-time check

// Fetch implements the HistorySource interface.
func (m *MockHistorySource) Fetch(ctx context.Context, entity string, start, end time.Time) ([]schema.HistorySample, error) {
	args := m.Called(ctx, entity, start, end)
	samples, _ := args.Get(0).([]schema.HistorySample)
	return samples, args.Error(1)
}

// Last implements the HistorySource interface.
func (m *MockHistorySource) Last(ctx context.Context, entity string, t time.Time) (schema.HistorySample, bool, error) {
	args := m.Called(ctx, entity, t)
	sample, _ := args.Get(0).(schema.HistorySample)
	return sample, args.Bool(1), args.Error(2)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	MockHistorySource
}

var _ HistoryStore = &MockHistoryStore{} // Compile-time check

// Append implements the HistoryStore interface.
func (m *MockHistoryStore) Append(ctx context.Context, entity string, samples []schema.HistorySample) (int, error) {
	args := m.Called(ctx, entity, samples)
	return args.Int(0), args.Error(1)
}

// Entities implements the HistoryStore interface.
func (m *MockHistoryStore) Entities(ctx context.Context) ([]schema.EntitySummary, error) {
	args := m.Called(ctx)
	entities, _ := args.Get(0).([]schema.EntitySummary)
	return entities, args.Error(1)
}

// Clear implements the HistoryStore interface.
func (m *MockHistoryStore) Clear(ctx context.Context, entity string) (int64, error) {
	args := m.Called(ctx, entity)
	return args.Get(0).(int64), args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockResultWriter is a mock implementation of ResultWriter for testing.
type MockResultWriter struct {
	mock.Mock
}

var _ ResultWriter = &MockResultWriter{} // Compile-time check

// WriteGraph implements the ResultWriter interface.
func (m *MockResultWriter) WriteGraph(result schema.GraphResult, cfg *Config, duration time.Duration) error {
	args := m.Called(result, cfg, duration)
	return args.Error(0)
}

// WriteEntities implements the ResultWriter interface.
func (m *MockResultWriter) WriteEntities(entities []schema.EntitySummary, cfg *Config) error {
	args := m.Called(entities, cfg)
	return args.Error(0)
}
