// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/minigraph/schema"
)

// HistorySource defines the read side of entity history.
// This allows the render pipeline to be tested without a real database or file.
type HistorySource interface {
	// Fetch returns the samples of entity recorded in [start, end], oldest first.
	Fetch(ctx context.Context, entity string, start, end time.Time) ([]schema.HistorySample, error)

	// Last returns the newest sample of entity recorded strictly before t.
	// The boolean is false when entity has no sample that old.
	Last(ctx context.Context, entity string, t time.Time) (schema.HistorySample, bool, error)
}

// HistoryStore defines durable history storage.
// This allows mocking the store for testing.
type HistoryStore interface {
	HistorySource

	// Append records samples for entity and returns the number of rows written.
	// A sample with the same entity and timestamp replaces the stored one.
	Append(ctx context.Context, entity string, samples []schema.HistorySample) (int, error)

	// Entities summarizes every entity with recorded history.
	Entities(ctx context.Context) ([]schema.EntitySummary, error)

	// Clear removes the history of entity, or of every entity when entity is empty.
	Clear(ctx context.Context, entity string) (int64, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}

// WarnFunc reports a recoverable problem.
type WarnFunc func(msg string, err error)

// ResultWriter defines how render results and store listings leave the process.
// This allows the render pipeline to be tested without touching stdout.
type ResultWriter interface {
	// WriteGraph emits one rendered graph in the configured output format.
	WriteGraph(result schema.GraphResult, cfg *Config, duration time.Duration) error

	// WriteEntities emits the entity summaries of a history store.
	WriteEntities(entities []schema.EntitySummary, cfg *Config) error
}
