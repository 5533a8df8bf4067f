package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/minigraph/core/bucket"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
)

// ErrNoSource is returned when a render has nothing to read history from.
var ErrNoSource = errors.New("no history source configured")

// FetchRange returns the time range of window w at now.
func FetchRange(w schema.WindowSpec, now time.Time) (start, end time.Time) {
	span := bucket.Resolve(w, now)
	return span.Start(), span.End
}

// fetchWindow reads the samples of entity in [start, end] preceded by the state
// it held at start, which lands in the opening bucket.
func fetchWindow(ctx context.Context, source contract.HistorySource, entity string, start, end time.Time) ([]schema.HistorySample, error) {
	samples, err := source.Fetch(ctx, entity, start, end)
	if err != nil {
		return nil, err
	}
	if len(samples) > 0 && samples[0].Timestamp.Equal(start) {
		return samples, nil
	}
	prev, ok, err := source.Last(ctx, entity, start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return samples, nil
	}
	return append([]schema.HistorySample{prev}, samples...), nil
}

// RenderGraph fetches the history of the configured entity and runs it through a fresh engine.
func RenderGraph(ctx context.Context, cfg *contract.Config, source contract.HistorySource, opts ...Option) (schema.GraphResult, error) {
	if source == nil {
		return schema.GraphResult{}, ErrNoSource
	}

	// --- 1. Engine setup ---
	engine, err := NewEngine(cfg.Graph, opts...)
	if err != nil {
		return schema.GraphResult{}, err
	}

	// --- 2. History retrieval ---
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	start, end := FetchRange(engine.Config().Window, now)
	samples, err := fetchWindow(ctx, source, cfg.Graph.Entity, start, end)
	if err != nil {
		return schema.GraphResult{}, fmt.Errorf("failed to fetch history of %s: %w", cfg.Graph.Entity, err)
	}

	// --- 3. Pipeline ---
	return engine.Update(samples, now), nil
}

// ExecuteRender renders the configured entity and hands the result to the writer.
// It serves as the main entry point for the 'render' command.
func ExecuteRender(ctx context.Context, cfg *contract.Config, source contract.HistorySource, writer contract.ResultWriter) error {
	start := time.Now()
	result, err := RenderGraph(ctx, cfg, source)
	if err != nil {
		return err
	}
	return writer.WriteGraph(result, cfg, time.Since(start))
}

// ExecuteListEntities lists every entity recorded in the store.
func ExecuteListEntities(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, writer contract.ResultWriter) error {
	if store == nil {
		return ErrNoSource
	}
	entities, err := store.Entities(ctx)
	if err != nil {
		return err
	}
	return writer.WriteEntities(entities, cfg)
}
