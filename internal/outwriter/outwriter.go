// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.ResultWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteGraph prints a rendered graph using the configured output format.
func (ow *OutWriter) WriteGraph(result schema.GraphResult, cfg *contract.Config, duration time.Duration) error {
	return WriteGraphResult(result, cfg, duration)
}

// WriteEntities prints the entities of a history store using the configured output format.
func (ow *OutWriter) WriteEntities(entities []schema.EntitySummary, cfg *contract.Config) error {
	return WriteEntitySummaries(entities, cfg)
}
