// Package statemap turns raw sample states into numeric working values.
package statemap

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/minigraph/schema"
)

// ErrUnmappedState is returned when a state matches neither the state table nor any bin.
var ErrUnmappedState = errors.New("unmapped state")

// Ranker finds the ordinal rank of a numeric value.
type Ranker interface {
	Rank(v float64) (int, bool)
}

// Mapper maps raw states with the first configured mode: state table, ranked bins, or value factor.
type Mapper struct {
	table  map[string]float64
	bins   Ranker
	factor float64
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithTable maps states by exact match on their raw text.
func WithTable(table map[string]float64) Option {
	return func(m *Mapper) { m.table = table }
}

// WithBins maps numeric states to the index of the first bin containing them.
func WithBins(bins Ranker) Option {
	return func(m *Mapper) { m.bins = bins }
}

// WithFactor multiplies numeric states by factor. A zero factor is ignored.
func WithFactor(factor float64) Option {
	return func(m *Mapper) { m.factor = factor }
}

// New creates a Mapper. Without options it passes raw values through.
func New(opts ...Option) *Mapper {
	m := &Mapper{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map returns sample with its working value set.
// On error the working value falls back to the raw numeric state.
func (m *Mapper) Map(sample schema.HistorySample) (schema.HistorySample, error) {
	out := sample
	out.Value = sample.Raw

	switch {
	case len(m.table) > 0:
		v, ok := m.table[sample.State]
		if !ok {
			return out, fmt.Errorf("%w: %q is not in the state map", ErrUnmappedState, sample.State)
		}
		out.Value = v
	case m.bins != nil:
		rank, ok := m.bins.Rank(sample.Raw)
		if !ok {
			return out, fmt.Errorf("%w: %q matches no bin", ErrUnmappedState, sample.State)
		}
		out.Value = float64(rank)
	case m.factor != 0:
		out.Value = sample.Raw * m.factor
	}
	return out, nil
}

// MapAll maps every sample and joins the errors of the ones that failed.
func (m *Mapper) MapAll(samples []schema.HistorySample) ([]schema.HistorySample, error) {
	out := make([]schema.HistorySample, len(samples))
	var errs []error
	for i, s := range samples {
		mapped, err := m.Map(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("sample at %s: %w", s.Timestamp.Format(time.RFC3339), err))
		}
		out[i] = mapped
	}
	return out, errors.Join(errs...)
}
