package colors

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/minigraph/schema"
)

// ErrInvalidBin is returned for a ranked bin without ranges or with an empty range.
var ErrInvalidBin = errors.New("invalid bin")

// Bins is an ordered set of ranks. Rank 0 is the lowest level.
type Bins struct {
	Ranks []schema.BinRank
}

// NewBins validates configured ranks.
func NewBins(ranks []schema.BinRank) (*Bins, error) {
	for i, r := range ranks {
		if len(r.Ranges) == 0 {
			return nil, fmt.Errorf("%w: rank %d has no ranges", ErrInvalidBin, i)
		}
		for _, rg := range r.Ranges {
			if !(rg.Min < rg.Max) {
				return nil, fmt.Errorf("%w: rank %d range [%v, %v) is empty", ErrInvalidBin, i, rg.Min, rg.Max)
			}
		}
		if _, err := Parse(r.Color); err != nil {
			return nil, fmt.Errorf("%w: rank %d: %w", ErrInvalidBin, i, err)
		}
	}
	return &Bins{Ranks: ranks}, nil
}

// DeriveBins builds one rank per threshold, each covering [value, next value).
// The highest rank is open-ended.
func DeriveBins(thresholds []Threshold) *Bins {
	ascending := Sort(thresholds)
	slices.Reverse(ascending)

	ranks := make([]schema.BinRank, 0, len(ascending))
	for i, t := range ascending {
		upper := math.Inf(1)
		if i+1 < len(ascending) {
			upper = ascending[i+1].Value
		}
		if !(t.Value < upper) {
			continue
		}
		ranks = append(ranks, schema.BinRank{
			Color:  t.Color,
			Ranges: []schema.BinRange{{Min: t.Value, Max: upper}},
		})
	}
	return &Bins{Ranks: ranks}
}

// Rank returns the index of the first rank with a range containing v.
func (b *Bins) Rank(v float64) (int, bool) {
	if b == nil || math.IsNaN(v) {
		return 0, false
	}
	for i, r := range b.Ranks {
		for _, rg := range r.Ranges {
			if v >= rg.Min && v < rg.Max {
				return i, true
			}
		}
	}
	return 0, false
}

// Len returns the number of ranks.
func (b *Bins) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Ranks)
}
