package project

import (
	"math"

	"github.com/huangsam/minigraph/schema"
)

// defaultEqualizerSteps is the number of levels used when neither a step nor a level count is set.
const defaultEqualizerSteps = 10

// MaxEqualizerLevels caps the number of levels a column can stack.
const MaxEqualizerLevels = 200

// EqualizerStep returns the value span of one level.
// A configured step wins; otherwise the bounds are split into steps levels.
// Either way the bounds never hold more than MaxEqualizerLevels levels.
func EqualizerStep(bounds schema.Bounds, step float64, steps int) float64 {
	span := bounds.Range()
	if step > 0 {
		if span/step > MaxEqualizerLevels {
			return span / MaxEqualizerLevels
		}
		return step
	}
	if steps <= 0 {
		steps = defaultEqualizerSteps
	}
	steps = min(steps, MaxEqualizerLevels)
	if span > 0 {
		return span / float64(steps)
	}
	return 1
}

// StepRange returns the number of levels v fills above min.
func StepRange(v, lower, step float64) int {
	return int(math.Trunc(v/step) - math.Trunc(lower/step))
}

// Equalizer builds one column of stacked levels per value.
// Each column holds StepRange levels of equal height, colored by the level's upper value.
func Equalizer(values []float64, scale Scale, g schema.Geometry, color ColorFunc) schema.EqualizerGeometry {
	color = colorOrNone(color)
	step := EqualizerStep(scale.Bounds, g.EqualizerStep, g.EqualizerSteps)
	total := max(StepRange(scale.Bounds.Max, scale.Bounds.Min, step), 1)
	levelHeight := scale.Box.Height / float64(total)
	width := slots(scale.Box, len(values), g.Gap)
	floor := math.Trunc(scale.Bounds.Min/step) * step
	bottom := scale.Box.Y + scale.Box.Height

	columns := make([]schema.Column, len(values))
	for i, v := range values {
		col := schema.Column{Index: i, Value: v}
		x := scale.Box.X + float64(i)*(width+g.Gap)
		n := min(StepRange(v, scale.Bounds.Min, step), total)
		for k := range max(n, 0) {
			upper := floor + float64(k+1)*step
			col.Levels = append(col.Levels, schema.Level{
				Rect: schema.Rect{
					X:      x,
					Y:      bottom - float64(k+1)*levelHeight + g.Gap/2,
					Width:  width,
					Height: max(levelHeight-g.Gap, 0),
					Value:  upper,
					Color:  color(upper),
				},
				Rank:   k,
				Filled: true,
			})
		}
		columns[i] = col
	}
	return schema.EqualizerGeometry{Step: step, Columns: columns}
}

// Ranks is an ordered set of ranked bins.
type Ranks interface {
	Rank(v float64) (int, bool)
	Len() int
}

// Graded builds one column per value with a level for every rank.
// Levels at or below the rank matched by the value are filled; a value
// matching no rank leaves the whole column unfilled.
func Graded(values []float64, box schema.Box, gap float64, ranks Ranks, rankColors []string) schema.GradedGeometry {
	count := ranks.Len()
	width := slots(box, len(values), gap)
	levelHeight := 0.0
	if count > 0 {
		levelHeight = max((box.Height-gap*float64(count-1))/float64(count), 0)
	}
	bottom := box.Y + box.Height

	columns := make([]schema.Column, len(values))
	for i, v := range values {
		matched, ok := ranks.Rank(v)
		col := schema.Column{Index: i, Value: v, Levels: make([]schema.Level, count)}
		x := box.X + float64(i)*(width+gap)
		for k := range count {
			c := ""
			if k < len(rankColors) {
				c = rankColors[k]
			}
			col.Levels[k] = schema.Level{
				Rect: schema.Rect{
					X:      x,
					Y:      bottom - float64(k+1)*levelHeight - float64(k)*gap,
					Width:  width,
					Height: levelHeight,
					Value:  v,
					Color:  c,
				},
				Rank:   k,
				Filled: ok && k <= matched,
			}
		}
		columns[i] = col
	}
	return schema.GradedGeometry{Columns: columns}
}
