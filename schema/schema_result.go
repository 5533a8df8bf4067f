package schema

import "time"

// GradientStop is a color stop positioned as a percentage of the drawing height.
type GradientStop struct {
	Offset float64 `json:"offset"` // 0 at the top (max), 100 at the bottom (min)
	Color  string  `json:"color"`
}

// Stats summarizes the aggregated values of a graph.
type Stats struct {
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Avg     float64   `json:"avg"`
	Current float64   `json:"current"`
	MinAt   time.Time `json:"min_at"`
	MaxAt   time.Time `json:"max_at"`
}

// GraphResult is the snapshot produced by one engine update.
type GraphResult struct {
	Entity    string            `json:"entity"`
	Chart     ChartType         `json:"chart"`
	Aggregate AggregateFunc     `json:"aggregate"`
	UpdatedAt time.Time         `json:"updated_at"`
	Bounds    Bounds            `json:"bounds"`
	Points    []AggregatedPoint `json:"points"`
	Colors    []string          `json:"colors"` // Point color of each aggregated point
	Gradient  []GradientStop    `json:"gradient"`
	Geometry  ChartGeometry     `json:"geometry"`
	Stats     Stats             `json:"stats"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalSamples    int       `json:"total_samples"`
	TotalEntities   int       `json:"total_entities"`
	OldestSample    time.Time `json:"oldest_sample"`
	NewestSample    time.Time `json:"newest_sample"`
	MigrationLevel  uint      `json:"migration_level"`
	MigrationsDirty bool      `json:"migrations_dirty"`
}

// EntitySummary describes the recorded history of one entity.
type EntitySummary struct {
	Entity  string    `json:"entity"`
	Samples int       `json:"samples"`
	Oldest  time.Time `json:"oldest"`
	Newest  time.Time `json:"newest"`
}
