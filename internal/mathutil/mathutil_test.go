package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name           string
		val, low, high float64
		expected       float64
	}{
		{"within range", 5, 0, 10, 5},
		{"below low", -3, 0, 10, 0},
		{"above high", 12, 0, 10, 10},
		{"equal bounds", 4, 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.val, tt.low, tt.high))
		})
	}
	assert.Equal(t, 3, Clamp(7, 0, 3))
}

func TestLog10Floor(t *testing.T) {
	assert.Equal(t, 0.0, Log10Floor(-50))
	assert.Equal(t, 0.0, Log10Floor(0.5))
	assert.Equal(t, 0.0, Log10Floor(1))
	assert.InDelta(t, 2.0, Log10Floor(100), 1e-12)
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, 10.0, Lerp(10, 20, 0))
	assert.Equal(t, 20.0, Lerp(10, 20, 1))
}
