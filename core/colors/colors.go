// Package colors implements threshold color scales: stop interpolation, gradients,
// point color lookup and ranked bins.
package colors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	// ErrMissingStopValue is returned when the first or last color stop has no value.
	ErrMissingStopValue = errors.New("first and last color stops must have a value")

	// ErrInvalidColor is returned for a color spec that is not hex, rgb() or a CSS name.
	ErrInvalidColor = errors.New("invalid color")
)

// Parse converts a color spec into a color.
// Accepted forms are #rgb, #rrggbb, rgb(r, g, b) and CSS color names.
func Parse(spec string) (colorful.Color, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch {
	case s == "":
		return colorful.Color{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
		}
		return c, nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGB(spec, s[len("rgb("):len(s)-1])
	}

	named, ok := colornames.Map[s]
	if !ok {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
	}
	c, _ := colorful.MakeColor(named)
	return c, nil
}

func parseRGB(spec, body string) (colorful.Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
	}
	var channels [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
		}
		channels[i] = uint8(v)
	}
	return colorful.Color{
		R: float64(channels[0]) / 255,
		G: float64(channels[1]) / 255,
		B: float64(channels[2]) / 255,
	}, nil
}

// Blend mixes lower toward upper; t=0 is lower and t=1 is upper.
func Blend(lower, upper colorful.Color, t float64) colorful.Color {
	return lower.BlendRgb(upper, t).Clamped()
}

// Format renders a color as #rrggbb.
func Format(c colorful.Color) string {
	return c.Clamped().Hex()
}

// Cache memoizes parsed color specs. Each engine owns its own Cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]colorful.Color
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]colorful.Color)}
}

// Parse returns the cached color for spec, parsing it on first use.
// Specs that fail to parse are not cached.
func (c *Cache) Parse(spec string) (colorful.Color, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.entries[spec]; ok {
		return col, nil
	}
	col, err := Parse(spec)
	if err != nil {
		return colorful.Color{}, err
	}
	c.entries[spec] = col
	return col, nil
}

// Len returns the number of cached specs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops all cached specs.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
