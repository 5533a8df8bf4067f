package outwriter

import (
	"os"

	"github.com/huangsam/minigraph/internal/contract"
	"golang.org/x/term"
)

// Width limits of the entity column in table output.
const (
	minLabelWidth = 15
	maxLabelWidth = 60
)

// getTermWidth returns the configured width, the detected terminal width, or 80.
func getTermWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxLabelWidth calculates the maximum width for entity names in table output
// based on terminal width and the fixed columns beside them.
func getMaxLabelWidth(cfg *contract.Config) int {
	// Samples + Oldest + Newest columns plus borders and padding
	available := getTermWidth(cfg) - 62
	return min(max(available, minLabelWidth), maxLabelWidth)
}
