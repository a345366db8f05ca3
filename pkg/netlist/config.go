package netlist

import (
	"fmt"
	"math"
	"regexp"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// DefaultThreshold is the proximity threshold in diagram units.
const DefaultThreshold = 6.0

// Config controls terminal extraction and matching.
type Config struct {
	// Matching
	Threshold        float64 // Max distance between joined terminals (default: 6)
	ScaleWithViewBox bool    // Multiply Threshold by max(viewBox w, h)/1000 (default: false)

	// Extraction
	ResolveCurveEndpoints bool // Curve and arc end points become terminals (default: false)

	// Shape filtering
	ExcludeIDs     []string // Shapes that never take part in a trace
	ExcludePattern string   // Regex over shape ids, same effect as ExcludeIDs

	// Internal compiled regex
	excludeRegex *regexp.Regexp
}

// DefaultConfig returns a Config matching the documented behavior: fixed
// threshold, curves unresolved, nothing excluded.
func DefaultConfig() *Config {
	return &Config{
		Threshold:             DefaultThreshold,
		ScaleWithViewBox:      false,
		ResolveCurveEndpoints: false,
	}
}

// Validate checks the configuration for errors and compiles any regex patterns.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		c.Threshold = DefaultThreshold
	}

	c.excludeRegex = nil
	if c.ExcludePattern != "" {
		regex, err := regexp.Compile(c.ExcludePattern)
		if err != nil {
			return fmt.Errorf("netlist: exclude pattern: %w", err)
		}
		c.excludeRegex = regex
	}

	return nil
}

// Excluded reports whether the shape id is filtered out of tracing.
// ExcludePattern only applies after Validate.
func (c *Config) Excluded(id string) bool {
	if c == nil {
		return false
	}
	for _, x := range c.ExcludeIDs {
		if x == id {
			return true
		}
	}
	return c.excludeRegex != nil && c.excludeRegex.MatchString(id)
}

// EffectiveThreshold returns the threshold to use for the given diagram.
func (c *Config) EffectiveThreshold(d *diagram.Diagram) float64 {
	t := DefaultThreshold
	if c != nil && c.Threshold > 0 {
		t = c.Threshold
	}
	if c == nil || !c.ScaleWithViewBox || d == nil || d.ViewBox.IsEmpty() {
		return t
	}
	extent := math.Max(d.ViewBox.Width(), d.ViewBox.Height())
	if extent <= 0 {
		return t
	}
	return t * extent / 1000
}
