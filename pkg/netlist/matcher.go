package netlist

import (
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Matcher decides whether two terminal points are the same electrical node.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher with the given threshold; a non-positive
// threshold selects DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Close reports whether a and b are within the threshold (inclusive).
func (m Matcher) Close(a, b diagram.Point) bool {
	return a.Distance(b) <= m.Threshold
}

// Contact returns the point of as from the closest pair of close terminals,
// preferring earlier points on ties. ok is false when no pair is close.
func (m Matcher) Contact(as, bs []diagram.Point) (p diagram.Point, ok bool) {
	best := m.Threshold
	for _, a := range as {
		for _, b := range bs {
			d := a.Distance(b)
			if d > m.Threshold || (ok && d >= best) {
				continue
			}
			p, best, ok = a, d, true
			if d == 0 {
				return p, true
			}
		}
	}
	return p, ok
}

// Connected reports whether any terminal pair of the two lists is close.
func (m Matcher) Connected(as, bs []diagram.Point) bool {
	for _, a := range as {
		for _, b := range bs {
			if m.Close(a, b) {
				return true
			}
		}
	}
	return false
}
