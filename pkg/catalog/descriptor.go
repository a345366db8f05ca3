// Package catalog holds component descriptors: advisory metadata records
// (designator, type, value, description) supplied alongside a diagram.
// A descriptor decorates the shape whose id equals its designator; nothing
// here is validated against the diagram.
package catalog

import (
	"strings"
)

// Descriptor is the metadata for one component.
type Descriptor struct {
	Designator  string `json:"designator" yaml:"designator"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Label returns a short human readable label, e.g. "R1 10k (resistor)".
func (d Descriptor) Label() string {
	parts := []string{d.Designator}
	if d.Value != "" {
		parts = append(parts, d.Value)
	}
	if d.Type != "" {
		parts = append(parts, "("+d.Type+")")
	}
	return strings.Join(parts, " ")
}

// Normalize lower-cases q and collapses runs of whitespace to a single
// space, trimming both ends.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Matches reports whether the normalized query is contained in any of the
// descriptor's normalized fields. An empty query matches everything.
func (d Descriptor) Matches(query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, field := range []string{d.Designator, d.Type, d.Value, d.Description} {
		if strings.Contains(Normalize(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the descriptors matching query, in input order. It is a
// pure function of its arguments: an empty query returns the full list.
func Filter(list []Descriptor, query string) []Descriptor {
	q := Normalize(query)
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if d.Matches(q) {
			out = append(out, d)
		}
	}
	return out
}
