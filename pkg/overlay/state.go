// Package overlay computes the highlight and search overlays drawn on top of
// a diagram. State is an immutable value; Reduce applies an Action and
// returns a new State, and Project turns a State into per-shape styles.
// The diagram itself is never modified.
package overlay

import (
	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

// State is the overlay for one diagram. Fields must be treated as read-only;
// Reduce never mutates a State it is given.
type State struct {
	// Highlight overlay
	Net         *netlist.Net             // Highlighted net, merged across additive selections
	Highlighted []string                 // Highlighted shape ids in discovery order
	Saved       map[string]diagram.Style // Style of each highlighted shape before its first highlight

	// Search overlay
	Query   string               // Normalized query; "" when search is inactive
	Results []catalog.Descriptor // Filtered components for the side panel
	Matched map[string]bool      // Shapes whose id is a matching designator
	Dimmed  map[string]bool      // Every other non-background shape
}

// IsHighlighted reports whether the shape id is part of the highlight.
func (s State) IsHighlighted(id string) bool {
	_, ok := s.Saved[id]
	return ok
}

// Terminals returns the junction points of the highlighted net.
func (s State) Terminals() []diagram.Point {
	if s.Net == nil {
		return nil
	}
	return s.Net.Terminals
}

// Searching reports whether a non-empty search query is active.
func (s State) Searching() bool {
	return s.Query != ""
}

// Action is an input to Reduce.
type Action interface {
	action()
}

// Highlight shows a traced net. Additive unions it with the current
// highlight instead of replacing it. An empty net clears the highlight.
type Highlight struct {
	Net      *netlist.Net
	Additive bool
}

// ClearHighlight removes the highlight overlay.
type ClearHighlight struct{}

// Search recomputes the search overlay from scratch.
type Search struct {
	Query      string
	Components []catalog.Descriptor
}

// ClearSearch removes the search overlay.
type ClearSearch struct{}

func (Highlight) action()      {}
func (ClearHighlight) action() {}
func (Search) action()         {}
func (ClearSearch) action()    {}

// Reduce returns the state that results from applying a to s.
func Reduce(d *diagram.Diagram, s State, a Action) State {
	switch a := a.(type) {
	case Highlight:
		return reduceHighlight(d, s, a)
	case ClearHighlight:
		return clearHighlight(s)
	case Search:
		return reduceSearch(d, s, a)
	case ClearSearch:
		return clearSearch(s)
	}
	return s
}

func clearHighlight(s State) State {
	s.Net = nil
	s.Highlighted = nil
	s.Saved = nil
	return s
}

func clearSearch(s State) State {
	s.Query = ""
	s.Results = nil
	s.Matched = nil
	s.Dimmed = nil
	return s
}

func reduceHighlight(d *diagram.Diagram, s State, a Highlight) State {
	if a.Net.IsEmpty() {
		return clearHighlight(s)
	}

	base := s
	if !a.Additive {
		base = clearHighlight(s)
	}

	next := base
	next.Net = netlist.Merge(base.Net, a.Net)
	next.Highlighted = next.Net.IDs()
	next.Saved = make(map[string]diagram.Style, len(next.Highlighted))
	for id, st := range base.Saved {
		next.Saved[id] = st
	}
	for _, sh := range next.Net.Shapes {
		if _, ok := next.Saved[sh.ID]; ok {
			continue
		}
		next.Saved[sh.ID] = originalStyle(d, sh)
	}
	return next
}

// originalStyle is the style of the shape as parsed. The registry copy wins
// over the net's pointer so a stale net cannot leak styles into the save.
func originalStyle(d *diagram.Diagram, sh *diagram.Shape) diagram.Style {
	if reg := d.Shape(sh.ID); reg != nil {
		return reg.Style
	}
	return sh.Style
}

func reduceSearch(d *diagram.Diagram, s State, a Search) State {
	next := clearSearch(s)
	q := catalog.Normalize(a.Query)
	next.Results = catalog.Filter(a.Components, q)
	if q == "" {
		return next
	}
	next.Query = q

	designators := make(map[string]bool, len(next.Results))
	for _, c := range next.Results {
		designators[c.Designator] = true
	}

	next.Matched = make(map[string]bool)
	next.Dimmed = make(map[string]bool)
	if d == nil {
		return next
	}
	for _, sh := range d.Shapes {
		if sh.Background {
			continue
		}
		if designators[sh.ID] {
			next.Matched[sh.ID] = true
		} else {
			next.Dimmed[sh.ID] = true
		}
	}
	return next
}
