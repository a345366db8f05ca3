package netlist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Describer resolves component metadata for a shape id.
// *catalog.MemoryRepository satisfies it.
type Describer interface {
	Lookup(designator string) (catalog.Descriptor, bool)
}

// Netlist partitions every traceable shape of a diagram into nets using a
// union-find over shape ids.
type Netlist struct {
	// Union-find data structures
	parent map[string]string
	rank   map[string]int

	// Final nets after calling Finalize()
	Nets []*Net

	shapes   []*diagram.Shape
	byID     map[string]*diagram.Shape
	contacts map[string][]diagram.Point // contact points keyed by the first shape of each joined pair
	netOf    map[string]*Net
}

// NewNetlist creates a netlist over the given shapes.
// Initially, each shape is in its own isolated net.
func NewNetlist(shapes []*diagram.Shape) *Netlist {
	nl := &Netlist{
		parent:   make(map[string]string, len(shapes)),
		rank:     make(map[string]int, len(shapes)),
		byID:     make(map[string]*diagram.Shape, len(shapes)),
		contacts: make(map[string][]diagram.Point),
	}
	for _, s := range shapes {
		if _, dup := nl.byID[s.ID]; dup {
			continue
		}
		nl.shapes = append(nl.shapes, s)
		nl.byID[s.ID] = s
		nl.parent[s.ID] = s.ID
	}
	return nl
}

// Connect marks two shapes as electrically connected, recording p as the
// junction between them.
func (nl *Netlist) Connect(a, b string, p diagram.Point) {
	nl.contacts[a] = append(nl.contacts[a], p)

	rootA := nl.Find(a)
	rootB := nl.Find(b)
	if rootA == rootB {
		return
	}

	// Union by rank
	if nl.rank[rootA] < nl.rank[rootB] {
		nl.parent[rootA] = rootB
	} else if nl.rank[rootA] > nl.rank[rootB] {
		nl.parent[rootB] = rootA
	} else {
		nl.parent[rootB] = rootA
		nl.rank[rootA]++
	}
}

// Find returns the representative shape id for the net containing id.
func (nl *Netlist) Find(id string) string {
	root := id
	for nl.parent[root] != root {
		next, ok := nl.parent[root]
		if !ok {
			return id
		}
		root = next
	}

	// Path compression
	for cur := id; cur != root; {
		next := nl.parent[cur]
		nl.parent[cur] = root
		cur = next
	}
	return root
}

// Finalize builds the net list from the union-find structure. Every shape
// ends up in exactly one net, singletons included. Nets are ordered by their
// first shape in document order, and shapes within a net by document order.
func (nl *Netlist) Finalize() {
	groups := make(map[string]*Net)
	nl.Nets = make([]*Net, 0)
	nl.netOf = make(map[string]*Net, len(nl.shapes))

	for _, s := range nl.shapes {
		root := nl.Find(s.ID)
		n, ok := groups[root]
		if !ok {
			n = &Net{Seed: s.ID}
			groups[root] = n
			nl.Nets = append(nl.Nets, n)
		}
		n.Shapes = append(n.Shapes, s)
		nl.netOf[s.ID] = n
	}

	for _, n := range nl.Nets {
		sort.SliceStable(n.Shapes, func(i, j int) bool {
			return n.Shapes[i].Index < n.Shapes[j].Index
		})
		n.Seed = n.Shapes[0].ID
		for _, s := range n.Shapes {
			n.Terminals = append(n.Terminals, nl.contacts[s.ID]...)
		}
	}
	sort.SliceStable(nl.Nets, func(i, j int) bool {
		return nl.Nets[i].Shapes[0].Index < nl.Nets[j].Shapes[0].Index
	})
}

// NetOf returns the net containing the shape id, or nil.
// Only valid after calling Finalize().
func (nl *Netlist) NetOf(id string) *Net {
	return nl.netOf[id]
}

// NetCount returns the number of nets, singletons included.
// Only valid after calling Finalize().
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// MultiShapeNetCount returns the number of nets with more than one shape.
// Only valid after calling Finalize().
func (nl *Netlist) MultiShapeNetCount() int {
	count := 0
	for _, net := range nl.Nets {
		if len(net.Shapes) > 1 {
			count++
		}
	}
	return count
}

// Partition computes the full netlist of a diagram. Shapes excluded from
// tracing (background, ExcludeIDs, ExcludePattern) are left out.
func Partition(d *diagram.Diagram, cfg *Config) *Netlist {
	t := NewTracer(cfg, d)

	var shapes []*diagram.Shape
	if d != nil {
		for _, s := range d.Shapes {
			if t.Participates(s) {
				shapes = append(shapes, s)
			}
		}
	}

	nl := NewNetlist(shapes)
	pts := make([][]diagram.Point, len(nl.shapes))
	for i, s := range nl.shapes {
		pts[i] = Terminals(s, t.cfg)
	}

	for i := range nl.shapes {
		if len(pts[i]) == 0 {
			continue
		}
		for j := i + 1; j < len(nl.shapes); j++ {
			p, ok := t.matcher.Contact(pts[i], pts[j])
			if !ok {
				continue
			}
			nl.Connect(nl.shapes[i].ID, nl.shapes[j].ID, p)
		}
	}

	nl.Finalize()
	return nl
}

type jsonNet struct {
	Code      int             `json:"code"`
	Shapes    []string        `json:"shapes"`
	Terminals []diagram.Point `json:"terminals"`
}

// ExportJSON exports the netlist to JSON format.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	if nl.Nets == nil {
		return nil, fmt.Errorf("netlist: not finalized")
	}

	nets := make([]jsonNet, len(nl.Nets))
	for i, n := range nl.Nets {
		terms := n.Terminals
		if terms == nil {
			terms = []diagram.Point{}
		}
		nets[i] = jsonNet{Code: i + 1, Shapes: n.IDs(), Terminals: terms}
	}

	output := struct {
		Version     string    `json:"version"`
		NetCount    int       `json:"net_count"`
		MultiNets   int       `json:"multi_shape_nets"`
		Nets        []jsonNet `json:"nets"`
		GeneratedBy string    `json:"generated_by"`
	}{
		Version:     "1.0",
		NetCount:    nl.NetCount(),
		MultiNets:   nl.MultiShapeNetCount(),
		Nets:        nets,
		GeneratedBy: "circuitnet proximity tracing",
	}

	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad exports the multi-shape nets in KiCad netlist format. Shapes
// the describer knows become components referenced by designator; the rest
// are referenced by shape id. desc may be nil.
func (nl *Netlist) ExportKiCad(desc Describer) (string, error) {
	if nl.Nets == nil {
		return "", fmt.Errorf("netlist: not finalized")
	}

	lookup := func(id string) (catalog.Descriptor, bool) {
		if desc == nil {
			return catalog.Descriptor{}, false
		}
		return desc.Lookup(id)
	}

	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	b.WriteString("    (source \"circuitnet\")\n")
	b.WriteString("    (tool \"circuitnet proximity tracing\")\n")
	b.WriteString("  )\n")

	b.WriteString("  (components\n")
	for _, s := range nl.shapes {
		d, ok := lookup(s.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "    (comp (ref %s)", sexpAtom(d.Designator))
		if d.Value != "" {
			fmt.Fprintf(&b, " (value %s)", sexpAtom(d.Value))
		}
		if d.Description != "" {
			fmt.Fprintf(&b, " (description %s)", strconv.Quote(d.Description))
		}
		if d.Type != "" {
			fmt.Fprintf(&b, " (libsource (part %s))", sexpAtom(d.Type))
		}
		b.WriteString(")\n")
	}
	b.WriteString("  )\n")

	b.WriteString("  (nets\n")
	for i, net := range nl.Nets {
		if len(net.Shapes) < 2 {
			continue
		}
		code := i + 1
		fmt.Fprintf(&b, "    (net (code %d) (name Net-%d)\n", code, code)
		pins := make(map[string]int)
		for _, s := range net.Shapes {
			ref := s.ID
			if d, ok := lookup(s.ID); ok {
				ref = d.Designator
			}
			pins[ref]++
			fmt.Fprintf(&b, "      (node (ref %s) (pin %d))\n", sexpAtom(ref), pins[ref])
		}
		b.WriteString("    )\n")
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")

	return b.String(), nil
}

// sexpAtom quotes s when it cannot be written as a bare symbol.
func sexpAtom(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n()\"") {
		return strconv.Quote(s)
	}
	return s
}
