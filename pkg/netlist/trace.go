package netlist

import (
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Net is the result of one trace: shapes in discovery order, seed first, and
// the junction points found while walking.
type Net struct {
	Seed      string
	Shapes    []*diagram.Shape
	Terminals []diagram.Point
}

// IDs returns the shape ids in discovery order.
func (n *Net) IDs() []string {
	if n == nil {
		return nil
	}
	ids := make([]string, len(n.Shapes))
	for i, s := range n.Shapes {
		ids[i] = s.ID
	}
	return ids
}

// Contains reports whether the net includes the shape id.
func (n *Net) Contains(id string) bool {
	if n == nil {
		return false
	}
	for _, s := range n.Shapes {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of shapes in the net.
func (n *Net) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Shapes)
}

// IsEmpty reports whether the net holds no shapes.
func (n *Net) IsEmpty() bool {
	return n.Len() == 0
}

// Tracer walks connectivity from a seed shape.
type Tracer struct {
	cfg     *Config
	matcher Matcher
}

// NewTracer creates a tracer for the diagram. The diagram is only consulted
// for the viewBox when cfg.ScaleWithViewBox is set; d may be nil.
func NewTracer(cfg *Config, d *diagram.Diagram) *Tracer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Tracer{
		cfg:     cfg,
		matcher: NewMatcher(cfg.EffectiveThreshold(d)),
	}
}

// Matcher returns the proximity matcher in use.
func (t *Tracer) Matcher() Matcher {
	return t.matcher
}

// Participates reports whether the shape can be part of a net.
func (t *Tracer) Participates(s *diagram.Shape) bool {
	return s != nil && !s.Background && !t.cfg.Excluded(s.ID)
}

// Trace returns the net containing seed, searching breadth-first over
// universe. A nil, background or excluded seed yields an empty net. Each
// shape is visited at most once; terminals are extracted once per shape.
func (t *Tracer) Trace(seed *diagram.Shape, universe []*diagram.Shape) *Net {
	net := &Net{}
	if !t.Participates(seed) {
		return net
	}
	net.Seed = seed.ID

	candidates := make([]*diagram.Shape, 0, len(universe))
	terminals := make(map[*diagram.Shape][]diagram.Point, len(universe)+1)
	terminals[seed] = Terminals(seed, t.cfg)
	for _, s := range universe {
		if s == seed || !t.Participates(s) {
			continue
		}
		if _, dup := terminals[s]; dup {
			continue
		}
		terminals[s] = Terminals(s, t.cfg)
		candidates = append(candidates, s)
	}

	visited := map[*diagram.Shape]bool{seed: true}
	queue := []*diagram.Shape{seed}
	net.Shapes = append(net.Shapes, seed)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curPts := terminals[cur]
		if len(curPts) == 0 {
			continue
		}

		for _, other := range candidates {
			if visited[other] {
				continue
			}
			p, ok := t.matcher.Contact(curPts, terminals[other])
			if !ok {
				continue
			}
			visited[other] = true
			queue = append(queue, other)
			net.Shapes = append(net.Shapes, other)
			net.Terminals = append(net.Terminals, p)
		}
	}

	return net
}

// TraceID traces from the shape with the given id in d. An unknown id yields
// an empty net.
func (t *Tracer) TraceID(d *diagram.Diagram, id string) *Net {
	return t.Trace(d.Shape(id), d.Shapes)
}

// Merge returns the union of two nets for additive selection: shapes of prev
// in order, then the shapes of next not already present. Terminals are
// concatenated without exact duplicates. Neither input is modified.
func Merge(prev, next *Net) *Net {
	out := &Net{}
	if prev != nil {
		out.Seed = prev.Seed
	}
	if out.Seed == "" && next != nil {
		out.Seed = next.Seed
	}

	seen := make(map[string]bool)
	seenPt := make(map[diagram.Point]bool)
	for _, n := range []*Net{prev, next} {
		if n == nil {
			continue
		}
		for _, s := range n.Shapes {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out.Shapes = append(out.Shapes, s)
		}
		for _, p := range n.Terminals {
			if seenPt[p] {
				continue
			}
			seenPt[p] = true
			out.Terminals = append(out.Terminals, p)
		}
	}
	return out
}
