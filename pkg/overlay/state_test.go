package overlay

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

const circuitSVG = `<svg viewBox="0 0 100 100">
  <rect id="background" x="0" y="0" width="100" height="100" fill="white"/>
  <line id="W1" x1="0" y1="10" x2="10" y2="10" stroke="black" stroke-width="1"/>
  <line id="R1" x1="10" y1="10" x2="20" y2="10" stroke="#333" stroke-width="2" style="opacity:0.9"/>
  <line id="W2" x1="50" y1="50" x2="60" y2="50" stroke="blue"/>
  <circle id="C1" cx="65" cy="50" r="5" fill="none" stroke="green"/>
</svg>`

var components = []catalog.Descriptor{
	{Designator: "R1", Type: "resistor", Value: "10k"},
	{Designator: "C1", Type: "capacitor", Value: "100nF"},
}

func fixture(t *testing.T) (*diagram.Diagram, *netlist.Tracer) {
	t.Helper()
	d, err := diagram.ParseString(circuitSVG)
	require.NoError(t, err)
	return d, netlist.NewTracer(nil, d)
}

func TestHighlightReplaces(t *testing.T) {
	d, tr := fixture(t)

	s := Reduce(d, State{}, Highlight{Net: tr.TraceID(d, "W1")})
	assert.Equal(t, []string{"W1", "R1"}, s.Highlighted)
	assert.True(t, s.IsHighlighted("R1"))
	assert.Equal(t, []diagram.Point{diagram.Pt(10, 10)}, s.Terminals())

	s = Reduce(d, s, Highlight{Net: tr.TraceID(d, "W2")})
	assert.Equal(t, []string{"W2", "C1"}, s.Highlighted)
	assert.False(t, s.IsHighlighted("W1"), "non-additive highlight clears the previous one")
	assert.Len(t, s.Saved, 2)
}

func TestHighlightAdditive(t *testing.T) {
	d, tr := fixture(t)

	s := Reduce(d, State{}, Highlight{Net: tr.TraceID(d, "W1")})
	s = Reduce(d, s, Highlight{Net: tr.TraceID(d, "C1"), Additive: true})
	assert.Equal(t, []string{"W1", "R1", "C1", "W2"}, s.Highlighted)

	// Re-highlighting an already highlighted net keeps the first saved style.
	saved := s.Saved["R1"]
	s = Reduce(d, s, Highlight{Net: tr.TraceID(d, "R1"), Additive: true})
	assert.Equal(t, saved, s.Saved["R1"])
	assert.Len(t, s.Highlighted, 4)
}

func TestHighlightEmptyNetClears(t *testing.T) {
	d, tr := fixture(t)

	s := Reduce(d, State{}, Highlight{Net: tr.TraceID(d, "W1")})
	bgNet := tr.Trace(d.Background(), d.Shapes)
	require.True(t, bgNet.IsEmpty())

	s = Reduce(d, s, Highlight{Net: bgNet, Additive: true})
	assert.Empty(t, s.Highlighted)
	assert.Nil(t, s.Saved)
	assert.Nil(t, s.Terminals())
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	d, tr := fixture(t)

	first := Reduce(d, State{}, Highlight{Net: tr.TraceID(d, "W1")})
	snapshot := map[string]diagram.Style{}
	for k, v := range first.Saved {
		snapshot[k] = v
	}
	ids := append([]string(nil), first.Highlighted...)

	_ = Reduce(d, first, Highlight{Net: tr.TraceID(d, "W2"), Additive: true})
	_ = Reduce(d, first, ClearHighlight{})
	_ = Reduce(d, first, Search{Query: "r1", Components: components})

	if diff := cmp.Diff(snapshot, first.Saved); diff != "" {
		t.Errorf("Saved mutated:\n%s", diff)
	}
	assert.Equal(t, ids, first.Highlighted)
	assert.Nil(t, first.Matched)
}

// Clearing after any sequence of highlights restores every shape's style.
func TestStyleRoundTrip(t *testing.T) {
	d, tr := fixture(t)
	p := DefaultPalette()
	before := Project(d, State{}, p)

	sequences := [][]Highlight{
		{{Net: tr.TraceID(d, "W1")}},
		{{Net: tr.TraceID(d, "W1")}, {Net: tr.TraceID(d, "W1")}, {Net: tr.TraceID(d, "W1")}},
		{{Net: tr.TraceID(d, "W1")}, {Net: tr.TraceID(d, "W2"), Additive: true}, {Net: tr.TraceID(d, "R1"), Additive: true}},
		{{Net: tr.TraceID(d, "C1"), Additive: true}, {Net: tr.TraceID(d, "W1")}, {Net: tr.TraceID(d, "W2"), Additive: true}},
	}

	for i, seq := range sequences {
		s := State{}
		for _, h := range seq {
			s = Reduce(d, s, h)
		}
		if len(Changed(d, Project(d, s, p))) == 0 {
			t.Fatalf("sequence %d: highlight changed nothing", i)
		}
		s = Reduce(d, s, ClearHighlight{})
		if diff := cmp.Diff(before, Project(d, s, p)); diff != "" {
			t.Errorf("sequence %d: styles not restored (-want +got):\n%s", i, diff)
		}
	}
}

func TestSearchMatchesDesignator(t *testing.T) {
	d, _ := fixture(t)

	s := Reduce(d, State{}, Search{Query: "r1", Components: components})
	assert.Equal(t, "r1", s.Query)
	assert.Equal(t, []string{"R1"}, designators(s.Results))
	assert.Equal(t, map[string]bool{"R1": true}, s.Matched)
	assert.Equal(t, map[string]bool{"W1": true, "W2": true, "C1": true}, s.Dimmed)

	// Clearing the query restores both components and dims nothing.
	s = Reduce(d, s, Search{Query: "", Components: components})
	assert.False(t, s.Searching())
	assert.Equal(t, []string{"R1", "C1"}, designators(s.Results))
	assert.Empty(t, s.Matched)
	assert.Empty(t, s.Dimmed)
}

func TestSearchIsPure(t *testing.T) {
	d, _ := fixture(t)

	a := Reduce(d, State{}, Search{Query: "  CAP ", Components: components})
	mid := Reduce(d, a, Search{Query: "zzz", Components: components})
	b := Reduce(d, mid, Search{Query: "cap", Components: components})

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("search depends on previous state:\n%s", diff)
	}
	assert.Equal(t, map[string]bool{"C1": true}, a.Matched)
	assert.Empty(t, mid.Matched)
	assert.Len(t, mid.Dimmed, 4)
}

func TestSearchMissingDesignator(t *testing.T) {
	d, _ := fixture(t)

	s := Reduce(d, State{}, Search{Query: "u7", Components: []catalog.Descriptor{{Designator: "U7"}}})
	assert.Equal(t, []string{"U7"}, designators(s.Results), "descriptor still listed")
	assert.Empty(t, s.Matched, "no shape carries the designator")
}

func TestOverlaysIndependent(t *testing.T) {
	d, tr := fixture(t)

	s := Reduce(d, State{}, Highlight{Net: tr.TraceID(d, "W1")})
	s = Reduce(d, s, Search{Query: "c1", Components: components})
	s = Reduce(d, s, ClearSearch{})
	assert.Equal(t, []string{"W1", "R1"}, s.Highlighted, "clearing search keeps highlight")

	s = Reduce(d, s, Search{Query: "c1", Components: components})
	s = Reduce(d, s, ClearHighlight{})
	assert.Equal(t, map[string]bool{"C1": true}, s.Matched, "clearing highlight keeps search")
}

func designators(list []catalog.Descriptor) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Designator)
	}
	return out
}
