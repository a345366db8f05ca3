package sexpr

import (
	"testing"
)

func TestParseString(t *testing.T) {
	nodes, err := ParseString(`
# comment line
(comp (ref R1) (value 10k)
  (description "Chip \"thick\" film")
  (libsource (lib Device) (part R)))
atom`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}

	comp, ok := nodes[0].(*List)
	if !ok {
		t.Fatalf("expected list, got %T", nodes[0])
	}
	if comp.Key() != "comp" {
		t.Errorf("Key() = %q, want comp", comp.Key())
	}
	if v, ok := comp.Lookup("ref"); !ok || v != "R1" {
		t.Errorf("ref = %q, %v", v, ok)
	}
	if v, _ := comp.Lookup("description"); v != `Chip "thick" film` {
		t.Errorf("description = %q", v)
	}
	if v, _ := comp.Lookup("libsource", "part"); v != "R" {
		t.Errorf("libsource part = %q, want R", v)
	}
	if _, ok := comp.Lookup("footprint"); ok {
		t.Errorf("missing key should not be found")
	}
	if !nodes[1].IsAtom() || nodes[1].String() != "atom" {
		t.Errorf("second node = %v", nodes[1])
	}
}

func TestFindAll(t *testing.T) {
	nodes, err := ParseString(`(nets (net (code 1)) (x) (net (code 2)))`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	nets := nodes[0].(*List).FindAll("net")
	if len(nets) != 2 {
		t.Fatalf("expected 2 nets, got %d", len(nets))
	}
	if code, _ := nets[1].Lookup("code"); code != "2" {
		t.Errorf("second net code = %q", code)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{`(a (b)`, `)`, `(a "open`} {
		if _, err := ParseString(in); err == nil {
			t.Errorf("ParseString(%q) expected error", in)
		}
	}
}

func TestListString(t *testing.T) {
	nodes, err := ParseString(`(a  b (c d))`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if got := nodes[0].String(); got != "(a b (c d))" {
		t.Errorf("String() = %q", got)
	}
}
