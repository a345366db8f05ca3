package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var components = []Descriptor{
	{Designator: "R1", Type: "resistor", Value: "10k", Description: "Pull-up for  RESET line"},
	{Designator: "C1", Type: "capacitor", Value: "100nF", Description: "Decoupling"},
	{Designator: "U1", Type: "MCU", Value: "STM32F103", Description: "Main controller"},
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"   ":              "",
		"R1":               "r1",
		"  Pull-UP\t for ": "pull-up for",
		"a\n\nb":           "a b",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"r1", []string{"R1"}},
		{"R1", []string{"R1"}},
		{"", []string{"R1", "C1", "U1"}},
		{"   ", []string{"R1", "C1", "U1"}},
		{"reset   line", []string{"R1"}},
		{"c", []string{"C1", "U1"}},
		{"100nf", []string{"C1"}},
		{"stm32", []string{"U1"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		got := designators(Filter(components, tt.query))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestFilterIsPure(t *testing.T) {
	input := append([]Descriptor(nil), components...)
	first := Filter(input, "r1")
	second := Filter(input, "r1")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Filter not deterministic:\n%s", diff)
	}
	if diff := cmp.Diff(components, input); diff != "" {
		t.Errorf("Filter modified its input:\n%s", diff)
	}
}

func TestDescriptorLabel(t *testing.T) {
	if got := components[0].Label(); got != "R1 10k (resistor)" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Descriptor{Designator: "X9"}).Label(); got != "X9" {
		t.Errorf("Label() = %q", got)
	}
}

func designators(list []Descriptor) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Designator)
	}
	return out
}
