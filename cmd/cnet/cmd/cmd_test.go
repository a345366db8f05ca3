package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/circuitnet/pkg/export"
)

const circuitSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <rect id="background" x="0" y="0" width="100" height="100" fill="white"/>
  <line id="W1" x1="10" y1="10" x2="40" y2="10" stroke="black"/>
  <line id="W2" x1="40" y1="10" x2="40" y2="40" stroke="black"/>
  <line id="W3" x1="70" y1="70" x2="90" y2="70" stroke="black"/>
  <rect id="R1" x="38" y="40" width="4" height="10" stroke="black" fill="none"/>
</svg>`

const componentsYAML = `components:
  - designator: R1
    type: resistor
    value: 10k
    description: feedback resistor
  - designator: C7
    type: capacitor
    value: 100n
`

type fixture struct {
	dir        string
	diagram    string
	components string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:        dir,
		diagram:    filepath.Join(dir, "circuit.svg"),
		components: filepath.Join(dir, "parts.yaml"),
	}
	require.NoError(t, os.WriteFile(f.diagram, []byte(circuitSVG), 0o644))
	require.NoError(t, os.WriteFile(f.components, []byte(componentsYAML), 0o644))
	return f
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, f fixture, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(f.dir, "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInfoCommand(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, f, "info", f.diagram)
	require.NoError(t, err)

	for _, want := range []string{
		"ViewBox: 0 0 100 100",
		"line:",
		"total:    5",
		"Background: background (rect)",
		"Traceable shapes: 4",
		"Threshold: 6",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTraceCommand(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "single seed",
			args: []string{"trace", f.diagram, "W1"},
			wantContain: []string{
				"Net from W1: 3 shape(s), 2 junction(s)",
				"W2", "R1", "(40, 10)", "(40, 40)",
			},
		},
		{
			name:        "separate seeds",
			args:        []string{"trace", f.diagram, "W1", "W3"},
			wantContain: []string{"Net from W1: 3 shape(s)", "Net from W3: 1 shape(s), 0 junction(s)"},
		},
		{
			name:        "additive",
			args:        []string{"trace", f.diagram, "W1", "W3", "--additive"},
			wantContain: []string{"Net from W1+W3: 4 shape(s), 2 junction(s)"},
		},
		{
			name:        "unknown id",
			args:        []string{"trace", f.diagram, "nope"},
			wantContain: []string{"Net from nope: 0 shape(s)"},
		},
		{
			name:        "background seed",
			args:        []string{"trace", f.diagram, "background"},
			wantContain: []string{"Net from background: 0 shape(s)"},
		},
		{
			name:        "threshold override",
			args:        []string{"trace", f.diagram, "W3", "--threshold", "40"},
			wantContain: []string{"Net from W3: 4 shape(s)"},
		},
		{
			name:    "negative threshold",
			args:    []string{"trace", f.diagram, "W1", "--threshold", "-1"},
			wantErr: true,
		},
		{
			name:    "zero threshold",
			args:    []string{"trace", f.diagram, "W1", "--threshold", "0"},
			wantErr: true,
		},
		{
			name:    "missing id",
			args:    []string{"trace", f.diagram},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, f, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			require.NoError(t, err, out)
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
				}
			}
		})
	}
}

func TestTraceCommandJSON(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, f, "trace", f.diagram, "W2", "--json")
	require.NoError(t, err)

	var results []traceResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, []string{"W2"}, results[0].Seeds)
	assert.Equal(t, []traceShape{{"W2", "line"}, {"W1", "line"}, {"R1", "rect"}}, results[0].Shapes)
	assert.Len(t, results[0].Terminals, 2)
}

func TestNetsCommand(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, f, "nets", f.diagram)
	require.NoError(t, err)
	assert.Contains(t, out, "Nets: 2 (1 with more than one shape)")
	assert.Contains(t, out, "Net-1: W1, W2, R1")

	out, err = execute(t, f, "nets", f.diagram, "--format", "json")
	require.NoError(t, err)
	var doc struct {
		NetCount  int `json:"net_count"`
		MultiNets int `json:"multi_shape_nets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.NetCount)
	assert.Equal(t, 1, doc.MultiNets)

	out, err = execute(t, f, "nets", f.diagram, "--format", "kicad", "-c", f.components)
	require.NoError(t, err)
	assert.Contains(t, out, "(comp (ref R1) (value 10k)")
	assert.Contains(t, out, "(node (ref R1) (pin 1))")
	assert.NotContains(t, out, "C7", "descriptors without a shape are not components")

	_, err = execute(t, f, "nets", f.diagram, "--format", "xml")
	assert.Error(t, err)
}

func TestNetsCommandOutputFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "nets.json")

	out, err := execute(t, f, "nets", f.diagram, "-f", "json", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 net(s)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestSearchCommand(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, f, "search", f.components)
	require.NoError(t, err)
	assert.Contains(t, out, "Components: 2 of 2")

	out, err = execute(t, f, "search", f.components, "RESISTOR")
	require.NoError(t, err)
	assert.Contains(t, out, "Components: 1 of 2")
	assert.Contains(t, out, "R1 10k (resistor)")
	assert.NotContains(t, out, "C7")

	out, err = execute(t, f, "search", f.components, "resistor", "--diagram", f.diagram)
	require.NoError(t, err)
	assert.Contains(t, out, "R1 10k (resistor) *")
	assert.Contains(t, out, "Matched shapes: R1")
	assert.Contains(t, out, "Dimmed shapes: 3")

	_, err = execute(t, f, "search", filepath.Join(f.dir, "parts.txt"))
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	f := newFixture(t)

	svgPath := filepath.Join(f.dir, "view.svg")
	out, err := execute(t, f, "export", f.diagram, "--trace", "W1", "-o", svgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 highlighted")

	data, err := os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="W1"`)
	assert.Contains(t, string(data), `stroke="#ff3b30"`)

	pngPath := filepath.Join(f.dir, "view.png")
	_, err = execute(t, f, "export", f.diagram, "-c", f.components, "-q", "resistor", "--scale", "2", "-o", pngPath)
	require.NoError(t, err)
	data, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestExportCommandErrors(t *testing.T) {
	f := newFixture(t)

	_, err := execute(t, f, "export", f.diagram, "--scale", "5", "-o", filepath.Join(f.dir, "x.png"))
	assert.ErrorIs(t, err, export.ErrUnsupportedScale)

	_, err = execute(t, f, "export", f.diagram, "-o", filepath.Join(f.dir, "x.gif"))
	assert.ErrorIs(t, err, export.ErrUnknownFormat)

	_, err = execute(t, f, "export", f.diagram)
	assert.Error(t, err, "output is required")
}

func TestBadConfig(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("trace:\n  threshold: -3\n"), 0o644))

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--config", bad, "info", f.diagram})
	assert.Error(t, rootCmd.Execute())
}
