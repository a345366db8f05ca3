package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

var (
	traceAdditive bool
	traceJSON     bool
	traceOpts     traceFlags
)

var traceCmd = &cobra.Command{
	Use:   "trace <diagram.svg> <shape-id>...",
	Short: "Trace the net reachable from shapes",
	Long: `Trace the electrical net reachable from each given shape. Shapes are
listed in discovery order, seed first, followed by the junction points.

With --additive the nets of all seeds are merged into one, the way
shift-click selection works in the viewer. Unknown, background and
excluded ids yield an empty net.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().BoolVar(&traceAdditive, "additive", false, "merge the nets of all seeds")
	traceCmd.Flags().BoolVar(&traceJSON, "json", false, "print JSON")
	traceOpts.register(traceCmd)
}

type traceShape struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type traceResult struct {
	Seeds     []string        `json:"seeds"`
	Shapes    []traceShape    `json:"shapes"`
	Terminals []diagram.Point `json:"terminals"`
}

func runTrace(cmd *cobra.Command, args []string) error {
	d, err := loadDiagram(args[0])
	if err != nil {
		return err
	}
	nc, err := traceOpts.netlistConfig(cmd)
	if err != nil {
		return err
	}
	tracer := netlist.NewTracer(nc, d)

	var results []traceResult
	var merged *netlist.Net
	for _, id := range args[1:] {
		if d.Shape(id) == nil {
			logger.Warn("unknown shape id", zap.String("shape", id))
		}
		net := tracer.TraceID(d, id)
		logger.Debug("net traced", zap.String("seed", id), zap.Int("shapes", net.Len()))

		if traceAdditive {
			merged = netlist.Merge(merged, net)
			continue
		}
		results = append(results, newTraceResult([]string{id}, net))
	}
	if traceAdditive {
		results = append(results, newTraceResult(args[1:], merged))
	}

	out := cmd.OutOrStdout()
	if traceJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printTrace(out, r)
	}
	return nil
}

func newTraceResult(seeds []string, net *netlist.Net) traceResult {
	r := traceResult{
		Seeds:     seeds,
		Shapes:    []traceShape{},
		Terminals: []diagram.Point{},
	}
	if net == nil {
		return r
	}
	for _, s := range net.Shapes {
		r.Shapes = append(r.Shapes, traceShape{ID: s.ID, Kind: s.Kind.String()})
	}
	r.Terminals = append(r.Terminals, net.Terminals...)
	return r
}

func printTrace(out io.Writer, r traceResult) {
	fmt.Fprintf(out, "Net from %s: %d shape(s), %d junction(s)\n",
		strings.Join(r.Seeds, "+"), len(r.Shapes), len(r.Terminals))
	for _, s := range r.Shapes {
		fmt.Fprintf(out, "  %-16s %s\n", s.ID, s.Kind)
	}
	if len(r.Terminals) > 0 {
		fmt.Fprintln(out, "Junctions:")
		for _, p := range r.Terminals {
			fmt.Fprintf(out, "  (%g, %g)\n", p.X, p.Y)
		}
	}
}
