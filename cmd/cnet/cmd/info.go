package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <diagram.svg>",
	Short: "Show diagram information",
	Long: `Display a summary of an SVG diagram: size, viewBox, shape counts per
kind, the designated background and the effective proximity threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := loadDiagram(args[0])
	if err != nil {
		return err
	}
	nc := cfg.NetlistConfig()
	if err := nc.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Diagram: %s\n", args[0])
	if d.Width > 0 || d.Height > 0 {
		fmt.Fprintf(out, "Size: %g x %g\n", d.Width, d.Height)
	}
	if !d.ViewBox.IsEmpty() {
		fmt.Fprintf(out, "ViewBox: %g %g %g %g\n",
			d.ViewBox.Min.X, d.ViewBox.Min.Y, d.ViewBox.Width(), d.ViewBox.Height())
	}
	fmt.Fprintln(out)

	counts := d.CountByKind()
	fmt.Fprintln(out, "Shapes:")
	for _, k := range []diagram.Kind{
		diagram.KindLine, diagram.KindPath, diagram.KindPolyline,
		diagram.KindPolygon, diagram.KindRect, diagram.KindCircle, diagram.KindUnknown,
	} {
		if counts[k] > 0 {
			fmt.Fprintf(out, "  %-9s %d\n", k.String()+":", counts[k])
		}
	}
	fmt.Fprintf(out, "  %-9s %d\n", "total:", len(d.Shapes))
	fmt.Fprintln(out)

	if bg := d.Background(); bg != nil {
		fmt.Fprintf(out, "Background: %s (%s)\n", bg.ID, bg.Kind)
	} else {
		fmt.Fprintln(out, "Background: none")
	}

	tracer := netlist.NewTracer(nc, d)
	traceable := 0
	for _, s := range d.Shapes {
		if tracer.Participates(s) && len(netlist.Terminals(s, nc)) > 0 {
			traceable++
		}
	}
	fmt.Fprintf(out, "Traceable shapes: %d\n", traceable)
	fmt.Fprintf(out, "Threshold: %g\n", nc.EffectiveThreshold(d))
	return nil
}
