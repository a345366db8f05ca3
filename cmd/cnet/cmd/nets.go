package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

var (
	netsFormat     string
	netsComponents []string
	netsOutput     string
	netsOpts       traceFlags
)

var netsCmd = &cobra.Command{
	Use:   "nets <diagram.svg>",
	Short: "Partition a diagram into nets",
	Long: `Partition every traceable shape of a diagram into nets and print the
result. Formats:
  text   one line per multi-shape net (default)
  json   every net with its shapes and junctions
  kicad  KiCad-style netlist (export (components) (nets)); component
         descriptors from --components fill in value and description`,
	Args: cobra.ExactArgs(1),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
	netsCmd.Flags().StringVarP(&netsFormat, "format", "f", "text", "output format: text, json or kicad")
	netsCmd.Flags().StringSliceVarP(&netsComponents, "components", "c", nil, "component descriptor files (.json, .yaml, .net)")
	netsCmd.Flags().StringVarP(&netsOutput, "output", "o", "", "write to file instead of stdout")
	netsOpts.register(netsCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	d, err := loadDiagram(args[0])
	if err != nil {
		return err
	}
	nc, err := netsOpts.netlistConfig(cmd)
	if err != nil {
		return err
	}
	repo, err := loadComponents(netsComponents)
	if err != nil {
		return err
	}

	nl := netlist.Partition(d, nc)
	logger.Info("diagram partitioned",
		zap.String("diagram", args[0]),
		zap.Int("nets", nl.NetCount()),
		zap.Int("multi_shape_nets", nl.MultiShapeNetCount()),
	)

	var data []byte
	switch strings.ToLower(netsFormat) {
	case "text":
		var b strings.Builder
		writeNetsText(&b, nl)
		data = []byte(b.String())
	case "json":
		data, err = nl.ExportJSON()
		if err != nil {
			return err
		}
		data = append(data, '\n')
	case "kicad":
		s, err := nl.ExportKiCad(repo)
		if err != nil {
			return err
		}
		data = []byte(s)
	default:
		return fmt.Errorf("unknown format %q (want text, json or kicad)", netsFormat)
	}

	if netsOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(netsOutput, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", netsOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d net(s) to %s\n", nl.NetCount(), netsOutput)
	return nil
}

func writeNetsText(w io.Writer, nl *netlist.Netlist) {
	fmt.Fprintf(w, "Nets: %d (%d with more than one shape)\n", nl.NetCount(), nl.MultiShapeNetCount())
	for i, net := range nl.Nets {
		if net.Len() < 2 {
			continue
		}
		fmt.Fprintf(w, "  Net-%d: %s\n", i+1, strings.Join(net.IDs(), ", "))
	}
}
