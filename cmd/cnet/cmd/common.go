package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
)

// traceFlags are shared by the commands that trace nets.
type traceFlags struct {
	threshold float64
	curves    bool
}

func (f *traceFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.threshold, "threshold", netlist.DefaultThreshold, "proximity threshold in diagram units (overrides config)")
	cmd.Flags().BoolVar(&f.curves, "curves", false, "treat curve end points as terminals (overrides config)")
}

// netlistConfig returns the configured trace settings with any flag
// overrides applied, validated.
func (f *traceFlags) netlistConfig(cmd *cobra.Command) (*netlist.Config, error) {
	nc := cfg.NetlistConfig()
	if cmd.Flags().Changed("threshold") {
		if !(f.threshold > 0) {
			return nil, fmt.Errorf("--threshold must be positive, got %v", f.threshold)
		}
		nc.Threshold = f.threshold
	}
	if cmd.Flags().Changed("curves") {
		nc.ResolveCurveEndpoints = f.curves
	}
	if err := nc.Validate(); err != nil {
		return nil, err
	}
	return nc, nil
}

func loadDiagram(path string) (*diagram.Diagram, error) {
	d, err := diagram.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing diagram: %w", err)
	}
	logger.Debug("diagram parsed", zap.String("path", path), zap.Int("shapes", len(d.Shapes)))
	return d, nil
}

func loadComponents(paths []string) (*catalog.MemoryRepository, error) {
	repo := catalog.NewMemoryRepository()
	if err := repo.LoadFiles(paths...); err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		logger.Debug("components loaded", zap.Strings("files", paths), zap.Int("count", repo.Len()))
	}
	return repo, nil
}
