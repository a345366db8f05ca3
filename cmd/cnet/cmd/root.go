package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/internal/config"
	"github.com/OpenTraceLab/circuitnet/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cnet",
	Short: "circuitnet - electrical connectivity for SVG circuit diagrams",
	Long: `cnet analyzes vector circuit diagrams (SVG). It traces the net reachable
from a shape, partitions a diagram into nets, searches component descriptors
and exports highlighted views.

Examples:
  cnet info amp.svg                          # Shape counts and background
  cnet trace amp.svg W12                     # Net reachable from W12
  cnet nets amp.svg --format kicad -c parts.yaml
  cnet search parts.yaml resistor --diagram amp.svg
  cnet export amp.svg --trace W12 --scale 2 -o amp-net.png`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogOptions(verbose))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/circuitnet/config.yaml)")
}
