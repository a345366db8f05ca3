package main

import (
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/internal/config"
	"github.com/OpenTraceLab/circuitnet/internal/logging"
	"github.com/OpenTraceLab/circuitnet/internal/viewer"
)

var (
	components []string
	watchFile  bool
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "circuit-viewer [diagram.svg]",
	Short: "Interactive viewer for SVG circuit diagrams",
	Long: `Open an SVG circuit diagram in a window. Click a wire to highlight its
net, shift-click to add nets, click the background or press Esc to clear.
Type in the search box to find components by designator, type, value or
description.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&components, "components", "c", nil, "component descriptor files (.json, .yaml, .net)")
	rootCmd.Flags().BoolVar(&watchFile, "watch", false, "reload the diagram when the file changes")
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ~/.config/circuitnet/config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogOptions(verbose))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	opts := viewer.Options{
		Config:         cfg,
		Logger:         logger,
		ComponentFiles: components,
		Watch:          watchFile,
	}
	if len(args) == 1 {
		opts.DiagramPath = args[0]
	}

	w := new(app.Window)
	w.Option(app.Title("Circuit Viewer"))
	w.Option(app.Size(unit.Dp(1200), unit.Dp(800)))

	v, err := viewer.New(w, opts)
	if err != nil {
		return err
	}

	go func() {
		err := v.Run()
		if err != nil {
			logger.Error("viewer exited", zap.Error(err))
		}
		_ = logger.Sync()
		if err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}
