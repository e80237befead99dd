package cli

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/app"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/metrics"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
)

func (c *CLI) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the training window",
		Long: `Open the training window for the configured procedure.

Drag tools from the tray onto the work area. Q/E rotate the insertion driver,
R restarts the run, F11 toggles fullscreen. With --metrics-addr set, training
metrics are served in Prometheus format at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	flags.Bool("show-hotspots", false, "draw target tolerance circles")
	flags.Bool("show-needle-tip", false, "draw the driver needle tip while dragging")
	flags.Bool("allow-skip", false, "let N skip the current step")
	flags.Float64("scale", 1, "window scale")

	c.bindFlags(flags, map[string]string{
		"metrics_addr":          "metrics-addr",
		"debug.show_hotspots":   "show-hotspots",
		"debug.show_needle_tip": "show-needle-tip",
		"debug.allow_skip":      "allow-skip",
		"window.scale":          "scale",
	})

	return cmd
}

func (c *CLI) run(ctx context.Context) error {
	cfg, err := c.procedure()
	if err != nil {
		return err
	}

	var hooks trainer.Hooks
	if c.settings.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector := metrics.NewCollector(nil)
		if err := collector.Register(reg); err != nil {
			return err
		}
		hooks = collector.Hooks()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(ctx, c.settings.MetricsAddr, reg, c.Logger); err != nil {
				c.Logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	a, err := app.NewApp(app.Config{
		Settings:  c.settings,
		Procedure: cfg,
		Logger:    c.Logger,
		Hooks:     hooks,
	})
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(a.WindowSize())
	ebiten.SetWindowTitle(c.settings.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	c.Logger.Info("starting trainer", "procedure", cfg.ID)
	return ebiten.RunGame(a)
}
