package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/habmon/habmon/internal/realtime"
	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/simulation"
	"github.com/habmon/habmon/internal/tui"
)

func dashboardCommand() *cobra.Command {
	var simulate bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(true)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return dashboardRun(ctx, e, simulate)
		},
	}

	cmd.Flags().BoolVar(&simulate, "simulate", false,
		"run the consumption decay loop inside the dashboard; leave off when a server is running")

	return cmd
}

func dashboardRun(ctx context.Context, e *env, simulate bool) error {
	db, err := e.openDatabase(ctx)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(e.logger, nil)
	defer hub.Close()
	_, events := hub.Subscribe()

	svc := resources.NewService(db,
		resources.WithLogger(e.logger),
		resources.WithNotifiers(hub),
		resources.WithDefaultPopulation(e.cfg.Habitat.InitialPopulation),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if simulate {
		scheduler := simulation.NewScheduler(svc, e.cfg.Simulation.TickInterval.Duration, e.logger, nil)
		e.logger.Info("running decay scheduler in-process", "interval", scheduler.Interval())
		go func() {
			if err := scheduler.Run(ctx); err != nil {
				e.logger.Error("simulation stopped", "error", err)
			}
		}()
	}

	e.logger.Info("starting dashboard", "habitat", e.cfg.Habitat.Name, "simulate", simulate)
	return tui.Run(ctx, svc, e.cfg, tui.WithEvents(events))
}
