package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/habmon/habmon/internal/api"
	"github.com/habmon/habmon/internal/database/seed"
	"github.com/habmon/habmon/internal/metrics"
	"github.com/habmon/habmon/internal/realtime"
	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/simulation"
)

func serveCommand() *cobra.Command {
	var (
		addr         string
		noSimulation bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resource API and run the consumption simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			if addr != "" {
				e.cfg.Server.Addr = addr
			}
			if noSimulation {
				e.cfg.Simulation.Enabled = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serveRun(ctx, e)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().BoolVar(&noSimulation, "no-simulation", false, "do not run the consumption decay loop")

	return cmd
}

func serveRun(ctx context.Context, e *env) error {
	db, err := e.openDatabase(ctx)
	if err != nil {
		return err
	}

	m := metrics.New()
	hub := realtime.NewHub(e.logger, m)
	defer hub.Close()

	svc := resources.NewService(db,
		resources.WithLogger(e.logger),
		resources.WithNotifiers(hub, m),
		resources.WithDefaultPopulation(e.cfg.Habitat.InitialPopulation),
	)

	if e.cfg.Habitat.SeedDefaults {
		gen := seed.NewGenerator(db, seed.DefaultConfig(e.cfg.Habitat.InitialPopulation), e.logger)
		if _, err := gen.Generate(ctx); err != nil {
			return fmt.Errorf("seeding defaults: %w", err)
		}
	}

	cards, err := svc.ListForDashboard(ctx)
	if err != nil {
		return err
	}
	m.SetResources(cards)

	server := api.NewServer(e.cfg.Server.Addr, api.NewRouter(api.Dependencies{
		Resources: svc,
		Hub:       hub,
		DB:        db,
		Metrics:   m,
		Server:    e.cfg.Server,
		Logger:    e.logger,
	}))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.logger.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if e.cfg.Simulation.Enabled {
		scheduler := simulation.NewScheduler(svc, e.cfg.Simulation.TickInterval.Duration, e.logger, m)
		g.Go(func() error {
			err := scheduler.Run(gctx)
			stats := scheduler.Stats()
			e.logger.Info("decay scheduler summary", "ticks", stats.Ticks, "failures", stats.Failures)
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return shutdown(e, server, hub)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	e.logger.Info("habmon shutdown complete")
	return nil
}

// shutdown ends open event streams and drains in-flight requests.
func shutdown(e *env, server *http.Server, hub *realtime.Hub) error {
	e.logger.Info("shutting down", "timeout", e.cfg.Server.ShutdownTimeout.Duration)

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	e.logger.Debug("closing event streams", "subscribers", hub.SubscriberCount())
	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}
