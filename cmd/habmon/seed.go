package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/database/seed"
)

func seedCommand() *cobra.Command {
	var (
		population int
		fill       float64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the built-in resources and the initial colony population",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			db, err := e.openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			cfg := seed.DefaultConfig(e.cfg.Habitat.InitialPopulation)
			if cmd.Flags().Changed("population") {
				cfg.Population = population
			}
			cfg.FillPercentage = fill

			result, err := seed.NewGenerator(db, cfg, e.logger).Generate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "population: %d\n", result.Population)
			fmt.Fprintf(out, "created:    %s\n", listOrNone(result.Created))
			fmt.Fprintf(out, "skipped:    %s\n", listOrNone(result.Skipped))
			return nil
		},
	}

	cmd.Flags().IntVar(&population, "population", config.Default().Habitat.InitialPopulation,
		"initial colony population when none is recorded")
	cmd.Flags().Float64Var(&fill, "fill", 100, "starting level of seeded resources in percent")

	return cmd
}

func listOrNone(codes []string) string {
	if len(codes) == 0 {
		return "none"
	}
	return strings.Join(codes, ", ")
}
