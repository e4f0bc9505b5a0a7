package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/simulation"
	"github.com/habmon/habmon/internal/util"
)

func tickCommand() *cobra.Command {
	var seconds float64

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Apply one consumption decay step and print the result",
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

			svc := resources.NewService(db,
				resources.WithLogger(e.logger),
				resources.WithDefaultPopulation(e.cfg.Habitat.InitialPopulation),
			)

			cards, err := svc.ApplyConsumptionDecay(cmd.Context(), seconds)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLEVEL\tQUANTITY\tAUTONOMY\tCRITICAL")
			for _, c := range cards {
				autonomy := "--"
				if c.AutonomyHours != nil {
					autonomy = util.FormatHours(*c.AutonomyHours)
				}
				fmt.Fprintf(w, "%s\t%.2f%%\t%.2f %s\t%s\t%t\n",
					c.Code, c.CurrentPercentage, c.CurrentQuantity, c.Unit, autonomy, c.IsCritical)
			}
			if flushErr := w.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
			return err
		},
	}

	cmd.Flags().Float64Var(&seconds, "seconds", simulation.DefaultInterval.Seconds(), "simulated elapsed time")

	return cmd
}
