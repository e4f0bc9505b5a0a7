package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/habmon/habmon/internal/apperr"
	"github.com/habmon/habmon/internal/services/resources"
)

func exportCommand() *cobra.Command {
	var out, from, to string

	cmd := &cobra.Command{
		Use:   "export CODE",
		Short: "Export the history of a resource as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromTime, err := parseBound(from, "from")
			if err != nil {
				return err
			}
			toTime, err := parseBound(to, "to")
			if err != nil {
				return err
			}

			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			db, err := e.openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = io.Writer(f)
			}

			svc := resources.NewService(db, resources.WithLogger(e.logger))
			return svc.ExportHistory(cmd.Context(), w, args[0], fromTime, toTime)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&from, "from", "", "earliest entry, RFC3339")
	cmd.Flags().StringVar(&to, "to", "", "latest entry, RFC3339")

	return cmd
}

func parseBound(v, name string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperr.Invalid("%s must be an RFC3339 timestamp: %v", name, err).WithMeta("field", name)
	}
	return &t, nil
}
