package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/database"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			dbPath, err := config.EnsureDataDir(e.cfg)
			if err != nil {
				return fmt.Errorf("ensuring data directory: %w", err)
			}
			db, err := database.Open(dbPath, &e.cfg.Database, "", e.logger)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			e.closers = append(e.closers, db.Close)

			migrator, err := database.NewMigrator(db)
			if err != nil {
				return fmt.Errorf("creating migrator: %w", err)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch action {
			case "down":
				result, err := migrator.MigrateDown(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "rolled back to version %d\n", result.TargetVersion)
			case "status":
				migrations, err := migrator.Status(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tDESCRIPTION\tAPPLIED")
				for _, m := range migrations {
					applied := "pending"
					if m.Applied {
						applied = m.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%03d\t%s\t%s\n", m.Version, m.Description, applied)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				stats, err := db.GetStats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s: %d bytes, wal %d bytes, %d pages (%d free), journal %s\n",
					stats.Path, stats.SizeBytes, stats.WALSizeBytes, stats.PageCount, stats.FreePageCount, stats.JournalMode)
			default:
				result, err := migrator.MigrateUp(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "applied %d migration(s), schema at version %d\n", len(result.Applied), result.TargetVersion)
			}
			return nil
		},
	}
}
