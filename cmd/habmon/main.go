// habmon monitors the life-support consumables of a closed habitat.
//
// It serves the resource API and live event stream, runs the consumption
// simulation and provides a terminal dashboard over the same database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/database"
	"github.com/habmon/habmon/internal/tui"
)

const programName = "habmon"

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", programName)
}

// env is the loaded configuration and logger shared by every command.
type env struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	closers []func() error
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Error("cleanup failed", "error", err)
		}
	}
}

// setup loads the configuration and configures logging. quiet keeps logs
// off the terminal when no log file is configured.
func setup(quiet bool) (*env, error) {
	cfg, cfgPath, err := config.Load(configFile, true)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	e := &env{cfg: cfg, cfgPath: cfgPath}

	level := logLevel(cfg.Logging.Level)
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: globalFlags.debug}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	var handler slog.Handler
	switch {
	case logPath != "":
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		e.closers = append(e.closers, logFile.Close)
		handler = slog.NewJSONHandler(logFile, opts)
	case quiet:
		handler = slog.NewTextHandler(io.Discard, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	e.logger = slog.New(handler)
	slog.SetDefault(e.logger)

	// Toss the undo func
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		e.logger.Warn("setting GOMAXPROCS failed", "error", err)
	}

	e.logger.Info("habmon starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	return e, nil
}

func logLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openDatabase opens the configured database and applies pending
// migrations.
func (e *env) openDatabase(ctx context.Context) (*database.DB, error) {
	dbPath, err := config.EnsureDataDir(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("ensuring data directory: %w", err)
	}

	backupDir, err := config.BackupDir(e.cfg)
	if err != nil {
		e.logger.Warn("failed to create backup directory", "error", err)
		backupDir = ""
	}

	db, err := database.Open(dbPath, &e.cfg.Database, backupDir, e.logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	e.closers = append(e.closers, func() error {
		e.logger.Info("closing database")
		return db.Close()
	})

	if err := db.CheckIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("database integrity check failed: %w", err)
	}

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	result, err := migrator.MigrateUp(ctx)
	if err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if len(result.Applied) > 0 {
		e.logger.Info("applied migrations",
			"count", len(result.Applied),
			"to_version", result.TargetVersion,
		)
	}

	return db, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Habitat life-support resource monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(dashboardCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(tickCommand())
	rootCmd.AddCommand(exportCommand())
	rootCmd.AddCommand(versionCommand())

	tui.Version = Version
	tui.BuildTime = BuildTime

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (built %s)\n", programName, Version, BuildTime)
		},
	}
}
