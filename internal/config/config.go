// Package config provides configuration management for habmon.
// Configurations are loaded from TOML files with XDG-compliant paths and
// may be overridden through HABMON_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Habitat    HabitatConfig    `toml:"habitat"`
	Simulation SimulationConfig `toml:"simulation"`
	Server     ServerConfig     `toml:"server"`
	Display    DisplayConfig    `toml:"display"`
	Logging    LoggingConfig    `toml:"logging"`
	Database   DatabaseConfig   `toml:"database"`
}

// HabitatConfig describes the monitored habitat.
type HabitatConfig struct {
	Name              string `toml:"name"               envconfig:"HABMON_HABITAT_NAME"`
	InitialPopulation int    `toml:"initial_population" envconfig:"HABMON_INITIAL_POPULATION"`
	SeedDefaults      bool   `toml:"seed_defaults"      envconfig:"HABMON_SEED_DEFAULTS"`
}

// SimulationConfig controls the consumption decay loop.
type SimulationConfig struct {
	Enabled      bool     `toml:"enabled"       envconfig:"HABMON_SIMULATION_ENABLED"`
	TickInterval Duration `toml:"tick_interval" envconfig:"HABMON_TICK_INTERVAL"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"             envconfig:"HABMON_ADDR"`
	CORSOrigin      string   `toml:"cors_origin"      envconfig:"HABMON_CORS_ORIGIN"`
	RateLimitRPS    float64  `toml:"rate_limit_rps"   envconfig:"HABMON_RATE_LIMIT_RPS"`
	RateLimitBurst  int      `toml:"rate_limit_burst" envconfig:"HABMON_RATE_LIMIT_BURST"`
	StreamHeartbeat Duration `toml:"stream_heartbeat" envconfig:"HABMON_STREAM_HEARTBEAT"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" envconfig:"HABMON_SHUTDOWN_TIMEOUT"`
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme     ColorScheme `toml:"color_scheme"`
	DateFormat      string      `toml:"date_format"`
	TimeFormat      string      `toml:"time_format"`
	RefreshInterval Duration    `toml:"refresh_interval"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level" envconfig:"HABMON_LOG_LEVEL"`
	File  string   `toml:"file"  envconfig:"HABMON_LOG_FILE"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"                  envconfig:"HABMON_DB_PATH"`
	BackupIntervalHours int    `toml:"backup_interval_hours" envconfig:"HABMON_BACKUP_INTERVAL_HOURS"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Duration wraps time.Duration so it can be written as "30s" in TOML and
// in environment variables.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Habitat.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("habitat: %w", err))
	}

	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the habitat configuration is valid.
func (h *HabitatConfig) Validate() error {
	var errs []error

	if h.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}

	if h.InitialPopulation < 1 {
		errs = append(errs, errors.New("initial_population must be at least 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the simulation configuration is valid.
func (s *SimulationConfig) Validate() error {
	if s.TickInterval.Duration < time.Second {
		return fmt.Errorf("tick_interval must be at least 1s, got %s", s.TickInterval.Duration)
	}
	return nil
}

// Validate checks that the server configuration is valid.
func (s *ServerConfig) Validate() error {
	var errs []error

	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		errs = append(errs, fmt.Errorf("invalid addr %q: %w", s.Addr, err))
	}

	if s.RateLimitRPS < 0 {
		errs = append(errs, errors.New("rate_limit_rps must be non-negative"))
	}

	if s.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate_limit_burst must be non-negative"))
	}

	if s.StreamHeartbeat.Duration <= 0 {
		errs = append(errs, errors.New("stream_heartbeat must be positive"))
	}

	if s.ShutdownTimeout.Duration <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		return fmt.Errorf("invalid color_scheme: %s", d.ColorScheme)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}

	if d.BackupIntervalHours < 0 {
		errs = append(errs, errors.New("backup_interval_hours must be non-negative"))
	}

	if d.BackupRetentionDays < 0 {
		errs = append(errs, errors.New("backup_retention_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Habitat: HabitatConfig{
			Name:              "Ares Station",
			InitialPopulation: 10,
			SeedDefaults:      true,
		},
		Simulation: SimulationConfig{
			Enabled:      true,
			TickInterval: Duration{30 * time.Second},
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			CORSOrigin:      "*",
			RateLimitRPS:    20,
			RateLimitBurst:  40,
			StreamHeartbeat: Duration{15 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Display: DisplayConfig{
			ColorScheme:     ColorSchemeGreenPhosphor,
			DateFormat:      "2006-01-02",
			TimeFormat:      "15:04:05",
			RefreshInterval: Duration{5 * time.Second},
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "",
		},
		Database: DatabaseConfig{
			Path:                "habmon.db",
			BackupIntervalHours: 24,
			BackupRetentionDays: 7,
		},
	}
}
