package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// DefaultConfigFileName is the standard configuration file name.
	DefaultConfigFileName = "habmon.toml"

	// XDGConfigSubdir is the subdirectory under XDG_CONFIG_HOME for habmon.
	XDGConfigSubdir = "habmon"

	// EnvPrefix is the prefix for environment overrides.
	EnvPrefix = "habmon"
)

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading config from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load attempts to load configuration from multiple sources in order of precedence:
// 1. Explicit path (if provided)
// 2. XDG config path (~/.config/habmon/habmon.toml)
// 3. Current working directory (./habmon.toml)
// 4. Default configuration (if createDefault is true)
//
// Environment overrides (including values from a .env file in the working
// directory) are applied on top of whichever source was used.
// Returns the loaded configuration and the path it was loaded from.
func Load(explicitPath string, createDefault bool) (*Config, string, error) {
	// Missing .env is the common case
	_ = godotenv.Load()

	if explicitPath != "" {
		cfg, err := loadFromFile(explicitPath)
		if err != nil {
			return nil, "", &LoadError{Path: explicitPath, Err: err}
		}
		return cfg, explicitPath, nil
	}

	xdgPath := xdgConfigPath()
	if xdgPath != "" && fileExists(xdgPath) {
		cfg, err := loadFromFile(xdgPath)
		if err != nil {
			return nil, "", &LoadError{Path: xdgPath, Err: err}
		}
		return cfg, xdgPath, nil
	}

	cwdPath := filepath.Join(".", DefaultConfigFileName)
	if fileExists(cwdPath) {
		cfg, err := loadFromFile(cwdPath)
		if err != nil {
			return nil, "", &LoadError{Path: cwdPath, Err: err}
		}
		return cfg, cwdPath, nil
	}

	if !createDefault {
		return nil, "", errors.New("no configuration file found; searched: " + xdgPath + ", " + cwdPath)
	}

	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, "", &LoadError{Path: "environment", Err: err}
	}

	defaultPath := cwdPath
	if xdgPath != "" {
		// Prefer XDG path if we can create the directory
		if err := os.MkdirAll(filepath.Dir(xdgPath), 0750); err == nil {
			defaultPath = xdgPath
		}
	}

	if err := Save(Default(), defaultPath); err != nil {
		// Continue with in-memory default if we can't write
		return cfg, "", nil
	}

	return cfg, defaultPath, nil
}

// loadFromFile reads and parses a TOML configuration file.
func loadFromFile(path string) (*Config, error) {
	// Start with defaults so missing values get sensible defaults
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays HABMON_* environment variables and validates the result.
func applyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	return nil
}

// Save writes a configuration to a TOML file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	header := `# habmon configuration file
#
# This file was auto-generated. Edit as needed.
# Any value can be overridden with a HABMON_* environment variable.

`
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding TOML: %w", err)
	}

	return nil
}

// xdgConfigPath returns the XDG-compliant config file path.
// Returns empty string if XDG_CONFIG_HOME is not set and HOME is not available.
func xdgConfigPath() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig != "" {
		return filepath.Join(xdgConfig, XDGConfigSubdir, DefaultConfigFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", XDGConfigSubdir, DefaultConfigFileName)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dataDir returns the XDG data directory for habmon, or "" when no home
// directory can be determined.
func dataDir() string {
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgData = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(xdgData, XDGConfigSubdir)
}

// EnsureDataDir creates the data directory for the database if needed.
// Returns the path to the database file.
func EnsureDataDir(cfg *Config) (string, error) {
	dbPath := cfg.Database.Path

	if filepath.IsAbs(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
		return dbPath, nil
	}

	dir := dataDir()
	if dir == "" {
		return dbPath, nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		// Fall back to current directory
		return dbPath, nil
	}
	return filepath.Join(dir, dbPath), nil
}

// EnsureLogDir creates the log directory if needed.
// Returns the path to the log file, or "" when file logging is disabled.
func EnsureLogDir(cfg *Config) (string, error) {
	logPath := cfg.Logging.File
	if logPath == "" {
		return "", nil
	}

	dir := filepath.Dir(logPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("creating log directory: %w", err)
		}
	}

	return logPath, nil
}

// BackupDir returns the directory for database backups.
func BackupDir(cfg *Config) (string, error) {
	var backupDir string
	switch {
	case filepath.IsAbs(cfg.Database.Path):
		backupDir = filepath.Join(filepath.Dir(cfg.Database.Path), "backups")
	case dataDir() != "":
		backupDir = filepath.Join(dataDir(), "backups")
	default:
		backupDir = "backups"
	}

	if err := os.MkdirAll(backupDir, 0750); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	return backupDir, nil
}
