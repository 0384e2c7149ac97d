package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/codeSantiago/nospace/pkg/engine"
	"github.com/codeSantiago/nospace/pkg/tasks"
)

// Config represents the complete nospace configuration.
//
// This structure captures all configurable aspects of the synchronization
// engine including:
//   - Logging configuration
//   - Server-wide settings (shutdown, metrics endpoint)
//   - Metadata store selection and configuration (store-specific)
//   - Physical mirror selection and configuration (backend-specific)
//   - Engine behavior (serialization, export throttling)
//   - Background task runner sizing
//
// Configuration sources (in order of precedence):
//  1. Environment variables (NOSPACE_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Backend Configuration Pattern:
// Each store and mirror implementation defines its own configuration type
// and factory function. The Config struct contains type-specific sections
// (e.g. store.sqlite, mirror.s3) and only the section matching the selected
// type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains server-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Store specifies the metadata store type and type-specific configuration
	Store StoreConfig `mapstructure:"store"`

	// Mirror specifies the physical mirror type and type-specific configuration
	Mirror MirrorConfig `mapstructure:"mirror"`

	// Engine contains engine behavior settings.
	// Uses the engine.Config type directly to avoid duplication.
	Engine engine.Config `mapstructure:"engine"`

	// Tasks sizes the background task runner.
	// Uses the tasks.Config type directly to avoid duplication.
	Tasks tasks.Config `mapstructure:"tasks"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR, NONE (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR NONE debug info warn error none"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for the task runner to
	// drain on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics configures the Prometheus metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics registry and HTTP endpoint on
	Enabled bool `mapstructure:"enabled"`

	// Port is the HTTP port serving /metrics
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// StoreConfig specifies metadata store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, sqlite, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory sqlite badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// SQLite contains SQLite-specific configuration
	// Only used when Type = "sqlite"
	SQLite map[string]any `mapstructure:"sqlite"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// MirrorConfig specifies physical mirror configuration.
//
// The Type field determines which mirror implementation is used.
// Only the corresponding type-specific configuration section is used.
type MirrorConfig struct {
	// Type specifies which physical mirror implementation to use
	// Valid values: filesystem, s3
	Type string `mapstructure:"type" validate:"required,oneof=filesystem s3"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (NOSPACE_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use NOSPACE_ prefix and underscores
	// Example: NOSPACE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("NOSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/nospace/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		if os.IsNotExist(err) {
			// Explicit path that doesn't exist - also acceptable
			return nil
		}
		// Other errors are problems
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nospace")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "nospace")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
