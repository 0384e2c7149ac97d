package config

import (
	"strings"
	"time"

	"github.com/codeSantiago/nospace/pkg/tasks"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend-specific defaults are handled here so a generated config file
//     shows working values
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyStoreDefaults(&cfg.Store)
	applyMirrorDefaults(&cfg.Mirror)
	applyTasksDefaults(&cfg.Tasks)

	// Engine settings all default to their zero values: serialization off,
	// export throttling off.
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	// Metrics are disabled unless explicitly enabled; the port default is
	// applied either way so a generated config shows a working value.
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

// applyStoreDefaults sets metadata store defaults.
func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "sqlite"
	}

	// Initialize maps if nil
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.SQLite == nil {
		cfg.SQLite = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}

	// Apply defaults for all store types (for config file generation)
	if _, ok := cfg.SQLite["path"]; !ok {
		cfg.SQLite["path"] = "/tmp/nospace-metadata.db"
	}
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/tmp/nospace-badger"
	}
}

// applyMirrorDefaults sets physical mirror defaults.
func applyMirrorDefaults(cfg *MirrorConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}

	// Initialize maps if nil
	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	// Apply defaults for all mirror types (for config file generation)
	if _, ok := cfg.Filesystem["base_path"]; !ok {
		cfg.Filesystem["base_path"] = "/tmp/nospace-drive"
	}
}

// applyTasksDefaults sets task runner defaults.
func applyTasksDefaults(cfg *tasks.Config) {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Memory: make(map[string]any),
			SQLite: make(map[string]any),
			Badger: make(map[string]any),
		},
		Mirror: MirrorConfig{
			Filesystem: make(map[string]any),
			S3:         make(map[string]any),
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
