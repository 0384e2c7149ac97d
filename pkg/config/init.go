package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// InitConfig creates a starter configuration file at the default location.
//
// Parameters:
//   - force: Overwrite an existing file instead of failing
//
// Returns:
//   - string: Path of the created file
//   - error: If the file exists (without force) or cannot be written
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()
	if err := InitConfigToPath(configPath, force); err != nil {
		return "", err
	}
	return configPath, nil
}

// InitConfigToPath creates a starter configuration file at an explicit path,
// creating parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateYAMLWithComments renders a commented starter configuration from
// the given values. The output is checked to be parseable YAML before it is
// returned.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, `# nospace Configuration File
#
# Values can be overridden with NOSPACE_* environment variables using
# underscores for nesting, e.g. NOSPACE_LOGGING_LEVEL=DEBUG.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR, NONE
  level: %q
  # Output format: text or json
  format: %q
  # Destination: stdout, stderr, or a file path
  output: %q

server:
  # How long to wait for background tasks to drain on shutdown
  shutdown_timeout: %s
  metrics:
    # Expose Prometheus metrics on /metrics
    enabled: %v
    port: %d

# Metadata store: the authoritative folder and file records.
store:
  # Backend type: memory, sqlite, badger
  type: %q
  sqlite:
    path: %q
  badger:
    db_path: %q
    # in_memory: true keeps everything in RAM (nothing survives a restart)
  # memory has no options; records live only as long as the process

# Physical mirror: the directory tree kept in sync behind the metadata.
mirror:
  # Backend type: filesystem, s3
  type: %q
  filesystem:
    base_path: %q
    # staging_path defaults to the system temporary directory
  # s3:
  #   region: "us-east-1"
  #   bucket: "my-drive"
  #   key_prefix: ""
  #   endpoint: ""            # set for MinIO or Localstack
  #   access_key_id: ""       # empty uses the default credential chain
  #   secret_access_key: ""
  #   force_path_style: false

engine:
  # Serialize rename/delete/export per folder id
  serialize_folder_ops: %v
  # Sustained archive exports per second; 0 disables throttling
  exports_per_second: %d
  # Burst capacity on top of the sustained rate
  export_burst: %d

tasks:
  # Goroutines executing background physical work
  workers: %d
  # Queued tasks before fire-and-forget submissions are rejected
  queue_size: %d
`,
		cfg.Logging.Level,
		cfg.Logging.Format,
		cfg.Logging.Output,
		cfg.Server.ShutdownTimeout,
		cfg.Server.Metrics.Enabled,
		cfg.Server.Metrics.Port,
		cfg.Store.Type,
		cfg.Store.SQLite["path"],
		cfg.Store.Badger["db_path"],
		cfg.Mirror.Type,
		cfg.Mirror.Filesystem["base_path"],
		cfg.Engine.SerializeFolderOps,
		cfg.Engine.ExportsPerSecond,
		cfg.Engine.ExportBurst,
		cfg.Tasks.Workers,
		cfg.Tasks.QueueSize,
	)

	out := b.String()

	// A template mistake should fail generation, not the next load.
	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(out), &parsed); err != nil {
		return "", fmt.Errorf("generated config is not valid YAML: %w", err)
	}

	return out, nil
}
