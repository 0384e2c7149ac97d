package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

store:
  type: "memory"

mirror:
  type: "filesystem"
  filesystem:
    base_path: "/tmp/nospace-test-drive"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Tasks.Workers != 4 {
		t.Errorf("Expected default workers 4, got %d", cfg.Tasks.Workers)
	}
	if cfg.Tasks.QueueSize != 64 {
		t.Errorf("Expected default queue_size 64, got %d", cfg.Tasks.QueueSize)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Use a temporary directory with a non-existent config file path
	// This ensures we don't load the user's config from ~/.config/nospace/
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	// Verify defaults
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("Expected default store type 'sqlite', got %q", cfg.Store.Type)
	}
	if cfg.Mirror.Type != "filesystem" {
		t.Errorf("Expected default mirror type 'filesystem', got %q", cfg.Mirror.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[logging]
level = "WARN"
format = "json"

[store]
type = "memory"

[mirror]
type = "filesystem"

[engine]
serialize_folder_ops = true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if !cfg.Engine.SerializeFolderOps {
		t.Error("Expected serialize_folder_ops true from TOML config")
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
	if cfg.Server.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Server.Metrics.Port)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("Expected default store type 'sqlite', got %q", cfg.Store.Type)
	}
	if cfg.Mirror.Type != "filesystem" {
		t.Errorf("Expected default mirror type 'filesystem', got %q", cfg.Mirror.Type)
	}
	if cfg.Engine.SerializeFolderOps {
		t.Error("Expected serialize_folder_ops false by default")
	}
	if cfg.Engine.ExportsPerSecond != 0 {
		t.Errorf("Expected unlimited exports by default, got %d", cfg.Engine.ExportsPerSecond)
	}
	if cfg.Tasks.Workers != 4 {
		t.Errorf("Expected default workers 4, got %d", cfg.Tasks.Workers)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "nospace" {
		t.Errorf("Expected directory name 'nospace', got %q", filepath.Base(dir))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("NOSPACE_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("NOSPACE_STORE_TYPE", "badger")
	defer func() {
		_ = os.Unsetenv("NOSPACE_LOGGING_LEVEL")
		_ = os.Unsetenv("NOSPACE_STORE_TYPE")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

store:
  type: "memory"

mirror:
  type: "filesystem"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "badger" {
		t.Errorf("Expected store type 'badger' from env var, got %q", cfg.Store.Type)
	}
}
