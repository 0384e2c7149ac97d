package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unimplemented store type")
	}
}

func TestValidate_InvalidMirrorType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Mirror.Type = "ftp"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid mirror type")
	}
}

func TestValidate_InvalidMetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Metrics.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "lte") {
		t.Errorf("Expected 'lte' validation error, got: %v", err)
	}
}

func TestValidate_NegativeMetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Metrics.Port = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative port")
	}
}

func TestValidate_InvalidShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.ShutdownTimeout = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for zero shutdown timeout")
	}
	// Either 'required' or 'gt' is acceptable
	if !strings.Contains(err.Error(), "required") && !strings.Contains(err.Error(), "gt") {
		t.Errorf("Expected 'required' or 'gt' validation error, got: %v", err)
	}
}

func TestValidate_ExportBurstWithoutRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Engine.ExportBurst = 4
	cfg.Engine.ExportsPerSecond = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for export_burst without exports_per_second")
	}
	if !strings.Contains(err.Error(), "export_burst") {
		t.Errorf("Expected error about export_burst, got: %v", err)
	}
}

func TestValidate_ExportBurstWithRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Engine.ExportsPerSecond = 2
	cfg.Engine.ExportBurst = 4

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected throttled config to be valid, got error: %v", err)
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Tasks.Workers = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative workers")
	}
	if !strings.Contains(err.Error(), "workers") {
		t.Errorf("Expected error about workers, got: %v", err)
	}
}

func TestValidate_NegativeQueueSize(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Tasks.QueueSize = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative queue_size")
	}
	if !strings.Contains(err.Error(), "queue_size") {
		t.Errorf("Expected error about queue_size, got: %v", err)
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Test that validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	// Test that normalization happens in ApplyDefaults
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
