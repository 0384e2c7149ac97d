package config

import (
	"github.com/codeSantiago/nospace/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Tasks is the metrics collector for the task runner (never nil, uses noop if disabled)
	Tasks metrics.TaskMetrics

	// Engine is the metrics collector for engine operations (never nil, uses noop if disabled)
	Engine metrics.EngineMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
//
// Parameters:
//   - cfg: The complete nospace configuration
//
// Returns:
//   - MetricsResult containing all metrics components
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		// Metrics disabled - return no-op implementations
		return &MetricsResult{
			Server: nil,
			Tasks:  metrics.NewNoopTaskMetrics(),
			Engine: metrics.NewNoopEngineMetrics(),
		}
	}

	// Initialize global Prometheus registry
	metrics.InitRegistry()

	// Create metrics HTTP server
	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Server.Metrics.Port,
	})

	return &MetricsResult{
		Server: server,
		Tasks:  metrics.NewTaskMetrics(),
		Engine: metrics.NewEngineMetrics(),
	}
}
