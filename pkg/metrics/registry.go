// Package metrics provides Prometheus metrics collection for nospace
// components.
//
// All metrics are optional. If the registry is never initialized, the
// constructors hand out no-op implementations with zero overhead, so
// components record unconditionally and the config layer decides whether
// anything is collected.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create metrics instances for components
//	taskMetrics := metrics.NewTaskMetrics()
//	engineMetrics := metrics.NewEngineMetrics()
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all nospace metrics.
	// Written once through registryOnce, read many times afterwards.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// This must be called before creating any metrics instances. It's safe to
// call multiple times; subsequent calls are ignored.
//
// If not called, GetRegistry() returns nil and the metrics constructors
// return no-op implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry.
//
// Returns nil if InitRegistry() has not been called, indicating metrics
// are disabled.
//
// Thread safety:
// The sync.Once in InitRegistry() provides a happens-before relationship
// ensuring the registry value is visible to all readers.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
//
// Metrics are enabled if InitRegistry() has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
