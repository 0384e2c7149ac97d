package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics provides observability for folder synchronization
// operations.
//
// The engine acknowledges most physical work before it happens, so the
// background failure counter is the durable record of mirror operations
// that failed after their caller already saw success.
//
// Example usage:
//
//	// With metrics enabled
//	engine := engine.New(deps, metrics.NewEngineMetrics())
//
//	// Without metrics (no-op)
//	engine := engine.New(deps, metrics.NewNoopEngineMetrics())
type EngineMetrics interface {
	// RecordOperation records a completed engine operation with its name,
	// duration, and outcome.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "CreateFolder", "RenameFolder")
	//   - duration: Time taken on the synchronous path
	//   - err: Error if the operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordBackgroundFailure counts a physical mirror action that failed
	// after its caller was already answered.
	//
	// Parameters:
	//   - operation: Engine operation that submitted the work
	//   - class: Failure classification ("invalid_argument", "io_error")
	RecordBackgroundFailure(operation string, class string)

	// RecordArchiveSize records the byte size of a finished export.
	//
	// Parameters:
	//   - sizeBytes: Size of the produced archive
	RecordArchiveSize(sizeBytes int64)
}

// engineMetrics is the Prometheus implementation of EngineMetrics.
type engineMetrics struct {
	operationsTotal         *prometheus.CounterVec
	operationDuration       *prometheus.HistogramVec
	backgroundFailuresTotal *prometheus.CounterVec
	archiveSize             prometheus.Histogram
}

// NewEngineMetrics creates a new Prometheus-backed EngineMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called).
func NewEngineMetrics() EngineMetrics {
	if !IsEnabled() {
		return NewNoopEngineMetrics()
	}

	reg := GetRegistry()

	return &engineMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nospace_engine_operations_total",
				Help: "Total number of engine operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nospace_engine_operation_duration_seconds",
				Help: "Duration of the synchronous part of engine operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
				},
			},
			[]string{"operation"},
		),
		backgroundFailuresTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nospace_engine_background_failures_total",
				Help: "Total number of background mirror actions that failed after their caller was answered",
			},
			[]string{"operation", "class"},
		),
		archiveSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "nospace_engine_archive_size_bytes",
				Help: "Size of exported archives in bytes",
				Buckets: []float64{
					1 << 10, // 1KiB
					1 << 14, // 16KiB
					1 << 18, // 256KiB
					1 << 20, // 1MiB
					1 << 22, // 4MiB
					1 << 24, // 16MiB
					1 << 26, // 64MiB
					1 << 28, // 256MiB
					1 << 30, // 1GiB
				},
			},
		),
	}
}

func (m *engineMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *engineMetrics) RecordBackgroundFailure(operation string, class string) {
	m.backgroundFailuresTotal.WithLabelValues(operation, class).Inc()
}

func (m *engineMetrics) RecordArchiveSize(sizeBytes int64) {
	m.archiveSize.Observe(float64(sizeBytes))
}

// NewNoopEngineMetrics returns an EngineMetrics implementation that
// records nothing.
func NewNoopEngineMetrics() EngineMetrics {
	return noopEngineMetrics{}
}

// noopEngineMetrics is a no-op implementation of EngineMetrics with zero overhead.
type noopEngineMetrics struct{}

func (noopEngineMetrics) RecordOperation(operation string, duration time.Duration, err error) {}
func (noopEngineMetrics) RecordBackgroundFailure(operation string, class string)              {}
func (noopEngineMetrics) RecordArchiveSize(sizeBytes int64)                                   {}
