package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TaskMetrics provides observability for the background task runner.
//
// Fire-and-forget submissions are the runner's normal mode, so these
// counters are the only place a caller can see background failures add up.
// The interface is optional; passing a no-op instance costs nothing.
//
// Example usage:
//
//	// With metrics enabled
//	runner := tasks.NewRunner(cfg, metrics.NewTaskMetrics())
//
//	// Without metrics (no-op)
//	runner := tasks.NewRunner(cfg, metrics.NewNoopTaskMetrics())
type TaskMetrics interface {
	// RecordSubmitted counts a task accepted into the queue.
	//
	// Parameters:
	//   - task: Task name (e.g., "physical_create", "archive_export")
	RecordSubmitted(task string)

	// RecordRejected counts a task refused because the queue was full or
	// the runner was stopping.
	//
	// Parameters:
	//   - task: Task name
	RecordRejected(task string)

	// RecordCompleted records a finished task with its duration and outcome.
	//
	// Parameters:
	//   - task: Task name
	//   - duration: Time from dequeue to completion
	//   - err: Error if the task failed, nil if successful
	RecordCompleted(task string, duration time.Duration, err error)

	// SetQueueDepth updates the current number of queued tasks.
	//
	// Parameters:
	//   - depth: Tasks waiting for a worker
	SetQueueDepth(depth int)
}

// taskMetrics is the Prometheus implementation of TaskMetrics.
type taskMetrics struct {
	submittedTotal *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	completedTotal *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	queueDepth     prometheus.Gauge
}

// NewTaskMetrics creates a new Prometheus-backed TaskMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called).
func NewTaskMetrics() TaskMetrics {
	if !IsEnabled() {
		return NewNoopTaskMetrics()
	}

	reg := GetRegistry()

	return &taskMetrics{
		submittedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nospace_tasks_submitted_total",
				Help: "Total number of background tasks accepted by the runner",
			},
			[]string{"task"},
		),
		rejectedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nospace_tasks_rejected_total",
				Help: "Total number of background tasks rejected (queue full or runner stopping)",
			},
			[]string{"task"},
		),
		completedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nospace_tasks_completed_total",
				Help: "Total number of background tasks completed by task and status",
			},
			[]string{"task", "status"},
		),
		taskDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nospace_tasks_duration_seconds",
				Help: "Duration of background tasks in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"task"},
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nospace_tasks_queue_depth",
				Help: "Current number of background tasks waiting for a worker",
			},
		),
	}
}

func (m *taskMetrics) RecordSubmitted(task string) {
	m.submittedTotal.WithLabelValues(task).Inc()
}

func (m *taskMetrics) RecordRejected(task string) {
	m.rejectedTotal.WithLabelValues(task).Inc()
}

func (m *taskMetrics) RecordCompleted(task string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.completedTotal.WithLabelValues(task, status).Inc()
	m.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

func (m *taskMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// NewNoopTaskMetrics returns a TaskMetrics implementation that records
// nothing.
func NewNoopTaskMetrics() TaskMetrics {
	return noopTaskMetrics{}
}

// noopTaskMetrics is a no-op implementation of TaskMetrics with zero overhead.
type noopTaskMetrics struct{}

func (noopTaskMetrics) RecordSubmitted(task string)                                    {}
func (noopTaskMetrics) RecordRejected(task string)                                     {}
func (noopTaskMetrics) RecordCompleted(task string, duration time.Duration, err error) {}
func (noopTaskMetrics) SetQueueDepth(depth int)                                        {}
