// Package tasks provides the bounded background runner that carries the
// physical half of folder operations.
//
// The runner exists because most callers must not wait for the mirror:
// metadata answers immediately and the matching directory work happens on
// a worker. Failures on that path can no longer reach the caller, so the
// runner logs them and feeds the task counters instead of dropping them
// silently.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/metrics"
)

// ErrStopped is returned by awaited submissions after Stop has been called.
var ErrStopped = errors.New("task runner stopped")

// Task is one unit of background work. The context carries cancellation:
// the caller's context for awaited tasks, a background context for
// fire-and-forget ones.
type Task func(ctx context.Context) error

// Config contains configuration for the task runner.
type Config struct {
	// Workers is the number of goroutines executing tasks (default: 4)
	Workers int `mapstructure:"workers"`

	// QueueSize is the task buffer capacity (default: 64). When the buffer
	// is full, fire-and-forget submissions are rejected rather than
	// blocking the caller.
	QueueSize int `mapstructure:"queue_size"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
}

// job pairs a task with its execution context. resultCh is nil for
// fire-and-forget work.
type job struct {
	name     string
	fn       Task
	ctx      context.Context
	resultCh chan error
}

// Runner executes background tasks on a bounded worker pool.
//
// Two submission contracts exist on purpose:
//   - Submit never blocks and never reports back; a full queue rejects the
//     task. This is the path for physical work the caller already
//     acknowledged.
//   - SubmitWait blocks for queue space and returns the task's error. This
//     is the path for work whose result the caller hands to someone, such
//     as an archive export.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	config  Config
	metrics metrics.TaskMetrics

	queue  chan job
	doneCh chan struct{}

	// mu guards stopped and orders submissions against the queue close:
	// sends hold the read side, Stop closes under the write side.
	mu      sync.RWMutex
	stopped bool

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

// NewRunner creates a runner with its workers already consuming.
//
// Parameters:
//   - config: Pool sizing (zero values take defaults)
//   - taskMetrics: Task counters; nil discards metrics
//
// Call Stop to drain and shut down.
func NewRunner(config Config, taskMetrics metrics.TaskMetrics) *Runner {
	config.applyDefaults()
	if taskMetrics == nil {
		taskMetrics = metrics.NewNoopTaskMetrics()
	}

	r := &Runner{
		config:  config,
		metrics: taskMetrics,
		queue:   make(chan job, config.QueueSize),
		doneCh:  make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go func() {
			defer wg.Done()
			r.worker()
		}()
	}
	go func() {
		wg.Wait()
		close(r.doneCh)
	}()

	logger.Debug("Task runner started: workers=%d queue_size=%d", config.Workers, config.QueueSize)
	return r
}

// Submit enqueues fire-and-forget work.
//
// Never blocks. Returns false when the task was rejected because the queue
// is full or the runner is stopping; the rejection is logged and counted,
// which is all the caller path can afford to know.
func (r *Runner) Submit(name string, fn Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.reject(name, "runner stopped")
		return false
	}

	select {
	case r.queue <- job{name: name, fn: fn, ctx: context.Background()}:
		r.accept(name)
		return true
	default:
		r.reject(name, "queue full")
		return false
	}
}

// SubmitWait enqueues work and blocks until it completes, returning the
// task's error.
//
// Waits for queue space rather than rejecting. The context bounds both the
// wait for space and the wait for the result, and is handed to the task
// itself; if it expires after the task was queued, the task still runs but
// its result is discarded.
func (r *Runner) SubmitWait(ctx context.Context, name string, fn Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resultCh := make(chan error, 1)

	r.mu.RLock()
	if r.stopped {
		r.mu.RUnlock()
		r.reject(name, "runner stopped")
		return ErrStopped
	}

	select {
	case r.queue <- job{name: name, fn: fn, ctx: ctx, resultCh: resultCh}:
		r.mu.RUnlock()
		r.accept(name)
	case <-ctx.Done():
		r.mu.RUnlock()
		r.reject(name, "context expired waiting for queue space")
		return ctx.Err()
	}

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops accepting work, drains queued tasks, and waits for in-flight
// ones.
//
// Safe to call multiple times. The context bounds the wait only: when it
// expires, Stop returns ctx.Err() and the remaining tasks keep draining in
// the background.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	first := !r.stopped
	if first {
		r.stopped = true
		close(r.queue)
	}
	r.mu.Unlock()

	if first {
		logger.Info("Stopping task runner: %s", r.Stats().Summary())
	}

	select {
	case <-r.doneCh:
		logger.Debug("Task runner stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Task runner shutdown timeout: %s", r.Stats().Summary())
		return ctx.Err()
	}
}

// worker consumes the queue until it is closed and drained.
func (r *Runner) worker() {
	for queued := range r.queue {
		r.metrics.SetQueueDepth(len(r.queue))

		err := r.runTask(queued)
		if queued.resultCh != nil {
			queued.resultCh <- err
		}
	}
}

// runTask executes one task, converting panics into errors so a bad task
// cannot take the pool down.
func (r *Runner) runTask(queued job) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			const size = 64 << 10
			stack := make([]byte, size)
			stack = stack[:runtime.Stack(stack, false)]
			err = fmt.Errorf("task %s panicked: %v", queued.name, rec)
			logger.Error("Task %s panicked: %v\n%s", queued.name, rec, stack)
		}

		duration := time.Since(start)
		r.metrics.RecordCompleted(queued.name, duration, err)
		if err != nil {
			r.failed.Add(1)
			logger.Warn("Task %s failed after %s: %v", queued.name, duration, err)
		} else {
			r.completed.Add(1)
			logger.Debug("Task %s completed in %s", queued.name, duration)
		}
	}()

	return queued.fn(queued.ctx)
}

// accept records a task entering the queue.
func (r *Runner) accept(name string) {
	r.submitted.Add(1)
	r.metrics.RecordSubmitted(name)
	r.metrics.SetQueueDepth(len(r.queue))
}

// reject records a refused submission.
func (r *Runner) reject(name string, reason string) {
	r.rejected.Add(1)
	r.metrics.RecordRejected(name)
	logger.Warn("Task %s rejected: %s", name, reason)
}

// Stats is a snapshot of runner activity.
type Stats struct {
	Submitted uint64 // Tasks accepted into the queue
	Completed uint64 // Tasks finished without error
	Failed    uint64 // Tasks finished with an error (panics included)
	Rejected  uint64 // Submissions refused
	Queued    int    // Tasks currently waiting for a worker
}

// Stats returns a snapshot of runner activity.
func (r *Runner) Stats() Stats {
	return Stats{
		Submitted: r.submitted.Load(),
		Completed: r.completed.Load(),
		Failed:    r.failed.Load(),
		Rejected:  r.rejected.Load(),
		Queued:    len(r.queue),
	}
}

// Summary returns a human-readable summary of runner activity.
func (s Stats) Summary() string {
	return fmt.Sprintf("submitted=%d completed=%d failed=%d rejected=%d queued=%d",
		s.Submitted, s.Completed, s.Failed, s.Rejected, s.Queued)
}
