// Package engine implements folder synchronization over the dual tree:
// every operation writes the metadata tree synchronously and mirrors the
// physical tree through background tasks, so callers get their answer as
// soon as the metadata half is durable.
//
// The two trees are not coordinated transactionally. Metadata is the
// source of truth; the physical side converges behind it, and a physical
// failure after the caller was answered lands in the logs and the
// background failure counters rather than anywhere the caller could see.
// The one exception is the archive export, whose physical result IS the
// answer; it runs through the same worker pool but is awaited.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/internal/throttle"
	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/metrics"
	"github.com/codeSantiago/nospace/pkg/mirror"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/tasks"
)

// Task names as they appear in runner stats and task metrics.
const (
	taskPhysicalCreate = "physical_create"
	taskPhysicalMove   = "physical_move"
	taskPhysicalDelete = "physical_delete"
	taskRouteCascade   = "route_cascade"
	taskArchiveExport  = "archive_export"
)

// OwnerDirectory resolves usernames to owners.
//
// Owners live in an external system; the engine only reads them. An
// unknown username is reported with an error for which store.IsNotFound
// returns true.
type OwnerDirectory interface {
	OwnerByUsername(ctx context.Context, username string) (drive.Owner, error)
}

// Config contains engine tuning knobs.
type Config struct {
	// SerializeFolderOps serializes rename, delete, and export per folder
	// id. Off by default: concurrent operations on the same folder then
	// interleave exactly as the store orders them.
	SerializeFolderOps bool `mapstructure:"serialize_folder_ops"`

	// ExportsPerSecond caps sustained archive exports across all folders.
	// 0 disables the cap.
	ExportsPerSecond uint `mapstructure:"exports_per_second"`

	// ExportBurst is the burst capacity on top of the sustained export
	// rate. Defaults to ExportsPerSecond when zero.
	ExportBurst uint `mapstructure:"export_burst"`
}

// Engine coordinates the metadata store, the physical mirror, and the
// background runner.
//
// Thread Safety: Safe for concurrent use. Operations on unrelated folders
// never contend; operations on the same folder contend only when
// SerializeFolderOps is on.
type Engine struct {
	store   store.MetadataStore
	mirror  mirror.PhysicalMirror
	runner  *tasks.Runner
	owners  OwnerDirectory
	metrics metrics.EngineMetrics
	config  Config
	exports *throttle.Limiter

	// folderLocks holds one mutex per folder id, populated lazily and
	// only consulted when SerializeFolderOps is on.
	folderLocks sync.Map
}

// New creates an engine from its explicit dependencies.
//
// Parameters:
//   - metadataStore: The metadata tree
//   - physicalMirror: The physical tree
//   - runner: Executes the physical half of operations
//   - owners: Resolves usernames for (depth, name, username) lookups
//   - engineMetrics: Operation counters; nil discards metrics
//   - config: Tuning knobs
func New(
	metadataStore store.MetadataStore,
	physicalMirror mirror.PhysicalMirror,
	runner *tasks.Runner,
	owners OwnerDirectory,
	engineMetrics metrics.EngineMetrics,
	config Config,
) (*Engine, error) {
	if metadataStore == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if physicalMirror == nil {
		return nil, fmt.Errorf("physical mirror is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("task runner is required")
	}
	if owners == nil {
		return nil, fmt.Errorf("owner directory is required")
	}
	if engineMetrics == nil {
		engineMetrics = metrics.NewNoopEngineMetrics()
	}

	return &Engine{
		store:   metadataStore,
		mirror:  physicalMirror,
		runner:  runner,
		owners:  owners,
		metrics: engineMetrics,
		config:  config,
		exports: throttle.New(config.ExportsPerSecond, config.ExportBurst),
	}, nil
}

// instrument records the outcome of one synchronous operation path.
func (e *Engine) instrument(operation string, start time.Time, err error) {
	e.metrics.RecordOperation(operation, time.Since(start), err)
}

// lockFolder serializes same-folder operations when configured. The
// returned func releases the lock; with serialization off it is a no-op.
func (e *Engine) lockFolder(id string) func() {
	if !e.config.SerializeFolderOps {
		return func() {}
	}

	value, _ := e.folderLocks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// submitBackground hands fire-and-forget work to the runner. A failure is
// classified, counted, and logged under the operation that submitted it;
// the caller was already answered, so nothing propagates further.
func (e *Engine) submitBackground(operation, task, subject string, classify func(error) string, fn tasks.Task) {
	e.runner.Submit(task, func(taskCtx context.Context) error {
		err := fn(taskCtx)
		if err != nil {
			class := classify(err)
			e.metrics.RecordBackgroundFailure(operation, class)
			logger.Warn("%s: %s for %s failed (%s): %v", operation, task, subject, class, err)
		}
		return err
	})
}

// classifyMirrorError buckets a mirror failure for the background failure
// counter.
func classifyMirrorError(err error) string {
	switch {
	case mirror.IsInvalidPath(err):
		return "invalid_argument"
	case mirror.IsNotFound(err):
		return "not_found"
	default:
		return "io_error"
	}
}

// classifyCreateError buckets physical create failures. Every create
// failure counts as an invalid argument: the category the synchronous
// path reports when a directory cannot be built from the route it was
// handed.
func classifyCreateError(error) string {
	return "invalid_argument"
}

// classifyStoreError buckets a store failure for the background failure
// counter.
func classifyStoreError(err error) string {
	switch {
	case store.IsInvalidArgument(err):
		return "invalid_argument"
	case store.IsNotFound(err):
		return "not_found"
	default:
		return "io_error"
	}
}
