package engine

import (
	"context"
	"time"
)

// ExportFolder archives every file physically under the folder's
// directory into a flat zip and returns the archive bytes.
//
// The export is the one operation whose physical half the caller waits
// for: the bytes are the answer, so mirror errors surface instead of
// going to the background failure log. The archive still runs through
// the runner and shares its workers with the fire-and-forget tasks, and
// a token-bucket throttle caps how many exports start per second across
// all callers.
func (e *Engine) ExportFolder(ctx context.Context, id string) (data []byte, err error) {
	start := time.Now()
	defer func() { e.instrument("ExportFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	unlock := e.lockFolder(id)
	defer unlock()

	folder, err := e.store.FindFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = e.exports.Wait(ctx); err != nil {
		return nil, err
	}

	// archived is only read after SubmitWait reports success, which
	// happens after the task finished writing it.
	var archived []byte
	err = e.runner.SubmitWait(ctx, taskArchiveExport, func(taskCtx context.Context) error {
		result, archiveErr := e.mirror.ArchiveSubtree(taskCtx, folder.Route)
		if archiveErr != nil {
			return archiveErr
		}
		archived = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.RecordArchiveSize(int64(len(archived)))
	return archived, nil
}
