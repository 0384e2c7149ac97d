// Package mirror defines the physical side of the dual-tree model: the
// storage that holds the real directories and file bytes whose shape the
// metadata tree describes. Implementations translate separator-wrapped
// routes ("/ada/docs/") into their own notion of location.
package mirror

import "context"

// PhysicalMirror is the interface every physical backend must implement.
//
// Routes arriving here follow the drive package conventions: folder routes
// are separator-wrapped ("/ada/docs/"), file routes carry no trailing
// separator ("/ada/docs/report.pdf"). Implementations must refuse routes
// they cannot map safely (ErrInvalidPath) rather than guessing.
//
// Error Handling:
// Conditions callers branch on are reported as *MirrorError. Infrastructure
// failures (disk faults, network errors) are wrapped with context and
// surface unchanged.
//
// Thread Safety:
// All implementations must be safe for concurrent use. The engine runs
// mirror operations on background workers while serving new requests.
type PhysicalMirror interface {
	// ========================================================================
	// Directory Operations
	// ========================================================================

	// CreateDirectory materializes the directory for a folder route,
	// creating missing ancestors. Creating an existing directory succeeds.
	CreateDirectory(ctx context.Context, route string) error

	// MoveDirectory relocates the directory at oldRoute to newRoute,
	// carrying its entire contents. Returns ErrNotFound when oldRoute has
	// no physical presence.
	MoveDirectory(ctx context.Context, oldRoute, newRoute string) error

	// RemoveTree deletes the directory at route and everything beneath it.
	// Removing an absent route succeeds, so retries and replays are safe.
	RemoveTree(ctx context.Context, route string) error

	// DirectoryExists reports whether the folder route has a physical
	// directory behind it.
	DirectoryExists(ctx context.Context, route string) (bool, error)

	// ========================================================================
	// File Operations
	// ========================================================================

	// WriteFile stores file bytes at a file route, creating missing parent
	// directories. Existing content at the route is replaced.
	WriteFile(ctx context.Context, fileRoute string, data []byte) error

	// ========================================================================
	// Archive Export
	// ========================================================================

	// ArchiveSubtree walks everything beneath the folder route and returns
	// a zip archive containing every regular file as a top-level entry
	// named by its base filename; directory structure is not preserved.
	// Files that cannot be read are skipped, not fatal. The archive is
	// staged on temporary storage that is always cleaned up before return.
	ArchiveSubtree(ctx context.Context, route string) ([]byte, error)

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Healthcheck verifies the backend is reachable and usable.
	Healthcheck(ctx context.Context) error

	// Close releases any resources held by the mirror.
	Close() error
}
