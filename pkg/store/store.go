package store

import (
	"context"

	"github.com/codeSantiago/nospace/pkg/drive"
)

// ============================================================================
// MetadataStore Interface
// ============================================================================

// MetadataStore persists the metadata half of the dual tree: folder and file
// records keyed by id, with a secondary lookup by (depth, name, owner).
//
// The store knows nothing about the physical mirror. The synchronization
// engine writes metadata through this interface synchronously and mirrors
// the physical side through background tasks; the two are never coordinated
// transactionally.
//
// Error Contract:
// All business-logic failures are *StoreError values. ErrNotFound is the
// recoverable, caller-visible miss; ErrIOError means the backend itself
// failed and surfaces unchanged. Implementations never panic on a miss.
//
// Duplicate routes:
// Sibling folders are allowed to share a name (and therefore a route); the
// engine performs no collision detection. Where a (depth, name, owner)
// lookup matches several folders, the earliest created wins, ties broken by
// id, so the choice is deterministic across backends.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type MetadataStore interface {
	// ========================================================================
	// Folder Operations
	// ========================================================================

	// SaveFolder inserts folder or fully updates an existing record with the
	// same id.
	//
	// Returns:
	//   - error: ErrInvalidArgument if required fields are missing, ErrIOError
	//     on backend failure, or context cancellation error
	SaveFolder(ctx context.Context, folder *drive.Folder) error

	// UpdateFolderName applies a rename as a minimal update: only the name
	// and route columns change. Children and contained files are untouched
	// by this call; route cascades are the engine's responsibility.
	//
	// Returns:
	//   - error: ErrNotFound if no folder has this id
	UpdateFolderName(ctx context.Context, id, newName, newRoute string) error

	// FindFolder retrieves a folder by id.
	//
	// Returns:
	//   - *drive.Folder: the record, never shared with store internals
	//   - error: ErrNotFound if no folder has this id
	FindFolder(ctx context.Context, id string) (*drive.Folder, error)

	// FindFolderAt retrieves a folder by (depth, name, owner username).
	// With duplicate siblings the earliest created wins (see interface doc).
	//
	// Returns:
	//   - error: ErrNotFound if nothing matches
	FindFolderAt(ctx context.Context, depth int, name, ownerUsername string) (*drive.Folder, error)

	// ChildFolders lists the direct child folders of parentID, ordered by
	// creation then id. A folder with no children yields an empty slice;
	// an unknown parentID is not an error.
	ChildFolders(ctx context.Context, parentID string) ([]*drive.Folder, error)

	// DeleteFolder removes the folder and cascades over its whole subtree:
	// descendant folders and every contained file go with it. The physical
	// twin of this cascade is the mirror's recursive tree removal.
	//
	// Returns:
	//   - error: ErrNotFound if no folder has this id
	DeleteFolder(ctx context.Context, id string) error

	// ========================================================================
	// File Operations
	// ========================================================================

	// SaveFile inserts file or fully updates an existing record with the
	// same id. The containing folder must exist.
	//
	// Returns:
	//   - error: ErrNotFound if the containing folder is absent,
	//     ErrInvalidArgument if required fields are missing
	SaveFile(ctx context.Context, file *drive.File) error

	// FindFile retrieves a file by id.
	//
	// Returns:
	//   - error: ErrNotFound if no file has this id
	FindFile(ctx context.Context, id string) (*drive.File, error)

	// FilesInFolder lists the files directly contained in folderID, ordered
	// by upload time then id. An unknown folderID yields an empty slice.
	FilesInFolder(ctx context.Context, folderID string) ([]*drive.File, error)

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Healthcheck verifies the backend can serve requests. Fast, read-only.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}
