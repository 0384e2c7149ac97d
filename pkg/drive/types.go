// Package drive defines the domain model shared by the metadata store, the
// physical mirror, and the synchronization engine: owners, folders, files,
// and the materialized-route computations that keep the metadata tree and
// the on-disk tree describing the same hierarchy.
package drive

import "time"

// Owner identifies who a space belongs to. The engine never manages owners;
// it receives them from an external directory (see OwnerDirectory) and only
// reads these two fields.
type Owner struct {
	// ID is the owner's opaque identifier
	ID string `json:"id"`

	// Username names the owner's root segment, so "/<username>/" is the
	// route of their root folder
	Username string `json:"username"`
}

// Folder is one node of the metadata tree.
//
// A folder's identity (ID, owner, parent, depth) is fixed at creation;
// renames change Name and Route only. Folders are never re-parented.
type Folder struct {
	// ID is the opaque identifier assigned at creation
	ID string `json:"id"`

	// Name is the final segment of the route, user-visible, mutable via rename
	Name string `json:"name"`

	// Depth is the distance from the owner's root folder (root = 0)
	Depth int `json:"depth"`

	// Route is the materialized path from the root to this folder, every
	// segment terminated by the separator (e.g. "/ada/docs/"). It must match
	// the folder's true location under the mirror's base path; the physical
	// side may lag behind while a background task is still in flight.
	Route string `json:"route"`

	// OwnerID and OwnerUsername reference the owning Owner. The username is
	// denormalized so folders can be looked up by (depth, name, username)
	// without consulting the owner directory.
	OwnerID       string `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`

	// ParentID is empty for root folders
	ParentID string `json:"parent_id,omitempty"`

	// CreatedAt is the folder's creation instant
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether f is an owner's root folder.
func (f *Folder) IsRoot() bool {
	return f.Depth == 0
}

// File is a leaf of the metadata tree. Files are created by the upload
// collaborator; the engine only rewrites their routes when the containing
// folder is renamed, and relies on the store to delete them when the
// containing folder is deleted.
type File struct {
	// ID is the opaque identifier assigned at creation
	ID string `json:"id"`

	// Route is the full path including the filename (e.g. "/ada/docs/a.txt",
	// no trailing separator); rewritten when the containing folder renames
	Route string `json:"route"`

	// Filename is the final segment of Route
	Filename string `json:"filename"`

	// Size in bytes
	Size int64 `json:"size"`

	// UploadedAt is the upload instant
	UploadedAt time.Time `json:"uploaded_at"`

	// FolderID references the containing folder; a file never outlives it
	FolderID string `json:"folder_id"`
}
