// Package memory provides an in-memory MetadataStore implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

// MemoryMetadataStore implements store.MetadataStore using in-memory maps.
//
// Suitable for tests, development environments, and ephemeral spaces where
// persistence is not required. The engine test suite runs against this
// store; the shared conformance suite keeps it behaviorally aligned with
// the persistent backends.
//
// Thread Safety:
// All operations are protected by a single read-write mutex. Coarse-grained
// but simple and correct; the store is not a throughput bottleneck in any
// supported configuration.
//
// Records are copied on the way in and on the way out, so callers can never
// mutate store state through a retained pointer.
type MemoryMetadataStore struct {
	// mu protects all fields in this struct for concurrent access
	mu sync.RWMutex

	// folders maps folder id to the stored record
	folders map[string]*drive.Folder

	// files maps file id to the stored record
	files map[string]*drive.File

	// childIDs maps a parent folder id to the set of its direct child folder ids
	childIDs map[string]map[string]struct{}

	// fileIDs maps a folder id to the set of ids of files directly inside it
	fileIDs map[string]map[string]struct{}
}

// NewMemoryMetadataStore creates an empty in-memory store, immediately ready
// for concurrent use.
func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		folders:  make(map[string]*drive.Folder),
		files:    make(map[string]*drive.File),
		childIDs: make(map[string]map[string]struct{}),
		fileIDs:  make(map[string]map[string]struct{}),
	}
}

// SaveFolder inserts or fully replaces the record with folder.ID.
func (s *MemoryMetadataStore) SaveFolder(ctx context.Context, folder *drive.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateFolder(folder); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, exists := s.folders[folder.ID]; exists && previous.ParentID != folder.ParentID {
		s.unindexChild(previous.ParentID, folder.ID)
	}

	stored := *folder
	s.folders[folder.ID] = &stored

	if folder.ParentID != "" {
		if s.childIDs[folder.ParentID] == nil {
			s.childIDs[folder.ParentID] = make(map[string]struct{})
		}
		s.childIDs[folder.ParentID][folder.ID] = struct{}{}
	}
	return nil
}

// UpdateFolderName changes only the name and route of an existing folder.
func (s *MemoryMetadataStore) UpdateFolderName(ctx context.Context, id, newName, newRoute string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folder, exists := s.folders[id]
	if !exists {
		return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}
	folder.Name = newName
	folder.Route = newRoute
	return nil
}

// FindFolder retrieves a folder by id.
func (s *MemoryMetadataStore) FindFolder(ctx context.Context, id string) (*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, exists := s.folders[id]
	if !exists {
		return nil, &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}
	result := *folder
	return &result, nil
}

// FindFolderAt retrieves a folder by (depth, name, owner username). With
// duplicate siblings the earliest created wins, ties broken by id.
func (s *MemoryMetadataStore) FindFolderAt(ctx context.Context, depth int, name, ownerUsername string) (*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *drive.Folder
	for _, folder := range s.folders {
		if folder.Depth != depth || folder.Name != name || folder.OwnerUsername != ownerUsername {
			continue
		}
		if match == nil || earlierFolder(folder, match) {
			match = folder
		}
	}
	if match == nil {
		return nil, &store.StoreError{
			Code:    store.ErrNotFound,
			Message: "no folder matches the given depth, name and owner",
			Ref:     name,
		}
	}
	result := *match
	return &result, nil
}

// ChildFolders lists direct children of parentID ordered by creation then id.
func (s *MemoryMetadataStore) ChildFolders(ctx context.Context, parentID string) ([]*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]*drive.Folder, 0, len(s.childIDs[parentID]))
	for id := range s.childIDs[parentID] {
		folder := *s.folders[id]
		children = append(children, &folder)
	}
	sort.Slice(children, func(i, j int) bool { return earlierFolder(children[i], children[j]) })
	return children, nil
}

// DeleteFolder removes the folder and cascades over its subtree: descendant
// folders and all contained files.
func (s *MemoryMetadataStore) DeleteFolder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, exists := s.folders[id]
	if !exists {
		return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
	}

	// Collect the subtree breadth-first, then drop every record and index.
	subtree := []string{id}
	for cursor := 0; cursor < len(subtree); cursor++ {
		for childID := range s.childIDs[subtree[cursor]] {
			subtree = append(subtree, childID)
		}
	}

	for _, folderID := range subtree {
		for fileID := range s.fileIDs[folderID] {
			delete(s.files, fileID)
		}
		delete(s.fileIDs, folderID)
		delete(s.childIDs, folderID)
		delete(s.folders, folderID)
	}
	s.unindexChild(root.ParentID, id)
	return nil
}

// SaveFile inserts or fully replaces the record with file.ID. The containing
// folder must exist.
func (s *MemoryMetadataStore) SaveFile(ctx context.Context, file *drive.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateFile(file); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.folders[file.FolderID]; !exists {
		return &store.StoreError{Code: store.ErrNotFound, Message: "containing folder not found", Ref: file.FolderID}
	}

	if previous, exists := s.files[file.ID]; exists && previous.FolderID != file.FolderID {
		delete(s.fileIDs[previous.FolderID], file.ID)
	}

	stored := *file
	s.files[file.ID] = &stored

	if s.fileIDs[file.FolderID] == nil {
		s.fileIDs[file.FolderID] = make(map[string]struct{})
	}
	s.fileIDs[file.FolderID][file.ID] = struct{}{}
	return nil
}

// FindFile retrieves a file by id.
func (s *MemoryMetadataStore) FindFile(ctx context.Context, id string) (*drive.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, exists := s.files[id]
	if !exists {
		return nil, &store.StoreError{Code: store.ErrNotFound, Message: "file not found", Ref: id}
	}
	result := *file
	return &result, nil
}

// FilesInFolder lists the files directly inside folderID ordered by upload
// time then id.
func (s *MemoryMetadataStore) FilesInFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]*drive.File, 0, len(s.fileIDs[folderID]))
	for id := range s.fileIDs[folderID] {
		file := *s.files[id]
		files = append(files, &file)
	}
	sort.Slice(files, func(i, j int) bool { return earlierFile(files[i], files[j]) })
	return files, nil
}

// Healthcheck always succeeds; there is no external dependency to probe.
func (s *MemoryMetadataStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close releases nothing; the store is garbage collected with its owner.
func (s *MemoryMetadataStore) Close() error {
	return nil
}

// unindexChild must be called with the write lock held.
func (s *MemoryMetadataStore) unindexChild(parentID, childID string) {
	if parentID == "" {
		return
	}
	delete(s.childIDs[parentID], childID)
	if len(s.childIDs[parentID]) == 0 {
		delete(s.childIDs, parentID)
	}
}

func earlierFolder(a, b *drive.Folder) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func earlierFile(a, b *drive.File) bool {
	if !a.UploadedAt.Equal(b.UploadedAt) {
		return a.UploadedAt.Before(b.UploadedAt)
	}
	return a.ID < b.ID
}
