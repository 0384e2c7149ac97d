package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/codeSantiago/nospace/internal/ids"
	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/drive"
)

// CreateRootFolder materializes an owner's space: a depth-0 folder named
// after the owner whose route is "/<username>/". The metadata save is
// synchronous; the physical directory follows in the background.
func (e *Engine) CreateRootFolder(ctx context.Context, owner drive.Owner) (err error) {
	start := time.Now()
	defer func() { e.instrument("CreateRootFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	if owner.ID == "" {
		return fmt.Errorf("owner id is required")
	}
	if !drive.ValidName(owner.Username) {
		return &drive.RouteError{
			Route:  drive.Separator + owner.Username + drive.Separator,
			Reason: fmt.Sprintf("username %q cannot anchor a root route", owner.Username),
		}
	}

	folder := &drive.Folder{
		ID:            ids.New(),
		Name:          owner.Username,
		Depth:         0,
		Route:         drive.RootRoute(owner),
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		CreatedAt:     time.Now().UTC(),
	}

	if err = e.store.SaveFolder(ctx, folder); err != nil {
		return err
	}

	logger.Info("Created root folder %s at %s", folder.ID, folder.Route)
	e.submitBackground("CreateRootFolder", taskPhysicalCreate, folder.Route, classifyCreateError, func(taskCtx context.Context) error {
		return e.mirror.CreateDirectory(taskCtx, folder.Route)
	})
	return nil
}

// CreateFolder creates a child of parentID named name and returns it.
//
// The physical create is submitted before the metadata save runs, so the
// two halves land in no guaranteed order. A sibling with the same name is
// not rejected; lookups among duplicates follow the store's earliest-wins
// rule.
func (e *Engine) CreateFolder(ctx context.Context, parentID, name string) (folder *drive.Folder, err error) {
	start := time.Now()
	defer func() { e.instrument("CreateFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	parent, err := e.store.FindFolder(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !drive.ValidName(name) {
		return nil, &drive.RouteError{
			Route:  parent.Route,
			Reason: fmt.Sprintf("invalid segment name %q", name),
		}
	}

	folder = &drive.Folder{
		ID:            ids.New(),
		Name:          name,
		Depth:         parent.Depth + 1,
		Route:         drive.ChildRoute(parent.Route, name),
		OwnerID:       parent.OwnerID,
		OwnerUsername: parent.OwnerUsername,
		ParentID:      parent.ID,
		CreatedAt:     time.Now().UTC(),
	}

	e.submitBackground("CreateFolder", taskPhysicalCreate, folder.Route, classifyCreateError, func(taskCtx context.Context) error {
		return e.mirror.CreateDirectory(taskCtx, folder.Route)
	})

	if err = e.store.SaveFolder(ctx, folder); err != nil {
		return nil, err
	}

	logger.Debug("Created folder %s at %s", folder.ID, folder.Route)
	return folder, nil
}

// FindFolder returns the folder with the given id.
func (e *Engine) FindFolder(ctx context.Context, id string) (folder *drive.Folder, err error) {
	start := time.Now()
	defer func() { e.instrument("FindFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return e.store.FindFolder(ctx, id)
}

// FindFolderAt returns the folder at (depth, name) in the named owner's
// tree. The username is resolved through the owner directory first, so an
// unknown owner surfaces as NotFound before the store is consulted.
func (e *Engine) FindFolderAt(ctx context.Context, depth int, name, username string) (folder *drive.Folder, err error) {
	start := time.Now()
	defer func() { e.instrument("FindFolderAt", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	owner, err := e.owners.OwnerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return e.store.FindFolderAt(ctx, depth, name, owner.Username)
}

// RenameFolder renames the folder and returns it with its new name and
// route.
//
// Only the synchronous name-and-route update must succeed before the
// caller is answered. Two cascades follow in the background: the routes
// of the folder's direct files are rewritten one by one, and the physical
// directory is moved. Descendant folder records keep their old routes;
// the physical move carries the whole subtree regardless.
func (e *Engine) RenameFolder(ctx context.Context, id, newName string) (folder *drive.Folder, err error) {
	start := time.Now()
	defer func() { e.instrument("RenameFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	unlock := e.lockFolder(id)
	defer unlock()

	current, err := e.store.FindFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	oldRoute := current.Route
	newRoute, err := drive.RenamedRoute(oldRoute, newName)
	if err != nil {
		return nil, err
	}

	e.submitBackground("RenameFolder", taskRouteCascade, oldRoute, classifyStoreError, func(taskCtx context.Context) error {
		return e.rewriteFileRoutes(taskCtx, id, oldRoute, newRoute)
	})
	e.submitBackground("RenameFolder", taskPhysicalMove, oldRoute, classifyMirrorError, func(taskCtx context.Context) error {
		return e.mirror.MoveDirectory(taskCtx, oldRoute, newRoute)
	})

	if err = e.store.UpdateFolderName(ctx, id, newName, newRoute); err != nil {
		return nil, err
	}

	renamed := *current
	renamed.Name = newName
	renamed.Route = newRoute
	logger.Info("Renamed folder %s: %s -> %s", id, oldRoute, newRoute)
	return &renamed, nil
}

// rewriteFileRoutes repoints the direct files of a renamed folder from
// oldRoute to newRoute. Each file is rewritten independently; one bad
// route does not stop the rest.
func (e *Engine) rewriteFileRoutes(ctx context.Context, folderID, oldRoute, newRoute string) error {
	files, err := e.store.FilesInFolder(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to list files of folder %s: %w", folderID, err)
	}

	failed := 0
	for _, file := range files {
		rewritten, routeErr := drive.ChildFileRoute(oldRoute, newRoute, file.Route)
		if routeErr != nil {
			failed++
			logger.Warn("File %s keeps route %s: %v", file.ID, file.Route, routeErr)
			continue
		}

		file.Route = rewritten
		if saveErr := e.store.SaveFile(ctx, file); saveErr != nil {
			failed++
			logger.Warn("Failed to save rewritten route for file %s: %v", file.ID, saveErr)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file routes not rewritten under %s", failed, len(files), newRoute)
	}
	return nil
}

// DeleteFolder removes the folder and its whole metadata subtree, files
// included. The metadata cascade is synchronous; the physical tree is
// removed in the background.
func (e *Engine) DeleteFolder(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { e.instrument("DeleteFolder", start, err) }()

	if err = ctx.Err(); err != nil {
		return err
	}

	unlock := e.lockFolder(id)
	defer unlock()

	folder, err := e.store.FindFolder(ctx, id)
	if err != nil {
		return err
	}

	if err = e.store.DeleteFolder(ctx, id); err != nil {
		return err
	}
	e.folderLocks.Delete(id)

	logger.Info("Deleted folder %s at %s", id, folder.Route)
	e.submitBackground("DeleteFolder", taskPhysicalDelete, folder.Route, classifyMirrorError, func(taskCtx context.Context) error {
		return e.mirror.RemoveTree(taskCtx, folder.Route)
	})
	return nil
}
