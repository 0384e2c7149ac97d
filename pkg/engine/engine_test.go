package engine

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/internal/ids"
	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/mirror"
	"github.com/codeSantiago/nospace/pkg/mirror/fs"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/store/memory"
	"github.com/codeSantiago/nospace/pkg/tasks"
)

// ownerMap is an in-memory OwnerDirectory for tests.
type ownerMap map[string]drive.Owner

func (m ownerMap) OwnerByUsername(_ context.Context, username string) (drive.Owner, error) {
	owner, ok := m[username]
	if !ok {
		return drive.Owner{}, &store.StoreError{Code: store.ErrNotFound, Message: "unknown owner", Ref: username}
	}
	return owner, nil
}

// testEnv bundles an engine with the collaborators its tests inspect.
type testEnv struct {
	engine   *Engine
	store    store.MetadataStore
	mirror   mirror.PhysicalMirror
	runner   *tasks.Runner
	basePath string
}

// newTestEnv builds an engine over a memory store and a filesystem mirror.
// The runner gets a single worker so tests can use an awaited no-op task
// as a completion barrier for everything submitted before it.
func newTestEnv(t *testing.T, config Config) *testEnv {
	t.Helper()

	basePath := t.TempDir()
	physical, err := fs.NewFSMirror(context.Background(), fs.FSMirrorConfig{
		BasePath:    basePath,
		StagingPath: t.TempDir(),
	})
	require.NoError(t, err)

	metadataStore := memory.NewMemoryMetadataStore()
	runner := tasks.NewRunner(tasks.Config{Workers: 1, QueueSize: 64}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
		_ = metadataStore.Close()
	})

	owners := ownerMap{"ada": {ID: "owner-ada", Username: "ada"}}
	eng, err := New(metadataStore, physical, runner, owners, nil, config)
	require.NoError(t, err)

	return &testEnv{
		engine:   eng,
		store:    metadataStore,
		mirror:   physical,
		runner:   runner,
		basePath: basePath,
	}
}

// drain blocks until every task submitted so far has finished.
func (env *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.runner.SubmitWait(ctx, "barrier", func(context.Context) error { return nil }))
}

func (env *testEnv) mustCreateRoot(t *testing.T) *drive.Folder {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.engine.CreateRootFolder(ctx, drive.Owner{ID: "owner-ada", Username: "ada"}))
	root, err := env.engine.FindFolderAt(ctx, 0, "ada", "ada")
	require.NoError(t, err)
	return root
}

func (env *testEnv) mustCreateFolder(t *testing.T, parentID, name string) *drive.Folder {
	t.Helper()
	folder, err := env.engine.CreateFolder(context.Background(), parentID, name)
	require.NoError(t, err)
	return folder
}

// addFile registers a file record and writes its physical twin, the way an
// upload collaborator would between engine operations.
func (env *testEnv) addFile(t *testing.T, folder *drive.Folder, filename, body string) *drive.File {
	t.Helper()
	ctx := context.Background()

	file := &drive.File{
		ID:         ids.New(),
		Route:      drive.FileRoute(folder.Route, filename),
		Filename:   filename,
		Size:       int64(len(body)),
		UploadedAt: time.Now().UTC(),
		FolderID:   folder.ID,
	}
	require.NoError(t, env.store.SaveFile(ctx, file))
	require.NoError(t, env.mirror.WriteFile(ctx, file.Route, []byte(body)))
	return file
}

func (env *testEnv) assertOnDisk(t *testing.T, route string, want bool) {
	t.Helper()
	exists, err := env.mirror.DirectoryExists(context.Background(), route)
	require.NoError(t, err)
	assert.Equal(t, want, exists, "directory %s on disk", route)
}

func archiveNames(t *testing.T, data []byte) []string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

// ============================================================================
// Folder Creation
// ============================================================================

func TestCreateRootFolder(t *testing.T) {
	env := newTestEnv(t, Config{})

	root := env.mustCreateRoot(t)
	assert.Equal(t, "ada", root.Name)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, "/ada/", root.Route)
	assert.Equal(t, "owner-ada", root.OwnerID)
	assert.Equal(t, "ada", root.OwnerUsername)
	assert.Empty(t, root.ParentID)
	assert.True(t, root.IsRoot())

	env.drain(t)
	env.assertOnDisk(t, "/ada/", true)

	info, err := os.Stat(filepath.Join(env.basePath, "ada"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateRootFolder_RejectsBadOwner(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	err := env.engine.CreateRootFolder(ctx, drive.Owner{Username: "ada"})
	require.Error(t, err, "missing owner id")

	var routeErr *drive.RouteError
	err = env.engine.CreateRootFolder(ctx, drive.Owner{ID: "o1", Username: "no/slashes"})
	require.ErrorAs(t, err, &routeErr)

	err = env.engine.CreateRootFolder(ctx, drive.Owner{ID: "o1", Username: ".."})
	require.ErrorAs(t, err, &routeErr)
}

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	root := env.mustCreateRoot(t)

	docs := env.mustCreateFolder(t, root.ID, "docs")
	assert.Equal(t, "docs", docs.Name)
	assert.Equal(t, 1, docs.Depth)
	assert.Equal(t, "/ada/docs/", docs.Route)
	assert.Equal(t, root.ID, docs.ParentID)
	assert.Equal(t, root.OwnerID, docs.OwnerID)
	assert.Equal(t, root.OwnerUsername, docs.OwnerUsername)

	found, err := env.engine.FindFolder(context.Background(), docs.ID)
	require.NoError(t, err)
	assert.Equal(t, docs.Route, found.Route)

	env.drain(t)
	env.assertOnDisk(t, "/ada/docs/", true)
}

func TestCreateFolder_MissingParent(t *testing.T) {
	env := newTestEnv(t, Config{})

	folder, err := env.engine.CreateFolder(context.Background(), "no-such-id", "docs")
	assert.Nil(t, folder)
	assert.True(t, store.IsNotFound(err), "expected NotFound, got %v", err)
}

func TestCreateFolder_InvalidName(t *testing.T) {
	env := newTestEnv(t, Config{})
	root := env.mustCreateRoot(t)

	for name, bad := range map[string]string{
		"Empty":   "",
		"Dot":     ".",
		"DotDot":  "..",
		"Slashed": "a/b",
	} {
		t.Run(name, func(t *testing.T) {
			folder, err := env.engine.CreateFolder(context.Background(), root.ID, bad)
			assert.Nil(t, folder)

			var routeErr *drive.RouteError
			require.ErrorAs(t, err, &routeErr)
		})
	}
}

func TestCreateFolder_DuplicateSiblingsKept(t *testing.T) {
	env := newTestEnv(t, Config{})
	root := env.mustCreateRoot(t)

	first := env.mustCreateFolder(t, root.ID, "docs")
	second := env.mustCreateFolder(t, root.ID, "docs")
	require.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Route, second.Route)

	// Lookups among duplicates resolve to the earliest created.
	found, err := env.engine.FindFolderAt(context.Background(), 1, "docs", "ada")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

// ============================================================================
// Lookups
// ============================================================================

func TestFindFolder_Missing(t *testing.T) {
	env := newTestEnv(t, Config{})

	folder, err := env.engine.FindFolder(context.Background(), "no-such-id")
	assert.Nil(t, folder)
	assert.True(t, store.IsNotFound(err))
}

func TestFindFolderAt_UnknownOwner(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.mustCreateRoot(t)

	folder, err := env.engine.FindFolderAt(context.Background(), 0, "ada", "nobody")
	assert.Nil(t, folder)
	assert.True(t, store.IsNotFound(err), "expected NotFound, got %v", err)
}

// ============================================================================
// Rename
// ============================================================================

func TestRenameFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")
	reports := env.mustCreateFolder(t, docs.ID, "reports")
	env.drain(t)

	direct := env.addFile(t, docs, "notes.md", "direct content")
	nested := env.addFile(t, reports, "q1.md", "nested content")

	renamed, err := env.engine.RenameFolder(ctx, docs.ID, "papers")
	require.NoError(t, err)
	assert.Equal(t, "papers", renamed.Name)
	assert.Equal(t, "/ada/papers/", renamed.Route)
	assert.Equal(t, docs.ID, renamed.ID)

	// The name-and-route update is synchronous.
	found, err := env.engine.FindFolder(ctx, docs.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ada/papers/", found.Route)

	env.drain(t)

	// Direct files follow the rename; descendant folder records do not.
	movedFile, err := env.store.FindFile(ctx, direct.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ada/papers/notes.md", movedFile.Route)

	child, err := env.engine.FindFolder(ctx, reports.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ada/docs/reports/", child.Route, "descendant folder routes are not rewritten")

	nestedFile, err := env.store.FindFile(ctx, nested.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ada/docs/reports/q1.md", nestedFile.Route)

	// The physical move carries the whole subtree.
	env.assertOnDisk(t, "/ada/docs/", false)
	env.assertOnDisk(t, "/ada/papers/", true)
	env.assertOnDisk(t, "/ada/papers/reports/", true)
}

func TestRenameFolder_BackToBackCascades(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")
	env.drain(t)
	file := env.addFile(t, docs, "notes.md", "content")

	// Two renames queue their cascades before either has run. Each cascade
	// rewrites by positional prefix, so chaining them lands the file under
	// the final route.
	_, err := env.engine.RenameFolder(ctx, docs.ID, "papers")
	require.NoError(t, err)
	_, err = env.engine.RenameFolder(ctx, docs.ID, "final")
	require.NoError(t, err)

	env.drain(t)

	moved, err := env.store.FindFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "/ada/final/notes.md", moved.Route)

	env.assertOnDisk(t, "/ada/docs/", false)
	env.assertOnDisk(t, "/ada/papers/", false)
	env.assertOnDisk(t, "/ada/final/", true)
}

func TestRenameFolder_InvalidName(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")

	folder, err := env.engine.RenameFolder(ctx, docs.ID, "a/b")
	assert.Nil(t, folder)

	var routeErr *drive.RouteError
	require.ErrorAs(t, err, &routeErr)

	// Nothing changed.
	found, err := env.engine.FindFolder(ctx, docs.ID)
	require.NoError(t, err)
	assert.Equal(t, "docs", found.Name)
	assert.Equal(t, "/ada/docs/", found.Route)
}

func TestRenameFolder_Missing(t *testing.T) {
	env := newTestEnv(t, Config{})

	folder, err := env.engine.RenameFolder(context.Background(), "no-such-id", "papers")
	assert.Nil(t, folder)
	assert.True(t, store.IsNotFound(err))
}

// ============================================================================
// Delete
// ============================================================================

func TestDeleteFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")
	reports := env.mustCreateFolder(t, docs.ID, "reports")
	music := env.mustCreateFolder(t, root.ID, "music")
	env.drain(t)
	file := env.addFile(t, reports, "q1.md", "content")

	require.NoError(t, env.engine.DeleteFolder(ctx, docs.ID))

	// The metadata cascade is synchronous and takes the whole subtree.
	for _, id := range []string{docs.ID, reports.ID} {
		_, err := env.engine.FindFolder(ctx, id)
		assert.True(t, store.IsNotFound(err))
	}
	_, err := env.store.FindFile(ctx, file.ID)
	assert.True(t, store.IsNotFound(err))

	// Siblings survive.
	_, err = env.engine.FindFolder(ctx, music.ID)
	require.NoError(t, err)

	env.drain(t)
	env.assertOnDisk(t, "/ada/docs/", false)
	env.assertOnDisk(t, "/ada/music/", true)
}

func TestDeleteFolder_Missing(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.engine.DeleteFolder(context.Background(), "no-such-id")
	assert.True(t, store.IsNotFound(err))
}

// ============================================================================
// Export
// ============================================================================

func TestExportFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")
	reports := env.mustCreateFolder(t, docs.ID, "reports")
	env.drain(t)
	env.addFile(t, docs, "notes.md", "direct")
	env.addFile(t, reports, "q1.md", "nested")

	data, err := env.engine.ExportFolder(ctx, docs.ID)
	require.NoError(t, err)

	// The archive is flat: nested entries keep only their base name.
	assert.Equal(t, []string{"notes.md", "q1.md"}, archiveNames(t, data))
}

func TestExportFolder_Missing(t *testing.T) {
	env := newTestEnv(t, Config{})

	data, err := env.engine.ExportFolder(context.Background(), "no-such-id")
	assert.Nil(t, data)
	assert.True(t, store.IsNotFound(err))
}

func TestExportFolder_Throttled(t *testing.T) {
	env := newTestEnv(t, Config{ExportsPerSecond: 1, ExportBurst: 1})
	ctx := context.Background()

	root := env.mustCreateRoot(t)
	docs := env.mustCreateFolder(t, root.ID, "docs")
	env.drain(t)

	_, err := env.engine.ExportFolder(ctx, docs.ID)
	require.NoError(t, err)

	// The burst is spent; a second export cannot get a token within the
	// deadline.
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	data, err := env.engine.ExportFolder(shortCtx, docs.ID)
	assert.Nil(t, data)
	require.Error(t, err)
}

// ============================================================================
// Failure Isolation
// ============================================================================

// brokenMirror fails every physical operation.
type brokenMirror struct{}

func (brokenMirror) ioFailure() error {
	return &mirror.MirrorError{Code: mirror.ErrIOError, Message: "mirror offline"}
}

func (m brokenMirror) CreateDirectory(context.Context, string) error { return m.ioFailure() }
func (m brokenMirror) MoveDirectory(context.Context, string, string) error {
	return m.ioFailure()
}
func (m brokenMirror) RemoveTree(context.Context, string) error { return m.ioFailure() }
func (m brokenMirror) DirectoryExists(context.Context, string) (bool, error) {
	return false, m.ioFailure()
}
func (m brokenMirror) WriteFile(context.Context, string, []byte) error { return m.ioFailure() }
func (m brokenMirror) ArchiveSubtree(context.Context, string) ([]byte, error) {
	return nil, m.ioFailure()
}
func (m brokenMirror) Healthcheck(context.Context) error { return m.ioFailure() }
func (m brokenMirror) Close() error                      { return nil }

func TestPhysicalFailuresStayBackground(t *testing.T) {
	metadataStore := memory.NewMemoryMetadataStore()
	runner := tasks.NewRunner(tasks.Config{Workers: 1, QueueSize: 64}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
		_ = metadataStore.Close()
	})

	eng, err := New(metadataStore, brokenMirror{}, runner, ownerMap{"ada": {ID: "o1", Username: "ada"}}, nil, Config{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.CreateRootFolder(ctx, drive.Owner{ID: "o1", Username: "ada"}))
	root, err := eng.FindFolderAt(ctx, 0, "ada", "ada")
	require.NoError(t, err)

	docs, err := eng.CreateFolder(ctx, root.ID, "docs")
	require.NoError(t, err, "create succeeds while its physical half fails")

	_, err = eng.RenameFolder(ctx, docs.ID, "papers")
	require.NoError(t, err, "rename succeeds while its physical move fails")

	require.NoError(t, eng.DeleteFolder(ctx, docs.ID), "delete succeeds while its physical removal fails")

	// Export is the exception: its physical result is the answer.
	_, err = eng.ExportFolder(ctx, root.ID)
	require.Error(t, err)
	assert.True(t, mirror.IsIOError(err), "expected the mirror failure, got %v", err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, runner.SubmitWait(waitCtx, "barrier", func(context.Context) error { return nil }))

	// Two creates, one move, one removal, one archive. The route cascade
	// touched only the store and succeeded.
	stats := runner.Stats()
	assert.Equal(t, uint64(5), stats.Failed)
	assert.Zero(t, stats.Rejected)
}

// ============================================================================
// Serialization
// ============================================================================

func TestLockFolderSerializes(t *testing.T) {
	env := newTestEnv(t, Config{SerializeFolderOps: true})

	unlock := env.engine.lockFolder("f1")

	acquired := make(chan struct{})
	go func() {
		second := env.engine.lockFolder("f1")
		second()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("unlock did not release the waiter")
	}
}

func TestLockFolderDisabledByDefault(t *testing.T) {
	env := newTestEnv(t, Config{})

	// Without serialization both acquisitions return immediately.
	first := env.engine.lockFolder("f1")
	second := env.engine.lockFolder("f1")
	first()
	second()
}

func TestOperationsRejectCancelledContext(t *testing.T) {
	env := newTestEnv(t, Config{})
	root := env.mustCreateRoot(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, env.engine.CreateRootFolder(cancelled, drive.Owner{ID: "o1", Username: "bob"}), context.Canceled)

	_, err := env.engine.CreateFolder(cancelled, root.ID, "docs")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = env.engine.FindFolder(cancelled, root.ID)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = env.engine.FindFolderAt(cancelled, 0, "ada", "ada")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = env.engine.RenameFolder(cancelled, root.ID, "eve")
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, env.engine.DeleteFolder(cancelled, root.ID), context.Canceled)

	_, err = env.engine.ExportFolder(cancelled, root.ID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewValidatesDependencies(t *testing.T) {
	metadataStore := memory.NewMemoryMetadataStore()
	defer metadataStore.Close()
	runner := tasks.NewRunner(tasks.Config{}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
	}()
	owners := ownerMap{}

	_, err := New(nil, brokenMirror{}, runner, owners, nil, Config{})
	assert.ErrorContains(t, err, "metadata store")

	_, err = New(metadataStore, nil, runner, owners, nil, Config{})
	assert.ErrorContains(t, err, "physical mirror")

	_, err = New(metadataStore, brokenMirror{}, nil, owners, nil, Config{})
	assert.ErrorContains(t, err, "task runner")

	_, err = New(metadataStore, brokenMirror{}, runner, nil, nil, Config{})
	assert.ErrorContains(t, err, "owner directory")
}
