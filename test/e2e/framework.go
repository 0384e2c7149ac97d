package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeSantiago/nospace/internal/ids"
	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/config"
	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/engine"
	"github.com/codeSantiago/nospace/pkg/mirror"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/tasks"
)

// rootOwners resolves owners from their provisioned root folder, the same
// way the nospace binary does. The store keeps no separate owner records;
// the depth-0 folder carries the owner id and username.
type rootOwners struct {
	store store.MetadataStore
}

func (r *rootOwners) OwnerByUsername(ctx context.Context, username string) (drive.Owner, error) {
	root, err := r.store.FindFolderAt(ctx, 0, username, username)
	if err != nil {
		return drive.Owner{}, err
	}
	return drive.Owner{ID: root.OwnerID, Username: root.OwnerUsername}, nil
}

// TestContext provides a complete folder engine wired the way the nospace
// binary wires it:
// - Stores built through the configuration factories
// - A task runner executing the physical work
// - Owner lookups resolved from root folders
type TestContext struct {
	T      *testing.T
	Config *TestConfig
	Engine *engine.Engine
	Store  store.MetadataStore
	Mirror mirror.PhysicalMirror
	Runner *tasks.Runner

	// BasePath is the filesystem mirror root, for on-disk assertions.
	BasePath string

	storeSection *config.StoreConfig
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewTestContext builds the full stack for the given configuration.
func NewTestContext(t *testing.T, testConfig *TestConfig) *TestContext {
	t.Helper()

	// Always use ERROR level to keep test output clean.
	// These are functional tests, not debugging sessions.
	logger.SetLevel("ERROR")

	ctx, cancel := context.WithCancel(context.Background())

	tc := &TestContext{
		T:            t,
		Config:       testConfig,
		BasePath:     t.TempDir(),
		storeSection: testConfig.StoreSection(t, t.TempDir()),
		ctx:          ctx,
		cancel:       cancel,
	}

	tc.createStore()
	tc.createMirror()

	// The single worker makes an awaited no-op task a completion barrier
	// for everything submitted before it.
	tc.Runner = tasks.NewRunner(tasks.Config{Workers: 1, QueueSize: 64}, nil)

	tc.buildEngine()

	return tc
}

// createStore opens the metadata store through the same factory the
// binary uses.
func (tc *TestContext) createStore() {
	tc.T.Helper()

	metadataStore, err := config.CreateMetadataStore(tc.ctx, tc.storeSection)
	if err != nil {
		tc.T.Fatalf("Failed to create metadata store for %s: %v", tc.Config, err)
	}
	tc.Store = metadataStore
}

// createMirror opens a filesystem mirror over BasePath.
func (tc *TestContext) createMirror() {
	tc.T.Helper()

	section := &config.MirrorConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"base_path":    tc.BasePath,
			"staging_path": tc.T.TempDir(),
		},
	}
	physicalMirror, err := config.CreateMirror(tc.ctx, section)
	if err != nil {
		tc.T.Fatalf("Failed to create physical mirror: %v", err)
	}
	tc.Mirror = physicalMirror
}

func (tc *TestContext) buildEngine() {
	tc.T.Helper()

	eng, err := engine.New(tc.Store, tc.Mirror, tc.Runner, &rootOwners{store: tc.Store}, nil, engine.Config{})
	if err != nil {
		tc.T.Fatalf("Failed to build engine: %v", err)
	}
	tc.Engine = eng
}

// Reopen closes the metadata store and opens it again from the same
// configuration, rebuilding the engine on top. This is the binary's
// process model: every command runs in a fresh process over the same
// store and the same physical tree.
func (tc *TestContext) Reopen() {
	tc.T.Helper()

	if !tc.Config.Persistent {
		tc.T.Fatalf("Configuration %s does not persist across reopen", tc.Config)
	}

	tc.Drain()
	if err := tc.Store.Close(); err != nil {
		tc.T.Fatalf("Failed to close metadata store: %v", err)
	}

	tc.createStore()
	tc.buildEngine()
}

// Cleanup drains the task runner and closes the mirror and the store.
func (tc *TestContext) Cleanup() {
	tc.T.Helper()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := tc.Runner.Stop(stopCtx); err != nil {
		tc.T.Logf("Task runner did not drain cleanly: %v", err)
	}

	tc.cancel()

	if err := tc.Mirror.Close(); err != nil {
		tc.T.Logf("Failed to close mirror: %v", err)
	}
	if err := tc.Store.Close(); err != nil {
		tc.T.Logf("Failed to close store: %v", err)
	}
}

// Drain blocks until every physical task submitted so far has finished.
func (tc *TestContext) Drain() {
	tc.T.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tc.Runner.SubmitWait(ctx, "barrier", func(context.Context) error { return nil }); err != nil {
		tc.T.Fatalf("Failed to drain task runner: %v", err)
	}
}

// CreateRoot provisions a root folder for a new owner and returns it.
func (tc *TestContext) CreateRoot(username string) *drive.Folder {
	tc.T.Helper()

	owner := drive.Owner{ID: ids.New(), Username: username}
	if err := tc.Engine.CreateRootFolder(tc.ctx, owner); err != nil {
		tc.T.Fatalf("Failed to create root folder for %s: %v", username, err)
	}
	root, err := tc.Engine.FindFolderAt(tc.ctx, 0, username, username)
	if err != nil {
		tc.T.Fatalf("Failed to look up root folder for %s: %v", username, err)
	}
	return root
}

// CreateFolder creates a folder under parent and returns it.
func (tc *TestContext) CreateFolder(parentID, name string) *drive.Folder {
	tc.T.Helper()

	folder, err := tc.Engine.CreateFolder(tc.ctx, parentID, name)
	if err != nil {
		tc.T.Fatalf("Failed to create folder %s: %v", name, err)
	}
	return folder
}

// AddFile registers a file record and writes its physical twin, the way
// an upload collaborator would between engine operations.
func (tc *TestContext) AddFile(folder *drive.Folder, filename, body string) *drive.File {
	tc.T.Helper()

	file := &drive.File{
		ID:         ids.New(),
		Route:      drive.FileRoute(folder.Route, filename),
		Filename:   filename,
		Size:       int64(len(body)),
		UploadedAt: time.Now().UTC(),
		FolderID:   folder.ID,
	}
	if err := tc.Store.SaveFile(tc.ctx, file); err != nil {
		tc.T.Fatalf("Failed to save file %s: %v", filename, err)
	}
	if err := tc.Mirror.WriteFile(tc.ctx, file.Route, []byte(body)); err != nil {
		tc.T.Fatalf("Failed to write physical file %s: %v", file.Route, err)
	}
	return file
}

// FilePath maps a file route onto the mirror's disk location.
func (tc *TestContext) FilePath(route string) string {
	tc.T.Helper()

	segments, err := mirror.FileSegments(route)
	if err != nil {
		tc.T.Fatalf("Bad file route %q: %v", route, err)
	}
	return filepath.Join(tc.BasePath, filepath.Join(segments...))
}

// ReadPhysicalFile returns the on-disk content behind a file route.
func (tc *TestContext) ReadPhysicalFile(route string) string {
	tc.T.Helper()

	data, err := os.ReadFile(tc.FilePath(route))
	if err != nil {
		tc.T.Fatalf("Failed to read physical file %s: %v", route, err)
	}
	return string(data)
}

// AssertDirOnDisk fails the test when the folder route's presence on
// disk does not match want.
func (tc *TestContext) AssertDirOnDisk(route string, want bool) {
	tc.T.Helper()

	exists, err := tc.Mirror.DirectoryExists(tc.ctx, route)
	if err != nil {
		tc.T.Fatalf("Failed to check directory %s: %v", route, err)
	}
	if exists != want {
		tc.T.Errorf("Directory %s on disk = %v, want %v", route, exists, want)
	}
}
