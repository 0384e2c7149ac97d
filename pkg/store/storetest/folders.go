package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

// RunFolderTests executes all folder operation tests.
func (suite *StoreTestSuite) RunFolderTests(t *testing.T) {
	t.Run("SaveAndFind", suite.testFolderSaveAndFind)
	t.Run("SaveOverwrites", suite.testFolderSaveOverwrites)
	t.Run("SaveInvalid", suite.testFolderSaveInvalid)
	t.Run("FindMissing", suite.testFolderFindMissing)
	t.Run("UpdateName", suite.testFolderUpdateName)
	t.Run("UpdateNameMissing", suite.testFolderUpdateNameMissing)
	t.Run("FindAt", suite.testFolderFindAt)
	t.Run("FindAtPicksEarliest", suite.testFolderFindAtPicksEarliest)
	t.Run("FindAtMissing", suite.testFolderFindAtMissing)
	t.Run("Children", suite.testFolderChildren)
	t.Run("ChildrenOfUnknownParent", suite.testFolderChildrenOfUnknownParent)
	t.Run("DuplicateSiblingNames", suite.testFolderDuplicateSiblingNames)
}

func (suite *StoreTestSuite) testFolderSaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	// Setup: a root with one child
	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	child := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, child))

	// Assert: both come back field for field
	gotRoot, err := store.FindFolder(ctx, root.ID)
	require.NoError(t, err)
	requireSameFolder(t, root, gotRoot)

	gotChild, err := store.FindFolder(ctx, child.ID)
	require.NoError(t, err)
	requireSameFolder(t, child, gotChild)
}

func (suite *StoreTestSuite) testFolderSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	child := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, child))

	// Action: save the same id again with a different name and route
	updated := *child
	updated.Name = "papers"
	updated.Route = drive.ChildRoute(root.Route, "papers")
	require.NoError(t, store.SaveFolder(ctx, &updated))

	// Assert: one record, fully replaced
	got, err := store.FindFolder(ctx, child.ID)
	require.NoError(t, err)
	requireSameFolder(t, &updated, got)

	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)

	// Assert: the old location no longer resolves, the new one does
	_, err = store.FindFolderAt(ctx, child.Depth, "docs", child.OwnerUsername)
	AssertErrorCode(t, ErrNotFound, err)

	found, err := store.FindFolderAt(ctx, child.Depth, "papers", child.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, child.ID, found.ID)
}

func (suite *StoreTestSuite) testFolderSaveInvalid(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	base := rootFolder()

	mutations := map[string]func(f *drive.Folder){
		"EmptyID":       func(f *drive.Folder) { f.ID = "" },
		"EmptyName":     func(f *drive.Folder) { f.Name = "" },
		"EmptyRoute":    func(f *drive.Folder) { f.Route = "" },
		"EmptyOwner":    func(f *drive.Folder) { f.OwnerID = ""; f.OwnerUsername = "" },
		"NegativeDepth": func(f *drive.Folder) { f.Depth = -1 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			broken := *base
			mutate(&broken)
			AssertErrorCode(t, ErrInvalidArgument, store.SaveFolder(ctx, &broken))
		})
	}

	t.Run("Nil", func(t *testing.T) {
		AssertErrorCode(t, ErrInvalidArgument, store.SaveFolder(ctx, nil))
	})
}

func (suite *StoreTestSuite) testFolderFindMissing(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	_, err := store.FindFolder(ctx, "no-such-folder")
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFolderUpdateName(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	child := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, child))

	// Action: rename through the narrow update
	newRoute := drive.ChildRoute(root.Route, "papers")
	require.NoError(t, store.UpdateFolderName(ctx, child.ID, "papers", newRoute))

	// Assert: name and route changed, identity fields untouched
	got, err := store.FindFolder(ctx, child.ID)
	require.NoError(t, err)
	require.Equal(t, "papers", got.Name)
	require.Equal(t, newRoute, got.Route)
	require.Equal(t, child.Depth, got.Depth)
	require.Equal(t, child.ParentID, got.ParentID)
	require.Equal(t, child.OwnerID, got.OwnerID)
	require.True(t, child.CreatedAt.Equal(got.CreatedAt))

	// Assert: the location index followed the rename
	found, err := store.FindFolderAt(ctx, child.Depth, "papers", child.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, child.ID, found.ID)

	_, err = store.FindFolderAt(ctx, child.Depth, "docs", child.OwnerUsername)
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFolderUpdateNameMissing(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	err := store.UpdateFolderName(ctx, "no-such-folder", "papers", "/ada/papers/")
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFolderFindAt(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	docs := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, docs))
	nested := childFolder(docs, "folder-deep", "docs", testEpoch.Add(2*time.Minute))
	require.NoError(t, store.SaveFolder(ctx, nested))

	// Assert: depth disambiguates same-named folders
	got, err := store.FindFolderAt(ctx, 1, "docs", root.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, docs.ID, got.ID)

	got, err = store.FindFolderAt(ctx, 2, "docs", root.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, nested.ID, got.ID)

	// Assert: another owner sees nothing at the same location
	_, err = store.FindFolderAt(ctx, 1, "docs", "grace")
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFolderFindAtPicksEarliest(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	// Setup: three siblings sharing a name, saved newest first
	late := childFolder(root, "folder-c", "docs", testEpoch.Add(time.Hour))
	tieB := childFolder(root, "folder-b", "docs", testEpoch.Add(time.Minute))
	tieA := childFolder(root, "folder-a", "docs", testEpoch.Add(time.Minute))
	for _, folder := range []*drive.Folder{late, tieB, tieA} {
		require.NoError(t, store.SaveFolder(ctx, folder))
	}

	// Assert: earliest creation wins, ties broken by id
	got, err := store.FindFolderAt(ctx, 1, "docs", root.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, "folder-a", got.ID)
}

func (suite *StoreTestSuite) testFolderFindAtMissing(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	_, err := store.FindFolderAt(ctx, 3, "ghost", "ada")
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFolderChildren(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	// Setup: children saved out of creation order
	second := childFolder(root, "folder-b", "beta", testEpoch.Add(2*time.Minute))
	first := childFolder(root, "folder-a", "alpha", testEpoch.Add(time.Minute))
	third := childFolder(root, "folder-c", "gamma", testEpoch.Add(3*time.Minute))
	for _, folder := range []*drive.Folder{second, third, first} {
		require.NoError(t, store.SaveFolder(ctx, folder))
	}

	// Assert: listed in creation order regardless of save order
	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, "folder-a", children[0].ID)
	require.Equal(t, "folder-b", children[1].ID)
	require.Equal(t, "folder-c", children[2].ID)
}

func (suite *StoreTestSuite) testFolderChildrenOfUnknownParent(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	children, err := store.ChildFolders(ctx, "no-such-parent")
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testFolderDuplicateSiblingNames(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	// Action: two siblings under the same parent share a name
	older := childFolder(root, "folder-a", "docs", testEpoch.Add(time.Minute))
	newer := childFolder(root, "folder-b", "docs", testEpoch.Add(2*time.Minute))
	require.NoError(t, store.SaveFolder(ctx, older))
	require.NoError(t, store.SaveFolder(ctx, newer))

	// Assert: both records persist side by side
	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)

	// Assert: lookup resolves deterministically to the older one
	got, err := store.FindFolderAt(ctx, 1, "docs", root.OwnerUsername)
	require.NoError(t, err)
	require.Equal(t, older.ID, got.ID)
}
