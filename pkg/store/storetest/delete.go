package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RunDeleteTests executes all delete cascade tests.
func (suite *StoreTestSuite) RunDeleteTests(t *testing.T) {
	t.Run("Leaf", suite.testDeleteLeaf)
	t.Run("Subtree", suite.testDeleteSubtree)
	t.Run("Missing", suite.testDeleteMissing)
	t.Run("SiblingsSurvive", suite.testDeleteSiblingsSurvive)
}

func (suite *StoreTestSuite) testDeleteLeaf(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	leaf := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, leaf))

	// Action
	require.NoError(t, store.DeleteFolder(ctx, leaf.ID))

	// Assert: gone from every read path
	_, err := store.FindFolder(ctx, leaf.ID)
	AssertErrorCode(t, ErrNotFound, err)

	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Empty(t, children)

	_, err = store.FindFolderAt(ctx, 1, "docs", root.OwnerUsername)
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testDeleteSubtree(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	// Setup: root -> docs -> archive, with files at both levels
	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	docs := childFolder(root, "folder-docs", "docs", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, docs))
	archive := childFolder(docs, "folder-archive", "archive", testEpoch.Add(2*time.Minute))
	require.NoError(t, store.SaveFolder(ctx, archive))

	inDocs := fileIn(docs, "file-a", "a.txt", testEpoch.Add(3*time.Minute))
	require.NoError(t, store.SaveFile(ctx, inDocs))
	inArchive := fileIn(archive, "file-b", "b.txt", testEpoch.Add(4*time.Minute))
	require.NoError(t, store.SaveFile(ctx, inArchive))

	// Action: delete the middle of the tree
	require.NoError(t, store.DeleteFolder(ctx, docs.ID))

	// Assert: the whole subtree is gone
	for _, id := range []string{docs.ID, archive.ID} {
		_, err := store.FindFolder(ctx, id)
		AssertErrorCode(t, ErrNotFound, err)
	}
	for _, id := range []string{inDocs.ID, inArchive.ID} {
		_, err := store.FindFile(ctx, id)
		AssertErrorCode(t, ErrNotFound, err)
	}

	// Assert: the root is untouched
	got, err := store.FindFolder(ctx, root.ID)
	require.NoError(t, err)
	requireSameFolder(t, root, got)

	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testDeleteMissing(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	AssertErrorCode(t, ErrNotFound, store.DeleteFolder(ctx, "no-such-folder"))
}

func (suite *StoreTestSuite) testDeleteSiblingsSurvive(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	doomed := childFolder(root, "folder-a", "doomed", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFolder(ctx, doomed))
	spared := childFolder(root, "folder-b", "spared", testEpoch.Add(2*time.Minute))
	require.NoError(t, store.SaveFolder(ctx, spared))
	kept := fileIn(spared, "file-kept", "kept.txt", testEpoch.Add(3*time.Minute))
	require.NoError(t, store.SaveFile(ctx, kept))

	// Action
	require.NoError(t, store.DeleteFolder(ctx, doomed.ID))

	// Assert: the sibling and its file are untouched
	got, err := store.FindFolder(ctx, spared.ID)
	require.NoError(t, err)
	requireSameFolder(t, spared, got)

	files, err := store.FilesInFolder(ctx, spared.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	children, err := store.ChildFolders(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, spared.ID, children[0].ID)
}
