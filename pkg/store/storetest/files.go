package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/drive"
)

// RunFileTests executes all file operation tests.
func (suite *StoreTestSuite) RunFileTests(t *testing.T) {
	t.Run("SaveAndFind", suite.testFileSaveAndFind)
	t.Run("SaveRewritesRoute", suite.testFileSaveRewritesRoute)
	t.Run("SaveWithoutFolder", suite.testFileSaveWithoutFolder)
	t.Run("SaveInvalid", suite.testFileSaveInvalid)
	t.Run("FindMissing", suite.testFileFindMissing)
	t.Run("ListOrdering", suite.testFileListOrdering)
	t.Run("ListEmptyFolder", suite.testFileListEmptyFolder)
}

func (suite *StoreTestSuite) testFileSaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	// Action
	file := fileIn(root, "file-report", "report.pdf", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFile(ctx, file))

	// Assert
	got, err := store.FindFile(ctx, file.ID)
	require.NoError(t, err)
	requireSameFile(t, file, got)
}

func (suite *StoreTestSuite) testFileSaveRewritesRoute(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	file := fileIn(root, "file-report", "report.pdf", testEpoch.Add(time.Minute))
	require.NoError(t, store.SaveFile(ctx, file))

	// Action: rewrite the route the way a folder rename cascade does
	moved := *file
	moved.Route = "/ada/papers/report.pdf"
	require.NoError(t, store.SaveFile(ctx, &moved))

	// Assert: one record, new route
	got, err := store.FindFile(ctx, file.ID)
	require.NoError(t, err)
	requireSameFile(t, &moved, got)

	files, err := store.FilesInFolder(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func (suite *StoreTestSuite) testFileSaveWithoutFolder(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	orphan := &drive.File{
		ID:         "file-orphan",
		Route:      "/ada/ghost/orphan.txt",
		Filename:   "orphan.txt",
		UploadedAt: testEpoch,
		FolderID:   "no-such-folder",
	}
	AssertErrorCode(t, ErrNotFound, store.SaveFile(ctx, orphan))
}

func (suite *StoreTestSuite) testFileSaveInvalid(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))
	base := fileIn(root, "file-report", "report.pdf", testEpoch)

	mutations := map[string]func(f *drive.File){
		"EmptyID":       func(f *drive.File) { f.ID = "" },
		"EmptyRoute":    func(f *drive.File) { f.Route = "" },
		"EmptyFilename": func(f *drive.File) { f.Filename = "" },
		"EmptyFolderID": func(f *drive.File) { f.FolderID = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			broken := *base
			mutate(&broken)
			AssertErrorCode(t, ErrInvalidArgument, store.SaveFile(ctx, &broken))
		})
	}

	t.Run("Nil", func(t *testing.T) {
		AssertErrorCode(t, ErrInvalidArgument, store.SaveFile(ctx, nil))
	})
}

func (suite *StoreTestSuite) testFileFindMissing(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	_, err := store.FindFile(ctx, "no-such-file")
	AssertErrorCode(t, ErrNotFound, err)
}

func (suite *StoreTestSuite) testFileListOrdering(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	// Setup: uploads saved out of order, including an upload-time tie
	second := fileIn(root, "file-b", "beta.txt", testEpoch.Add(time.Minute))
	tieLater := fileIn(root, "file-d", "delta.txt", testEpoch.Add(2*time.Minute))
	tieEarlier := fileIn(root, "file-c", "gamma.txt", testEpoch.Add(2*time.Minute))
	first := fileIn(root, "file-a", "alpha.txt", testEpoch)
	for _, file := range []*drive.File{second, tieLater, tieEarlier, first} {
		require.NoError(t, store.SaveFile(ctx, file))
	}

	// Assert: upload order, ties broken by id
	files, err := store.FilesInFolder(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, files, 4)
	require.Equal(t, "file-a", files[0].ID)
	require.Equal(t, "file-b", files[1].ID)
	require.Equal(t, "file-c", files[2].ID)
	require.Equal(t, "file-d", files[3].ID)
}

func (suite *StoreTestSuite) testFileListEmptyFolder(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore()

	root := rootFolder()
	require.NoError(t, store.SaveFolder(ctx, root))

	files, err := store.FilesInFolder(ctx, root.ID)
	require.NoError(t, err)
	require.Empty(t, files)
}
