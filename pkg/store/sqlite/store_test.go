package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/store/storetest"
)

// TestSQLiteMetadataStore runs the complete MetadataStore conformance suite
// against the SQLite implementation.
func TestSQLiteMetadataStore(t *testing.T) {
	suite := &storetest.StoreTestSuite{
		NewStore: func() store.MetadataStore {
			metaStore, err := NewSQLiteMetadataStore(SQLiteMetadataStoreConfig{
				Path: filepath.Join(t.TempDir(), "metadata.db"),
			})
			if err != nil {
				t.Fatalf("Failed to create SQLiteMetadataStore: %v", err)
			}
			t.Cleanup(func() { _ = metaStore.Close() })
			return metaStore
		},
	}

	suite.Run(t)
}

// TestSQLiteMetadataStore_Persistence verifies records survive a close and
// reopen of the same database file.
func TestSQLiteMetadataStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metadata.db")

	first, err := NewSQLiteMetadataStore(SQLiteMetadataStoreConfig{Path: path})
	require.NoError(t, err)

	folder := &drive.Folder{
		ID:            "folder-root",
		Name:          "ada",
		Depth:         0,
		Route:         "/ada/",
		OwnerID:       "owner-0001",
		OwnerUsername: "ada",
		CreatedAt:     time.Date(2024, time.March, 1, 12, 0, 0, 987654321, time.UTC),
	}
	require.NoError(t, first.SaveFolder(ctx, folder))

	file := &drive.File{
		ID:         "file-report",
		Route:      "/ada/report.pdf",
		Filename:   "report.pdf",
		Size:       2048,
		UploadedAt: folder.CreatedAt.Add(time.Minute),
		FolderID:   folder.ID,
	}
	require.NoError(t, first.SaveFile(ctx, file))
	require.NoError(t, first.Close())

	second, err := NewSQLiteMetadataStore(SQLiteMetadataStoreConfig{Path: path})
	require.NoError(t, err)
	defer second.Close()

	gotFolder, err := second.FindFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Equal(t, folder.Name, gotFolder.Name)
	require.True(t, folder.CreatedAt.Equal(gotFolder.CreatedAt),
		"created at lost precision across reopen: want %v, got %v", folder.CreatedAt, gotFolder.CreatedAt)

	gotFile, err := second.FindFile(ctx, file.ID)
	require.NoError(t, err)
	require.Equal(t, file.Route, gotFile.Route)
	require.True(t, file.UploadedAt.Equal(gotFile.UploadedAt))
}

// TestSQLiteMetadataStore_RequiresPath verifies the constructor rejects an
// empty path instead of opening a database nowhere.
func TestSQLiteMetadataStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteMetadataStore(SQLiteMetadataStoreConfig{})
	require.Error(t, err)
	require.True(t, store.IsInvalidArgument(err))
}
