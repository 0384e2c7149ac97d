package storetest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

// testEpoch anchors every timestamp the suite writes, so ordering
// assertions never depend on the wall clock.
var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// Test bodies name their store variable "store", shadowing the package;
// these aliases keep the error codes reachable there.
const (
	ErrNotFound        = store.ErrNotFound
	ErrInvalidArgument = store.ErrInvalidArgument
)

// testOwner returns the owner every suite fixture belongs to.
func testOwner() drive.Owner {
	return drive.Owner{ID: "owner-0001", Username: "ada"}
}

// rootFolder builds the owner's root folder fixture.
func rootFolder() *drive.Folder {
	owner := testOwner()
	return &drive.Folder{
		ID:            "folder-root",
		Name:          owner.Username,
		Depth:         0,
		Route:         drive.RootRoute(owner),
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		CreatedAt:     testEpoch,
	}
}

// childFolder builds a folder fixture directly under parent.
func childFolder(parent *drive.Folder, id, name string, createdAt time.Time) *drive.Folder {
	return &drive.Folder{
		ID:            id,
		Name:          name,
		Depth:         parent.Depth + 1,
		Route:         drive.ChildRoute(parent.Route, name),
		OwnerID:       parent.OwnerID,
		OwnerUsername: parent.OwnerUsername,
		ParentID:      parent.ID,
		CreatedAt:     createdAt,
	}
}

// fileIn builds a file fixture inside folder.
func fileIn(folder *drive.Folder, id, filename string, uploadedAt time.Time) *drive.File {
	return &drive.File{
		ID:         id,
		Route:      drive.FileRoute(folder.Route, filename),
		Filename:   filename,
		Size:       int64(len(filename)),
		UploadedAt: uploadedAt,
		FolderID:   folder.ID,
	}
}

// AssertErrorCode asserts that err is a StoreError carrying the expected
// code.
func AssertErrorCode(t *testing.T, expected store.ErrorCode, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err == nil {
		return assert.Fail(t, "Expected an error but got nil", msgAndArgs...)
	}

	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return assert.Equal(t, expected, storeErr.Code, msgAndArgs...)
	}
	return assert.Fail(t, "Expected a *store.StoreError, got "+err.Error(), msgAndArgs...)
}

// requireSameFolder compares every folder field, treating timestamps as
// equal when they name the same instant regardless of location.
func requireSameFolder(t *testing.T, want, got *drive.Folder) {
	t.Helper()

	require.NotNil(t, got)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Depth, got.Depth)
	require.Equal(t, want.Route, got.Route)
	require.Equal(t, want.OwnerID, got.OwnerID)
	require.Equal(t, want.OwnerUsername, got.OwnerUsername)
	require.Equal(t, want.ParentID, got.ParentID)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt),
		"created at mismatch: want %v, got %v", want.CreatedAt, got.CreatedAt)
}

// requireSameFile compares every file field, treating timestamps as equal
// when they name the same instant regardless of location.
func requireSameFile(t *testing.T, want, got *drive.File) {
	t.Helper()

	require.NotNil(t, got)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Route, got.Route)
	require.Equal(t, want.Filename, got.Filename)
	require.Equal(t, want.Size, got.Size)
	require.Equal(t, want.FolderID, got.FolderID)
	require.True(t, want.UploadedAt.Equal(got.UploadedAt),
		"uploaded at mismatch: want %v, got %v", want.UploadedAt, got.UploadedAt)
}
