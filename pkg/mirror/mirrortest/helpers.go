package mirrortest

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// archiveEntry is one file inside an exported archive. Entries keep their
// position in the archive so duplicate names stay distinguishable.
type archiveEntry struct {
	Name string
	Body []byte
}

// AssertErrorCode asserts that err is a MirrorError carrying the expected
// code.
func AssertErrorCode(t *testing.T, expected mirror.MirrorErrorCode, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err == nil {
		return assert.Fail(t, "Expected an error but got nil", msgAndArgs...)
	}

	var mirrorErr *mirror.MirrorError
	if errors.As(err, &mirrorErr) {
		return assert.Equal(t, expected, mirrorErr.Code, msgAndArgs...)
	}
	return assert.Fail(t, "Expected a *mirror.MirrorError, got "+err.Error(), msgAndArgs...)
}

// mustCreateDirectory creates a directory and fails the test if it errors.
func mustCreateDirectory(t *testing.T, m mirror.PhysicalMirror, route string) {
	t.Helper()
	err := m.CreateDirectory(testContext(), route)
	require.NoError(t, err, "CreateDirectory(%s) should succeed", route)
}

// mustWriteFile stores file bytes and fails the test if it errors.
func mustWriteFile(t *testing.T, m mirror.PhysicalMirror, fileRoute string, data []byte) {
	t.Helper()
	err := m.WriteFile(testContext(), fileRoute, data)
	require.NoError(t, err, "WriteFile(%s) should succeed", fileRoute)
}

// assertDirectoryExists checks physical presence of a folder route.
func assertDirectoryExists(t *testing.T, m mirror.PhysicalMirror, route string, expected bool) {
	t.Helper()
	exists, err := m.DirectoryExists(testContext(), route)
	require.NoError(t, err, "DirectoryExists(%s) should not error", route)
	assert.Equal(t, expected, exists, "Directory existence mismatch for %s", route)
}

// readArchive opens an exported archive and returns its entries in archive
// order.
func readArchive(t *testing.T, data []byte) []archiveEntry {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "Export should produce a readable archive")

	entries := make([]archiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err, "Archive entry %s should open", file.Name)

		body, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err, "Archive entry %s should be readable", file.Name)

		entries = append(entries, archiveEntry{Name: file.Name, Body: body})
	}
	return entries
}

// entryNames returns the sorted entry names of an archive, duplicates
// included.
func entryNames(entries []archiveEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}
