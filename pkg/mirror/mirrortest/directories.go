package mirrortest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// RunDirectoryTests executes all directory operation tests.
func (suite *MirrorTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("CreateAndExists", suite.testCreateAndExists)
	t.Run("CreateMaterializesAncestors", suite.testCreateMaterializesAncestors)
	t.Run("CreateExisting", suite.testCreateExisting)
	t.Run("CreateInvalidRoute", suite.testCreateInvalidRoute)
	t.Run("ExistsMissing", suite.testExistsMissing)
	t.Run("WriteFile", suite.testWriteFile)
	t.Run("WriteFileReplaces", suite.testWriteFileReplaces)
	t.Run("WriteFileInvalidRoute", suite.testWriteFileInvalidRoute)
	t.Run("RemoveTree", suite.testRemoveTree)
	t.Run("RemoveTreeAbsent", suite.testRemoveTreeAbsent)
	t.Run("RemoveTreeLeavesSiblings", suite.testRemoveTreeLeavesSiblings)
}

func (suite *MirrorTestSuite) testCreateAndExists(t *testing.T) {
	m := suite.NewMirror()

	mustCreateDirectory(t, m, "/ada/")
	assertDirectoryExists(t, m, "/ada/", true)
}

func (suite *MirrorTestSuite) testCreateMaterializesAncestors(t *testing.T) {
	m := suite.NewMirror()

	// Action: create a deep route without creating its ancestors first
	mustCreateDirectory(t, m, "/ada/docs/reports/2024/")

	assertDirectoryExists(t, m, "/ada/docs/reports/2024/", true)
}

func (suite *MirrorTestSuite) testCreateExisting(t *testing.T) {
	m := suite.NewMirror()

	mustCreateDirectory(t, m, "/ada/docs/")
	mustCreateDirectory(t, m, "/ada/docs/")

	assertDirectoryExists(t, m, "/ada/docs/", true)
}

func (suite *MirrorTestSuite) testCreateInvalidRoute(t *testing.T) {
	m := suite.NewMirror()

	routes := map[string]string{
		"Empty":           "",
		"NoLeadingSlash":  "ada/docs/",
		"NoTrailingSlash": "/ada/docs",
		"RelativeSegment": "/ada/../etc/",
		"CurrentSegment":  "/ada/./docs/",
	}
	for name, route := range routes {
		t.Run(name, func(t *testing.T) {
			err := m.CreateDirectory(testContext(), route)
			AssertErrorCode(t, mirror.ErrInvalidPath, err, "route %q must be refused", route)
		})
	}
}

func (suite *MirrorTestSuite) testExistsMissing(t *testing.T) {
	m := suite.NewMirror()

	assertDirectoryExists(t, m, "/ada/nowhere/", false)
}

func (suite *MirrorTestSuite) testWriteFile(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("quarterly numbers"))

	// Writing a file materializes its parent directory
	assertDirectoryExists(t, m, "/ada/docs/", true)

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)
	entries := readArchive(t, archive)
	require.Len(t, entries, 1)
	require.Equal(t, "report.txt", entries[0].Name)
	require.Equal(t, []byte("quarterly numbers"), entries[0].Body)
}

func (suite *MirrorTestSuite) testWriteFileReplaces(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("draft"))
	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("final"))

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)
	entries := readArchive(t, archive)
	require.Len(t, entries, 1)
	require.Equal(t, []byte("final"), entries[0].Body)
}

func (suite *MirrorTestSuite) testWriteFileInvalidRoute(t *testing.T) {
	m := suite.NewMirror()

	routes := map[string]string{
		"FolderRoute":     "/ada/docs/",
		"NoLeadingSlash":  "ada/report.txt",
		"RelativeSegment": "/ada/../report.txt",
	}
	for name, route := range routes {
		t.Run(name, func(t *testing.T) {
			err := m.WriteFile(testContext(), route, []byte("x"))
			AssertErrorCode(t, mirror.ErrInvalidPath, err, "route %q must be refused", route)
		})
	}
}

func (suite *MirrorTestSuite) testRemoveTree(t *testing.T) {
	m := suite.NewMirror()

	// Setup: a subtree with files at two levels
	mustCreateDirectory(t, m, "/ada/docs/archive/")
	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("top"))
	mustWriteFile(t, m, "/ada/docs/archive/old.txt", []byte("old"))

	require.NoError(t, m.RemoveTree(testContext(), "/ada/docs/"))

	assertDirectoryExists(t, m, "/ada/docs/", false)
	assertDirectoryExists(t, m, "/ada/docs/archive/", false)
}

func (suite *MirrorTestSuite) testRemoveTreeAbsent(t *testing.T) {
	m := suite.NewMirror()

	// Removing something that never existed is not an error
	require.NoError(t, m.RemoveTree(testContext(), "/ada/ghost/"))

	// Neither is removing the same subtree twice
	mustCreateDirectory(t, m, "/ada/docs/")
	require.NoError(t, m.RemoveTree(testContext(), "/ada/docs/"))
	require.NoError(t, m.RemoveTree(testContext(), "/ada/docs/"))
}

func (suite *MirrorTestSuite) testRemoveTreeLeavesSiblings(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("keep me out of it"))
	mustWriteFile(t, m, "/ada/music/song.mp3", []byte("bytes"))

	require.NoError(t, m.RemoveTree(testContext(), "/ada/music/"))

	assertDirectoryExists(t, m, "/ada/music/", false)
	assertDirectoryExists(t, m, "/ada/docs/", true)
}
