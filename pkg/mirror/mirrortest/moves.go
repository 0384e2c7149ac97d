package mirrortest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// RunMoveTests executes all MoveDirectory tests. Moves in the suite rename
// within the same parent, which is the shape rename cascades produce.
func (suite *MirrorTestSuite) RunMoveTests(t *testing.T) {
	t.Run("MoveCarriesContents", suite.testMoveCarriesContents)
	t.Run("MoveCarriesSubtree", suite.testMoveCarriesSubtree)
	t.Run("MoveMissing", suite.testMoveMissing)
	t.Run("MoveInvalidRoute", suite.testMoveInvalidRoute)
}

func (suite *MirrorTestSuite) testMoveCarriesContents(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("quarterly numbers"))

	require.NoError(t, m.MoveDirectory(testContext(), "/ada/docs/", "/ada/papers/"))

	assertDirectoryExists(t, m, "/ada/docs/", false)
	assertDirectoryExists(t, m, "/ada/papers/", true)

	archive, err := m.ArchiveSubtree(testContext(), "/ada/papers/")
	require.NoError(t, err)
	entries := readArchive(t, archive)
	require.Len(t, entries, 1)
	require.Equal(t, "report.txt", entries[0].Name)
	require.Equal(t, []byte("quarterly numbers"), entries[0].Body)
}

func (suite *MirrorTestSuite) testMoveCarriesSubtree(t *testing.T) {
	m := suite.NewMirror()

	// Setup: nested folders and files under the source
	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("top"))
	mustWriteFile(t, m, "/ada/docs/archive/old.txt", []byte("old"))
	mustCreateDirectory(t, m, "/ada/docs/empty/")

	require.NoError(t, m.MoveDirectory(testContext(), "/ada/docs/", "/ada/papers/"))

	assertDirectoryExists(t, m, "/ada/docs/", false)
	assertDirectoryExists(t, m, "/ada/papers/archive/", true)

	archive, err := m.ArchiveSubtree(testContext(), "/ada/papers/")
	require.NoError(t, err)
	require.Equal(t, []string{"old.txt", "report.txt"}, entryNames(readArchive(t, archive)))
}

func (suite *MirrorTestSuite) testMoveMissing(t *testing.T) {
	m := suite.NewMirror()

	err := m.MoveDirectory(testContext(), "/ada/ghost/", "/ada/spirit/")
	AssertErrorCode(t, mirror.ErrNotFound, err)
}

func (suite *MirrorTestSuite) testMoveInvalidRoute(t *testing.T) {
	m := suite.NewMirror()

	mustCreateDirectory(t, m, "/ada/docs/")

	err := m.MoveDirectory(testContext(), "/ada/docs/", "/ada/../docs/")
	AssertErrorCode(t, mirror.ErrInvalidPath, err)

	err = m.MoveDirectory(testContext(), "not-a-route", "/ada/papers/")
	AssertErrorCode(t, mirror.ErrInvalidPath, err)
}
