package mirrortest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeSantiago/nospace/pkg/mirror"
)

// RunArchiveTests executes all ArchiveSubtree tests.
func (suite *MirrorTestSuite) RunArchiveTests(t *testing.T) {
	t.Run("FlatEntries", suite.testArchiveFlatEntries)
	t.Run("FlattensSubtree", suite.testArchiveFlattensSubtree)
	t.Run("KeepsDuplicateNames", suite.testArchiveKeepsDuplicateNames)
	t.Run("EmptyFolder", suite.testArchiveEmptyFolder)
	t.Run("Missing", suite.testArchiveMissing)
	t.Run("InvalidRoute", suite.testArchiveInvalidRoute)
	t.Run("Repeatable", suite.testArchiveRepeatable)
}

func (suite *MirrorTestSuite) testArchiveFlatEntries(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("quarterly numbers"))
	mustWriteFile(t, m, "/ada/docs/notes.md", []byte("# notes"))

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)

	entries := readArchive(t, archive)
	require.Len(t, entries, 2)
	require.Equal(t, []string{"notes.md", "report.txt"}, entryNames(entries))

	for _, entry := range entries {
		switch entry.Name {
		case "report.txt":
			require.Equal(t, []byte("quarterly numbers"), entry.Body)
		case "notes.md":
			require.Equal(t, []byte("# notes"), entry.Body)
		}
	}
}

func (suite *MirrorTestSuite) testArchiveFlattensSubtree(t *testing.T) {
	m := suite.NewMirror()

	// Setup: files at two depths below the export root
	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("top"))
	mustWriteFile(t, m, "/ada/docs/archive/2023/old.txt", []byte("old"))

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)

	// Entries are named by base filename only; nesting does not survive
	require.Equal(t, []string{"old.txt", "report.txt"}, entryNames(readArchive(t, archive)))
}

func (suite *MirrorTestSuite) testArchiveKeepsDuplicateNames(t *testing.T) {
	m := suite.NewMirror()

	// Two distinct files flatten to the same entry name
	mustWriteFile(t, m, "/ada/docs/january/report.txt", []byte("january"))
	mustWriteFile(t, m, "/ada/docs/february/report.txt", []byte("february"))

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)

	entries := readArchive(t, archive)
	require.Len(t, entries, 2)
	require.Equal(t, []string{"report.txt", "report.txt"}, entryNames(entries))
}

func (suite *MirrorTestSuite) testArchiveEmptyFolder(t *testing.T) {
	m := suite.NewMirror()

	mustCreateDirectory(t, m, "/ada/docs/")

	archive, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)
	require.Empty(t, readArchive(t, archive))
}

func (suite *MirrorTestSuite) testArchiveMissing(t *testing.T) {
	m := suite.NewMirror()

	_, err := m.ArchiveSubtree(testContext(), "/ada/ghost/")
	AssertErrorCode(t, mirror.ErrNotFound, err)
}

func (suite *MirrorTestSuite) testArchiveInvalidRoute(t *testing.T) {
	m := suite.NewMirror()

	_, err := m.ArchiveSubtree(testContext(), "/ada/../docs/")
	AssertErrorCode(t, mirror.ErrInvalidPath, err)
}

func (suite *MirrorTestSuite) testArchiveRepeatable(t *testing.T) {
	m := suite.NewMirror()

	mustWriteFile(t, m, "/ada/docs/report.txt", []byte("quarterly numbers"))
	mustWriteFile(t, m, "/ada/docs/archive/old.txt", []byte("old"))

	// Action: export twice without touching the tree in between
	first, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)
	second, err := m.ArchiveSubtree(testContext(), "/ada/docs/")
	require.NoError(t, err)

	// Same entries with the same content both times; container-level byte
	// equality is not promised
	require.Equal(t, readArchive(t, first), readArchive(t, second))
}
