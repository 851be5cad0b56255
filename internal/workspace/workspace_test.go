package workspace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	aidererrors "github.com/tluyben/aider-api/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestMaterialize_WritesFiles tests that file contents land verbatim in the
// workspace, including entries in subdirectories.
func TestMaterialize_WritesFiles(t *testing.T) {
	files := map[string]string{
		"test.py":        "def hello():\n    print('Hello, World!')",
		"pkg/util.py":    "x = 1\n",
		"docs/notes.txt": "",
	}

	ws, err := Materialize(testLogger(), files)
	require.NoError(t, err)

	defer ws.Release()

	require.DirExists(t, ws.Dir)
	require.Len(t, ws.Files, 3)

	// Sorted by relative path
	require.Equal(t, filepath.Join(ws.Dir, "docs/notes.txt"), ws.Files[0])
	require.Equal(t, filepath.Join(ws.Dir, "pkg/util.py"), ws.Files[1])
	require.Equal(t, filepath.Join(ws.Dir, "test.py"), ws.Files[2])

	content, err := os.ReadFile(filepath.Join(ws.Dir, "test.py"))
	require.NoError(t, err)
	require.Equal(t, "def hello():\n    print('Hello, World!')", string(content))
}

// TestMaterialize_RejectsTraversal tests that parent traversal and absolute
// paths fail with InvalidPathError and leave no workspace behind.
func TestMaterialize_RejectsTraversal(t *testing.T) {
	for _, path := range []string{"../evil.py", "a/../../evil.py", "/etc/passwd", ""} {
		ws, err := Materialize(testLogger(), map[string]string{path: "x"})

		require.Nil(t, ws, "path %q", path)

		var pathErr *aidererrors.InvalidPathError

		require.ErrorAs(t, err, &pathErr, "path %q", path)
	}
}

// TestRelease_RemovesDirectory tests that Release removes the tree and is
// idempotent.
func TestRelease_RemovesDirectory(t *testing.T) {
	ws, err := Materialize(testLogger(), map[string]string{"a.txt": "hi"})
	require.NoError(t, err)
	require.DirExists(t, ws.Dir)

	ws.Release()
	require.NoDirExists(t, ws.Dir)

	// Second release is a no-op
	ws.Release()
	require.NoDirExists(t, ws.Dir)
}

// TestMaterialize_IndependentWorkspaces tests that two materializations of the
// same mapping produce distinct directories with independent lifecycles.
func TestMaterialize_IndependentWorkspaces(t *testing.T) {
	files := map[string]string{"same.txt": "content"}

	first, err := Materialize(testLogger(), files)
	require.NoError(t, err)

	second, err := Materialize(testLogger(), files)
	require.NoError(t, err)

	require.NotEqual(t, first.Dir, second.Dir)

	first.Release()
	require.NoDirExists(t, first.Dir)
	require.DirExists(t, second.Dir)

	second.Release()
	require.NoDirExists(t, second.Dir)
}

// TestMaterialize_EmptyMapping tests that an empty mapping still yields a
// usable, releasable workspace.
func TestMaterialize_EmptyMapping(t *testing.T) {
	ws, err := Materialize(testLogger(), nil)
	require.NoError(t, err)
	require.Empty(t, ws.Files)
	require.DirExists(t, ws.Dir)

	ws.Release()
	require.NoDirExists(t, ws.Dir)
}
