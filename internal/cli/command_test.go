package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuildArgs_Defaults tests the argument vector for default toggles.
func TestBuildArgs_Defaults(t *testing.T) {
	toggles := Toggles{AutoCommits: true, DirtyCommits: true, DryRun: false}

	args := BuildArgs("add a docstring", toggles, []string{"/tmp/ws/test.py"})

	require.Equal(t, []string{
		"--message", "add a docstring",
		"--stream",
		"--auto-commits",
		"--dirty-commits",
		"--no-dry-run",
		"--no-show-model-warnings",
		"--yes",
		"/tmp/ws/test.py",
	}, args)
}

// TestBuildArgs_DryRun tests that dry-run flips both the dry-run and stream flags.
func TestBuildArgs_DryRun(t *testing.T) {
	toggles := Toggles{AutoCommits: false, DirtyCommits: false, DryRun: true}

	args := BuildArgs("refactor", toggles, nil)

	require.Contains(t, args, "--dry-run")
	require.Contains(t, args, "--no-stream")
	require.Contains(t, args, "--no-auto-commits")
	require.Contains(t, args, "--no-dirty-commits")
	require.NotContains(t, args, "--stream")
}

// TestBuildArgs_MessageIsSingleToken tests that instruction text is never split
// or quoted, even when it contains spaces or flag-like content.
func TestBuildArgs_MessageIsSingleToken(t *testing.T) {
	message := "rename foo --force; rm -rf /"

	args := BuildArgs(message, Toggles{}, nil)

	require.Equal(t, "--message", args[0])
	require.Equal(t, message, args[1])
}

// TestBuildArgs_FileOrderPreserved tests that file paths keep their given order.
func TestBuildArgs_FileOrderPreserved(t *testing.T) {
	files := []string{"/ws/a.py", "/ws/b.py", "/ws/sub/c.py"}

	args := BuildArgs("edit", Toggles{}, files)

	require.Equal(t, files, args[len(args)-3:])
}

// TestBuildArgs_Stable tests that identical inputs produce identical vectors.
func TestBuildArgs_Stable(t *testing.T) {
	toggles := Toggles{AutoCommits: true, DirtyCommits: false, DryRun: true}
	files := []string{"/ws/x.go"}

	first := BuildArgs("msg", toggles, files)
	second := BuildArgs("msg", toggles, files)

	require.Equal(t, first, second)
}

// TestBuildEnvironment_ExtraOverrides tests that extra entries are appended
// after the inherited environment.
func TestBuildEnvironment_ExtraOverrides(t *testing.T) {
	env := BuildEnvironment(map[string]string{"AIDER_MODEL": "gpt-4o"})

	require.Contains(t, env, "AIDER_MODEL=gpt-4o")
	require.Greater(t, len(env), 1)
}
