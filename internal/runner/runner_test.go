package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeStub writes an executable shell script standing in for aider and
// returns its path.
func writeStub(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "aider")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err)

	return path
}

// TestRun_CapturesBothChannels tests that aggregate mode drains stdout and
// stderr fully, newline-normalized.
func TestRun_CapturesBothChannels(t *testing.T) {
	stub := writeStub(t, `
echo "line one"
echo "warning: something" >&2
echo "line two"
`)

	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "add a docstring",
		AiderPath: stub,
	})

	require.Equal(t, "line one\nline two\n", result.Stdout)
	require.Equal(t, "warning: something\n", result.Stderr)
	require.Empty(t, result.Error)
}

// TestRun_ClassifiesKnownFailure tests that the stdout classifier is applied
// to the drained output.
func TestRun_ClassifiesKnownFailure(t *testing.T) {
	stub := writeStub(t, `
echo "For more info see https://aider.chat/docs/troubleshooting/models-and-keys.html"
`)

	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "edit",
		AiderPath: stub,
	})

	require.Equal(t, "something went wrong, AI key or model not found", result.Error)
}

// TestRun_LaunchFailure tests that a missing executable becomes an aggregate
// error instead of a returned error: empty stdout, descriptive stderr.
func TestRun_LaunchFailure(t *testing.T) {
	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "edit",
		AiderPath: "/nonexistent/aider-binary",
	})

	require.Empty(t, result.Stdout)
	require.NotEmpty(t, result.Stderr)
	require.Contains(t, result.Stderr, "failed to start aider process")
	require.Contains(t, result.Error, "failed to start aider process")
}

// TestRun_NonZeroExitIsNotAnError tests that the exit code is observed but
// does not gate the result.
func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	stub := writeStub(t, `
echo "partial output"
exit 3
`)

	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "edit",
		AiderPath: stub,
	})

	require.Equal(t, "partial output\n", result.Stdout)
	require.Empty(t, result.Error)
}

// TestExecute_StreamMatchesAggregate tests that streaming delivery changes
// the mechanism, not the final content: identical child output must produce
// identical raw buffers and classification in both modes.
func TestExecute_StreamMatchesAggregate(t *testing.T) {
	stub := writeStub(t, `
echo "first"
echo "err line" >&2
echo "second"
echo "see https://aider.chat/docs/troubleshooting"
`)
	spec := Spec{Message: "edit", AiderPath: stub}

	aggregate := New(testLogger()).Run(context.Background(), spec)

	type event struct{ channel, text string }

	var events []event

	streamed, err := New(testLogger()).Execute(context.Background(), spec,
		func(channel, text string) bool {
			events = append(events, event{channel, text})

			return true
		})
	require.NoError(t, err)

	require.Equal(t, aggregate.Stdout, streamed.Stdout)
	require.Equal(t, aggregate.Stderr, streamed.Stderr)
	require.Equal(t, aggregate.Error, streamed.Error)
	require.Equal(t, "something went wrong", streamed.Error)

	// Per-channel order equals production order.
	var stdoutLines []string

	for _, e := range events {
		if e.channel == "stdout" {
			stdoutLines = append(stdoutLines, e.text)
		}
	}

	require.Equal(t, []string{"first", "second", "see https://aider.chat/docs/troubleshooting"}, stdoutLines)
}

// TestRun_OversizedLineEndsDrain tests that a line exceeding the scanner
// buffer aborts that channel's drain without wedging the pass: the pipe
// keeps being consumed so the child can exit, and the other channel is
// still captured in full.
func TestRun_OversizedLineEndsDrain(t *testing.T) {
	stub := writeStub(t, `
head -c 2097152 /dev/zero | tr '\0' 'x'
echo
echo "after the flood"
echo "stderr survives" >&2
`)

	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "edit",
		AiderPath: stub,
	})

	require.NotContains(t, result.Stdout, "after the flood")
	require.Equal(t, "stderr survives\n", result.Stderr)
	require.Empty(t, result.Error)
}

// TestExecute_ConsumerGoneKillsChild tests that an emit callback returning
// false terminates the child instead of letting it run to completion.
func TestExecute_ConsumerGoneKillsChild(t *testing.T) {
	// sleep gets its own fds so the pipe reaches EOF as soon as the
	// shell is killed
	stub := writeStub(t, `
echo "before"
sleep 30 > /dev/null 2>&1
echo "after"
`)

	result, err := New(testLogger()).Execute(context.Background(), Spec{
		Message:   "edit",
		AiderPath: stub,
	}, func(channel, text string) bool {
		return false
	})
	require.NoError(t, err)

	require.Contains(t, result.Stdout, "before")
	require.NotContains(t, result.Stdout, "after")
}

// TestExecute_ContextCancellation tests that cancelling the context ends the
// drain with the partial buffers intact.
func TestExecute_ContextCancellation(t *testing.T) {
	stub := writeStub(t, `
echo "started"
sleep 30 > /dev/null 2>&1
echo "finished"
`)

	ctx, cancel := context.WithCancel(context.Background())

	result, err := New(testLogger()).Execute(ctx, Spec{
		Message:   "edit",
		AiderPath: stub,
	}, func(channel, text string) bool {
		cancel()

		return true
	})
	require.NoError(t, err)

	require.Contains(t, result.Stdout, "started")
	require.NotContains(t, result.Stdout, "finished")
}

// TestExecute_RunsInRoot tests that the child working directory is the
// caller-supplied root, not the workspace.
func TestExecute_RunsInRoot(t *testing.T) {
	stub := writeStub(t, `pwd`)
	root := t.TempDir()

	result := New(testLogger()).Run(context.Background(), Spec{
		Message:   "edit",
		AiderPath: stub,
		Root:      root,
	})

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	require.NoError(t, err)
	require.Equal(t, resolved, got)
}
