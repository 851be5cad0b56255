// Package runner spawns aider as a child process and multiplexes its output
// channels into an aggregate result or an ordered chunk stream.
package runner

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tluyben/aider-api/internal/cli"
	"github.com/tluyben/aider-api/internal/errors"
)

// maxScanTokenSize is the maximum buffer size for reading aider output lines.
const maxScanTokenSize = 1024 * 1024 // 1MB

// Spec describes one aider invocation.
type Spec struct {
	// Message is the instruction text, passed as a single argv token.
	Message string

	// FilePaths are the materialized absolute file paths, in order.
	FilePaths []string

	// Toggles are the commit/dry-run switches.
	Toggles cli.Toggles

	// Root is the directory aider runs in. Files are passed as absolute
	// paths, so this is the caller's repository, not the workspace.
	// Defaults to the current directory.
	Root string

	// AiderPath is the resolved aider binary path.
	AiderPath string

	// ExtraEnv entries are appended to the inherited environment.
	ExtraEnv map[string]string
}

// Result is the aggregate outcome of one invocation.
type Result struct {
	Stdout string
	Stderr string

	// Error is the classification derived from stdout, or the launch
	// failure description. Empty when no known signature matched.
	Error string
}

// EmitFunc receives one output chunk as it is observed. Channel is "stdout"
// or "stderr"; text is one logical line without its trailing newline.
// Returning false signals that the consumer is gone: the child is terminated
// and the drain finishes without further emissions.
type EmitFunc func(channel, text string) bool

// chunk is one unit of child output flowing through the shared drain queue.
type chunk struct {
	channel string
	text    string
}

// Runner executes aider invocations.
type Runner struct {
	log *slog.Logger
}

// New creates a Runner that logs through the given logger.
func New(log *slog.Logger) *Runner {
	return &Runner{
		log: log.With("component", "runner"),
	}
}

// Run drives aider to completion in aggregate mode. Launch failures are
// folded into the result rather than returned: stdout stays empty and
// stderr/error carry the failure description, matching the wire contract.
func (r *Runner) Run(ctx context.Context, spec Spec) *Result {
	result, err := r.Execute(ctx, spec, nil)
	if err != nil {
		return LaunchFailureResult(err)
	}

	return result
}

// Execute spawns aider and drains both output channels to EOF.
//
// When emit is non-nil, every observed chunk is forwarded to it in
// observation order before the terminal result is produced. A non-nil error
// return means the process never produced output (launch failure); any
// failure past that point is folded into the result's partial buffers.
//
// The two pipes are read by dedicated goroutines feeding one shared queue,
// so a child blocked on a full stderr pipe can never stall a parent that is
// busy with stdout, and vice versa. The drain ends only when both readers
// have hit EOF.
func (r *Runner) Execute(ctx context.Context, spec Spec, emit EmitFunc) (*Result, error) {
	root := spec.Root
	if root == "" {
		root = "."
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &errors.LaunchError{Err: err}
	}

	args := cli.BuildArgs(spec.Message, spec.Toggles, spec.FilePaths)
	r.log.Debug("Built aider command", "aider_path", spec.AiderPath, "args", args, "cwd", absRoot)

	//nolint:gosec // G204: subprocess launching with dynamic args is the point of this package
	cmd := exec.CommandContext(ctx, spec.AiderPath, args...)
	cmd.Dir = absRoot
	cmd.Env = cli.BuildEnvironment(spec.ExtraEnv)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.log.Error("Failed to create stdout pipe", "error", err)

		return nil, &errors.LaunchError{Err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.log.Error("Failed to create stderr pipe", "error", err)

		return nil, &errors.LaunchError{Err: err}
	}

	if err := cmd.Start(); err != nil {
		r.log.Error("Failed to start aider process", "error", err)

		return nil, &errors.LaunchError{Err: err}
	}

	r.log.Info("aider process started", "pid", cmd.Process.Pid)

	// Two reader goroutines feed one ordered queue; the queue closes once
	// both have signaled EOF.
	chunks := make(chan chunk)

	g := new(errgroup.Group)
	g.Go(func() error { return readChannel("stdout", stdout, chunks) })
	g.Go(func() error { return readChannel("stderr", stderr, chunks) })

	readErrs := make(chan error, 1)

	go func() {
		readErrs <- g.Wait()
		close(chunks)
	}()

	var stdoutBuf, stderrBuf strings.Builder

	consumerGone := false

	for c := range chunks {
		// Newline-normalized: one logical line per chunk.
		if c.channel == "stdout" {
			stdoutBuf.WriteString(c.text)
			stdoutBuf.WriteString("\n")
		} else {
			stderrBuf.WriteString(c.text)
			stderrBuf.WriteString("\n")
		}

		if emit != nil && !consumerGone {
			if !emit(c.channel, c.text) {
				// Consumer disconnected mid-stream. Kill the child so it
				// does not outlive the request, then finish draining the
				// already-produced output.
				consumerGone = true

				r.log.Info("Stream consumer gone, terminating aider process", "pid", cmd.Process.Pid)

				_ = cmd.Process.Kill()
			}
		}
	}

	if readErr := <-readErrs; readErr != nil {
		// Drain ended early; partial buffers are still returned.
		r.log.Error("Error draining aider output", "error", readErr)
	}

	// Exit code is observed but does not gate success/failure reporting.
	exitCode := 0

	if waitErr := cmd.Wait(); waitErr != nil {
		if exitErr, ok := stderrors.AsType[*exec.ExitError](waitErr); ok {
			exitCode = exitErr.ExitCode()
		}

		r.log.Debug("aider process exited with error", "exit_code", exitCode, "error", waitErr)
	} else {
		r.log.Debug("aider process exited", "exit_code", exitCode)
	}

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	// Classification happens exactly once, over the final stdout.
	result.Error = Classify(result.Stdout)

	return result, nil
}

// readChannel scans one pipe line by line into the shared queue until EOF.
// Scanner errors end this channel's drain; the other channel is unaffected.
func readChannel(name string, pipe io.Reader, chunks chan<- chunk) error {
	scanner := bufio.NewScanner(pipe)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		chunks <- chunk{channel: name, text: scanner.Text()}
	}

	if err := scanner.Err(); err != nil {
		// Keep consuming the pipe after a failed scan. A child blocked
		// writing into a full pipe cannot exit, which would leave the
		// other channel waiting for an EOF that never comes.
		_, _ = io.Copy(io.Discard, pipe)

		return &errors.StreamReadError{Channel: name, Err: err}
	}

	return nil
}

// LaunchFailureResult folds a launch failure into an aggregate result:
// empty stdout, the failure description on stderr and in the error field.
func LaunchFailureResult(err error) *Result {
	return &Result{
		Stderr: "Error: " + err.Error() + "\n",
		Error:  err.Error(),
	}
}
