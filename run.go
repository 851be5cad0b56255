package aiderapi

import (
	"context"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tluyben/aider-api/internal/cli"
	sdkerrors "github.com/tluyben/aider-api/internal/errors"
	"github.com/tluyben/aider-api/internal/runner"
	"github.com/tluyben/aider-api/internal/workspace"
)

// Run executes one aider edit pass in aggregate mode: the request files are
// materialized into an ephemeral workspace, aider is driven to completion,
// and the fully buffered output is returned.
//
// A non-nil error is a validation failure (empty message, missing files
// under the strict contract, or a path escaping the workspace) and occurs
// before any process is spawned. Launch failures are not errors: they are
// reported inside the result, with empty stdout and the failure description
// in the stderr and error fields.
//
// The workspace is released before Run returns, whatever the outcome.
func Run(ctx context.Context, req *EditRequest, opts ...Option) (*EditResult, error) {
	options := applyOptions(opts)
	log := requestLogger(options).With("component", "run")

	if err := validate(req, options); err != nil {
		return nil, err
	}

	ws, err := workspace.Materialize(log, req.Files)
	if err != nil {
		return nil, err
	}

	defer ws.Release()

	spec, err := buildSpec(req, ws, options, log)
	if err != nil {
		result := runner.LaunchFailureResult(err)

		return &EditResult{Stdout: result.Stdout, Stderr: result.Stderr, Error: result.Error}, nil
	}

	result := runner.New(log).Run(ctx, spec)

	return &EditResult{Stdout: result.Stdout, Stderr: result.Stderr, Error: result.Error}, nil
}

// Stream executes one aider edit pass in streaming mode. The returned
// sequence yields a ProgressEvent per observed output chunk, in observation
// order, and ends with exactly one terminal event: CompleteEvent carrying
// the same aggregate values Run would have produced, or ErrorEvent if the
// process could not be launched.
//
// A non-nil error is a validation failure, detected before the sequence
// exists so callers can reject the request without opening a stream.
//
// If the consumer stops iterating mid-stream, the child process is
// terminated and the workspace is still released; no terminal event is
// delivered in that case since nobody is left to receive it.
func Stream(ctx context.Context, req *EditRequest, opts ...Option) (iter.Seq[Event], error) {
	options := applyOptions(opts)
	log := requestLogger(options).With("component", "stream")

	if err := validate(req, options); err != nil {
		return nil, err
	}

	seq := func(yield func(Event) bool) {
		ws, err := workspace.Materialize(log, req.Files)
		if err != nil {
			yield(&ErrorEvent{Error: err.Error()})

			return
		}

		defer ws.Release()

		spec, err := buildSpec(req, ws, options, log)
		if err != nil {
			yield(&ErrorEvent{Error: err.Error()})

			return
		}

		// The runner's emit callback and the iterator share one liveness
		// flag: once yield returns false the consumer is gone, the child
		// gets killed, and no terminal event may be produced.
		alive := true

		emit := func(channel, text string) bool {
			if !alive {
				return false
			}

			if !yield(&ProgressEvent{Type: channel, Content: text}) {
				alive = false
			}

			return alive
		}

		result, execErr := runner.New(log).Execute(ctx, spec, emit)

		if !alive {
			return
		}

		if execErr != nil {
			yield(&ErrorEvent{Error: execErr.Error()})

			return
		}

		yield(&CompleteEvent{EditResult{
			Stdout: result.Stdout,
			Stderr: result.Stderr,
			Error:  result.Error,
		}})
	}

	return seq, nil
}

// validate enforces the request contract before any filesystem or process
// side effects: non-empty instruction, files present under the strict
// contract, and no path that would escape the workspace.
func validate(req *EditRequest, options *runOptions) error {
	if strings.TrimSpace(req.Message) == "" {
		return sdkerrors.ErrEmptyMessage
	}

	if options.requireFiles && len(req.Files) == 0 {
		return sdkerrors.ErrFilesRequired
	}

	for name := range req.Files {
		if name == "" || !filepath.IsLocal(name) {
			return &sdkerrors.InvalidPathError{Path: name}
		}
	}

	return nil
}

// buildSpec resolves the aider binary and assembles the runner invocation.
// A discovery failure is returned as-is so callers can fold it into a
// launch-failure result or terminal error event.
func buildSpec(req *EditRequest, ws *workspace.Workspace, options *runOptions, log *slog.Logger) (runner.Spec, error) {
	aiderPath, err := cli.NewDiscoverer(&cli.Config{
		AiderPath: options.aiderPath,
		Logger:    log,
	}).Discover()
	if err != nil {
		return runner.Spec{}, err
	}

	return runner.Spec{
		Message:   req.Message,
		FilePaths: ws.Files,
		Toggles: cli.Toggles{
			AutoCommits:  req.autoCommits(),
			DirtyCommits: req.dirtyCommits(),
			DryRun:       req.DryRun,
		},
		Root:      req.Root,
		AiderPath: aiderPath,
		ExtraEnv:  options.env,
	}, nil
}

// requestLogger returns the configured logger or a silent one.
func requestLogger(options *runOptions) *slog.Logger {
	if options.logger != nil {
		return options.logger
	}

	return NopLogger()
}
