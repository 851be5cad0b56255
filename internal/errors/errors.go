package errors

import (
	"errors"
	"fmt"
)

// AiderAPIError is the base interface for all aider-api errors.
type AiderAPIError interface {
	error
	IsAiderAPIError() bool
}

// Compile-time verification that all error types implement AiderAPIError.
var (
	_ AiderAPIError = (*AiderNotFoundError)(nil)
	_ AiderAPIError = (*LaunchError)(nil)
	_ AiderAPIError = (*InvalidPathError)(nil)
	_ AiderAPIError = (*StreamReadError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrEmptyMessage indicates the request carried no instruction text.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrFilesRequired indicates the strict contract rejected a request
	// with no files.
	ErrFilesRequired = errors.New("at least one file is required")
)

// AiderNotFoundError indicates the aider binary was not found.
type AiderNotFoundError struct {
	SearchedPaths []string
}

func (e *AiderNotFoundError) Error() string {
	return fmt.Sprintf("aider not found in: %v", e.SearchedPaths)
}

// IsAiderAPIError implements AiderAPIError.
func (e *AiderNotFoundError) IsAiderAPIError() bool { return true }

// LaunchError indicates the aider process failed to start.
//
// Launch failures are reported as terminal error events or aggregate error
// fields, never raised past the runner.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start aider process: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsAiderAPIError implements AiderAPIError.
func (e *LaunchError) IsAiderAPIError() bool { return true }

// InvalidPathError indicates a requested file path would escape the
// workspace directory.
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid file path %q: escapes the workspace directory", e.Path)
}

// IsAiderAPIError implements AiderAPIError.
func (e *InvalidPathError) IsAiderAPIError() bool { return true }

// StreamReadError indicates an I/O failure while draining a child output
// channel. The drain terminates early; partial buffers are still returned.
type StreamReadError struct {
	Channel string // "stdout" or "stderr"
	Err     error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("failed to read %s from aider process: %v", e.Channel, e.Err)
}

func (e *StreamReadError) Unwrap() error {
	return e.Err
}

// IsAiderAPIError implements AiderAPIError.
func (e *StreamReadError) IsAiderAPIError() bool { return true }
