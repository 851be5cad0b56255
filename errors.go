package aiderapi

import "github.com/tluyben/aider-api/internal/errors"

// Re-export error types from internal package

// AiderNotFoundError indicates the aider binary was not found.
type AiderNotFoundError = errors.AiderNotFoundError

// LaunchError indicates the aider process failed to start.
type LaunchError = errors.LaunchError

// InvalidPathError indicates a file path would escape the workspace.
type InvalidPathError = errors.InvalidPathError

// StreamReadError indicates an I/O failure while draining child output.
type StreamReadError = errors.StreamReadError

// AiderAPIError is the base interface for all aider-api errors.
type AiderAPIError = errors.AiderAPIError

// Re-export sentinel errors from internal package.
var (
	// ErrEmptyMessage indicates the request carried no instruction text.
	ErrEmptyMessage = errors.ErrEmptyMessage

	// ErrFilesRequired indicates the strict contract rejected a request
	// with no files.
	ErrFilesRequired = errors.ErrFilesRequired
)
