package aiderapi

import "log/slog"

// Option configures an edit pass using the functional options pattern.
type Option func(*runOptions)

// runOptions collects per-invocation configuration.
type runOptions struct {
	logger       *slog.Logger
	aiderPath    string
	requireFiles bool
	env          map[string]string
}

// applyOptions applies functional options to a runOptions struct.
func applyOptions(opts []Option) *runOptions {
	options := &runOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for operation tracking.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// WithAiderPath sets the explicit path to the aider binary.
// If not set, the binary is searched in PATH and common locations.
func WithAiderPath(path string) Option {
	return func(o *runOptions) {
		o.aiderPath = path
	}
}

// WithRequireFiles makes requests without files fail validation.
// By default requests with an empty or absent file mapping are accepted.
func WithRequireFiles(require bool) Option {
	return func(o *runOptions) {
		o.requireFiles = require
	}
}

// WithEnv provides additional environment variables for the aider process.
// The parent environment is always forwarded; these entries override it.
func WithEnv(env map[string]string) Option {
	return func(o *runOptions) {
		o.env = env
	}
}
