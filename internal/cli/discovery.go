package cli

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tluyben/aider-api/internal/errors"
)

// Config holds configuration for aider binary discovery.
type Config struct {
	// AiderPath is an explicit binary path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	AiderPath string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the aider binary.
type Discoverer interface {
	// Discover locates the aider binary.
	// Returns the absolute path to the binary or an error.
	Discover() (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new aider discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the aider binary.
func (d *discoverer) Discover() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.AiderPath != "" {
		d.log.Debug("Using explicit aider path", "aider_path", d.cfg.AiderPath)

		if _, err := os.Stat(d.cfg.AiderPath); err == nil {
			return d.cfg.AiderPath, nil
		}

		d.log.Debug("Explicit aider path not found", "aider_path", d.cfg.AiderPath)

		return "", &errors.AiderNotFoundError{SearchedPaths: []string{d.cfg.AiderPath}}
	}

	searchedPaths := make([]string, 0, 5)

	// Search in PATH
	d.log.Debug("Searching for 'aider' in PATH")

	if path, err := exec.LookPath("aider"); err == nil {
		d.log.Debug("Found 'aider' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		"/usr/local/bin/aider",
		"/usr/bin/aider",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin/aider"))
	}

	// A virtualenv-style install puts aider next to the running binary
	if self, err := os.Executable(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(filepath.Dir(self), "aider"))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found aider at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("aider not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.AiderNotFoundError{SearchedPaths: searchedPaths}
}
