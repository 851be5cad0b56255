// Package workspace materializes request files into an ephemeral directory
// and guarantees its removal once the request is done.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tluyben/aider-api/internal/errors"
)

// Workspace is an ephemeral directory holding the materialized input files
// for one request. It is referenced only for the duration of the aider
// invocation and must be released afterwards.
type Workspace struct {
	// Dir is the absolute path of the temporary directory.
	Dir string

	// Files are the absolute paths of the materialized files, in
	// materialization order (sorted by relative path).
	Files []string

	log         *slog.Logger
	releaseOnce sync.Once
}

// Materialize creates a fresh workspace and writes each file mapping entry
// into it verbatim, creating intermediate directories as needed.
//
// Every relative path is validated before being joined to the workspace
// directory: absolute paths and parent traversal fail with InvalidPathError
// and no workspace is left behind. Entries are written in sorted path order
// so that materialization is deterministic for a given mapping.
func Materialize(log *slog.Logger, files map[string]string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "aider-workspace-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	ws := &Workspace{
		Dir:   dir,
		Files: make([]string, 0, len(files)),
		log:   log.With("component", "workspace", "dir", dir),
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		// IsLocal rejects absolute paths, parent traversal, and
		// anything else that would resolve outside the workspace.
		if name == "" || !filepath.IsLocal(name) {
			ws.Release()

			return nil, &errors.InvalidPathError{Path: name}
		}

		target := filepath.Join(dir, filepath.FromSlash(name))

		if parent := filepath.Dir(target); parent != dir {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				ws.Release()

				return nil, fmt.Errorf("create directory for %s: %w", name, err)
			}
		}

		if err := os.WriteFile(target, []byte(files[name]), 0o644); err != nil {
			ws.Release()

			return nil, fmt.Errorf("write %s: %w", name, err)
		}

		ws.Files = append(ws.Files, target)
	}

	ws.log.Debug("Workspace materialized", "file_count", len(ws.Files))

	return ws, nil
}

// Release recursively removes the workspace directory. It is idempotent and
// safe to defer alongside explicit calls.
func (w *Workspace) Release() {
	w.releaseOnce.Do(func() {
		if err := os.RemoveAll(w.Dir); err != nil {
			w.log.Warn("Failed to remove workspace directory", "error", err)

			return
		}

		w.log.Debug("Workspace released")
	})
}
