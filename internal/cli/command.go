package cli

import "os"

// Toggles are the aider commit/dry-run switches carried by a request.
type Toggles struct {
	AutoCommits  bool
	DirtyCommits bool
	DryRun       bool
}

// BuildArgs constructs the aider command arguments.
//
// The instruction is passed as a single argv token following --message; it is
// never shell-joined or quoted, so it cannot be reinterpreted as flags by the
// child. Materialized file paths are appended last, in materialization order.
// The output is stable for a given input.
func BuildArgs(message string, toggles Toggles, filePaths []string) []string {
	args := []string{
		"--message", message,
	}

	// aider's own output streaming is pointless on a dry run
	if toggles.DryRun {
		args = append(args, "--no-stream")
	} else {
		args = append(args, "--stream")
	}

	if toggles.AutoCommits {
		args = append(args, "--auto-commits")
	} else {
		args = append(args, "--no-auto-commits")
	}

	if toggles.DirtyCommits {
		args = append(args, "--dirty-commits")
	} else {
		args = append(args, "--no-dirty-commits")
	}

	if toggles.DryRun {
		args = append(args, "--dry-run")
	} else {
		args = append(args, "--no-dry-run")
	}

	// Suppress model warnings and interactive confirmation prompts
	args = append(args, "--no-show-model-warnings", "--yes")

	args = append(args, filePaths...)

	return args
}

// BuildEnvironment constructs the environment for the aider process.
//
// The parent environment is forwarded unmodified; this is how API keys and
// model configuration reach aider. Extra entries override inherited ones.
func BuildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	for key, value := range extra {
		env = append(env, key+"="+value)
	}

	return env
}
