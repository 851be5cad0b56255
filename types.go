package aiderapi

// EditRequest describes one aider edit pass.
//
// Boolean toggles that default to true are pointers so that an absent JSON
// field is distinguishable from an explicit false.
type EditRequest struct {
	// Message is the natural-language instruction. Required, non-empty.
	Message string `json:"message"`

	// Files maps relative paths to file contents. The entries are
	// materialized into an ephemeral workspace and passed to aider as
	// absolute paths. Paths must stay inside the workspace: no parent
	// traversal, no absolute paths.
	Files map[string]string `json:"files,omitempty"`

	// AutoCommits enables aider's automatic commits. Defaults to true.
	AutoCommits *bool `json:"auto_commits,omitempty"`

	// DirtyCommits lets aider commit even when the repo is dirty.
	// Defaults to true.
	DirtyCommits *bool `json:"dirty_commits,omitempty"`

	// DryRun makes aider report edits without applying them.
	DryRun bool `json:"dry_run,omitempty"`

	// Root is the directory aider runs in. Defaults to the current
	// directory.
	Root string `json:"root,omitempty"`

	// Stream selects incremental event delivery. Defaults to true.
	Stream *bool `json:"stream,omitempty"`
}

func (r *EditRequest) autoCommits() bool {
	if r.AutoCommits == nil {
		return true
	}

	return *r.AutoCommits
}

func (r *EditRequest) dirtyCommits() bool {
	if r.DirtyCommits == nil {
		return true
	}

	return *r.DirtyCommits
}

// Streaming reports whether the request asked for event-stream delivery.
func (r *EditRequest) Streaming() bool {
	if r.Stream == nil {
		return true
	}

	return *r.Stream
}

// EditResult is the aggregate outcome of one edit pass.
type EditResult struct {
	// Stdout is the full concatenated stdout of the aider process,
	// newline-normalized.
	Stdout string `json:"raw-stdout"`

	// Stderr is the full concatenated stderr of the aider process,
	// newline-normalized.
	Stderr string `json:"raw-stderr"`

	// Error is the classification derived from stdout, or a launch
	// failure description. Omitted when nothing matched.
	Error string `json:"error,omitempty"`
}

// Event is one item of a streamed edit pass. The sequence is any number of
// ProgressEvents followed by exactly one terminal CompleteEvent or
// ErrorEvent.
type Event interface {
	// EventName returns the wire name of the event:
	// "progress", "complete" or "error".
	EventName() string
}

// Compile-time verification that all event types implement Event.
var (
	_ Event = (*ProgressEvent)(nil)
	_ Event = (*CompleteEvent)(nil)
	_ Event = (*ErrorEvent)(nil)
)

// ProgressEvent carries one chunk of child output as it was observed.
type ProgressEvent struct {
	// Type is the source channel: "stdout" or "stderr".
	Type string `json:"type"`

	// Content is one logical output line, without its trailing newline.
	Content string `json:"content"`
}

// EventName implements Event.
func (*ProgressEvent) EventName() string { return "progress" }

// CompleteEvent is the terminal event of a successful drain. It carries the
// same aggregate values a non-streaming request would have returned.
type CompleteEvent struct {
	EditResult
}

// EventName implements Event.
func (*CompleteEvent) EventName() string { return "complete" }

// ErrorEvent is the terminal event of a transport-level failure, emitted in
// place of CompleteEvent.
type ErrorEvent struct {
	Error string `json:"error"`
}

// EventName implements Event.
func (*ErrorEvent) EventName() string { return "error" }
