// Package aiderapi exposes the aider coding assistant over a programmatic
// interface.
//
// A request pairs a natural-language instruction with a set of named file
// contents. The files are written into an ephemeral workspace, aider is
// spawned as a child process with those files and the instruction, and its
// stdout/stderr streams are drained concurrently and relayed back — either
// as one aggregated result or as an ordered event stream. A small set of
// known failure signatures in aider's output is surfaced as a structured
// error annotation. The workspace is removed when the pass ends, whatever
// the outcome.
//
// # Aggregate mode
//
//	ctx := context.Background()
//	result, err := aiderapi.Run(ctx, &aiderapi.EditRequest{
//	    Message: "add a docstring",
//	    Files: map[string]string{
//	        "test.py": "def hello():\n    print('Hello, World!')",
//	    },
//	    DryRun: true,
//	})
//	if err != nil {
//	    log.Fatal(err) // validation failure, nothing was spawned
//	}
//	fmt.Println(result.Stdout)
//	if result.Error != "" {
//	    fmt.Println("aider reported:", result.Error)
//	}
//
// # Streaming mode
//
//	events, err := aiderapi.Stream(ctx, req, aiderapi.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    switch e := ev.(type) {
//	    case *aiderapi.ProgressEvent:
//	        fmt.Println(e.Type, e.Content)
//	    case *aiderapi.CompleteEvent:
//	        fmt.Println("done:", e.Error)
//	    case *aiderapi.ErrorEvent:
//	        fmt.Println("failed:", e.Error)
//	    }
//	}
//
// Exactly one terminal event (CompleteEvent or ErrorEvent) ends every
// consumed stream, and both modes produce identical final values for
// identical child output.
//
// # Requirements
//
// The aider binary must be installed and reachable via PATH, a common
// install location, or the WithAiderPath option. The parent environment is
// forwarded to the child unchanged; that is how API keys and model
// configuration reach aider.
package aiderapi
