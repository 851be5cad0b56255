// Command aider-chat is an interactive client for the aider-api server.
//
// It reads the given files, then loops: each entered message is sent as one
// edit pass, and the response is rendered either incrementally (SSE) or as
// one aggregate block.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	aiderapi "github.com/tluyben/aider-api"
)

var (
	host     string
	port     int
	noStream bool
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "aider-chat [files...]",
	Short: "Interactive chat with an aider-api server",
	RunE: func(_ *cobra.Command, args []string) error {
		return chat(args)
	},
}

func chat(paths []string) error {
	files := make(map[string]string, len(paths))

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		files[workspaceName(path)] = string(content)
	}

	url := fmt.Sprintf("http://%s:%d/run-aider", host, port)

	fmt.Println("Chat session started. Type your messages (Ctrl+C or Ctrl+D to exit)")

	if len(paths) > 0 {
		fmt.Println("Files being edited:", strings.Join(paths, ", "))
	} else {
		fmt.Println("Files being edited: none")
	}

	input := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")

		if !input.Scan() {
			fmt.Println("\nExiting chat session")

			return input.Err()
		}

		message := strings.TrimSpace(input.Text())
		if message == "" {
			continue
		}

		stream := !noStream
		req := &aiderapi.EditRequest{
			Message: message,
			Files:   files,
			DryRun:  dryRun,
			Stream:  &stream,
		}

		var err error

		if noStream {
			err = runAggregate(url, req)
		} else {
			err = runStreaming(url, req)
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, "Error communicating with API:", err)
		}
	}
}

// workspaceName maps a file argument onto the workspace-relative name it is
// materialized under. Absolute paths and paths reaching outside the working
// directory fall back to their base name; the server rejects anything that
// would escape the workspace.
func workspaceName(path string) string {
	if filepath.IsLocal(path) {
		return path
	}

	return filepath.Base(path)
}

// post sends the request and fails on non-2xx responses.
func post(url string, req *aiderapi.EditRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		var detail struct {
			Detail string `json:"detail"`
		}

		if json.NewDecoder(resp.Body).Decode(&detail) == nil && detail.Detail != "" {
			return nil, fmt.Errorf("server returned %s: %s", resp.Status, detail.Detail)
		}

		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	return resp, nil
}

// runAggregate renders a buffered JSON response.
func runAggregate(url string, req *aiderapi.EditRequest) error {
	resp, err := post(url, req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	var result aiderapi.EditResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	if result.Stdout != "" {
		fmt.Println("STDOUT:")
		fmt.Print(result.Stdout)
	}

	if result.Stderr != "" {
		fmt.Println("STDERR:")
		fmt.Print(result.Stderr)
	}

	if result.Error != "" {
		fmt.Println("ERROR:")
		fmt.Println(result.Error)
	}

	return nil
}

// runStreaming renders a server-sent event stream as it arrives.
func runStreaming(url string, req *aiderapi.EditRequest) error {
	resp, err := post(url, req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	var (
		event string
		data  string
	)

	scanner := bufio.NewScanner(resp.Body)

	for scanner.Scan() {
		line := scanner.Text()

		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name

			continue
		}

		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			data = payload

			continue
		}

		// Blank line ends one event
		if line == "" && event != "" {
			renderEvent(event, data)

			event, data = "", ""
		}
	}

	return scanner.Err()
}

// renderEvent prints one SSE event: progress to the matching channel,
// terminal errors to stderr.
func renderEvent(event, data string) {
	switch event {
	case "progress":
		var progress aiderapi.ProgressEvent
		if json.Unmarshal([]byte(data), &progress) != nil {
			return
		}

		if progress.Type == "stderr" {
			fmt.Fprintln(os.Stderr, "STDERR:", progress.Content)
		} else {
			fmt.Println(progress.Content)
		}

	case "complete":
		var result aiderapi.EditResult
		if json.Unmarshal([]byte(data), &result) != nil {
			return
		}

		if result.Error != "" {
			fmt.Fprintln(os.Stderr, "ERROR:", result.Error)
		}

	case "error":
		var failure aiderapi.ErrorEvent
		if json.Unmarshal([]byte(data), &failure) != nil {
			return
		}

		fmt.Fprintln(os.Stderr, "ERROR:", failure.Error)
	}
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "localhost", "aider-api server host")
	rootCmd.Flags().IntVar(&port, "port", 8000, "aider-api server port")
	rootCmd.Flags().BoolVar(&noStream, "no-stream", false, "Disable streaming mode")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask aider not to apply edits")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
