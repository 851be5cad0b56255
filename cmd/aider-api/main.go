// Command aider-api serves aider edit passes over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tluyben/aider-api/internal/server"
)

var (
	host         string
	port         int
	aiderPath    string
	requireFiles bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "aider-api",
	Short: "HTTP API around the aider coding assistant",
	Long: `aider-api exposes aider over HTTP: POST /run-aider takes an
instruction plus named file contents, runs aider against them in an
ephemeral workspace, and returns the captured output either as one
JSON response or as a server-sent event stream.

Environment variables (including API keys for aider) are forwarded to
the aider process unchanged. A .env file in the working directory is
loaded at startup when present.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

func serve() error {
	// API keys for aider commonly live in a .env next to the server
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using system environment")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv := server.New(server.Config{
		Logger:       log,
		AiderPath:    aiderPath,
		RequireFiles: requireFiles,
	})

	return srv.ListenAndServe(fmt.Sprintf("%s:%d", host, port))
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	rootCmd.Flags().IntVar(&port, "port", 8000, "Port to listen on")
	rootCmd.Flags().StringVar(&aiderPath, "aider-path", "", "Explicit path to the aider binary (default: search PATH)")
	rootCmd.Flags().BoolVar(&requireFiles, "require-files", false, "Reject requests that carry no files")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
