// Package server exposes aider edit passes over HTTP: a JSON endpoint with
// optional SSE streaming, an MCP tool surface, and a health check.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	aiderapi "github.com/tluyben/aider-api"
	sdkerrors "github.com/tluyben/aider-api/internal/errors"
)

// Config holds server configuration.
type Config struct {
	// Logger receives request-scoped log records. Required.
	Logger *slog.Logger

	// AiderPath is an optional explicit aider binary path.
	AiderPath string

	// RequireFiles rejects requests with no files as a validation error.
	RequireFiles bool
}

// Server handles aider-api HTTP traffic.
type Server struct {
	log *slog.Logger
	cfg Config
	mcp *mcpSurface
	srv *http.Server
}

// New creates a Server with its routes and MCP tool registry wired up.
func New(cfg Config) *Server {
	s := &Server{
		log: cfg.Logger.With("component", "server"),
		cfg: cfg,
	}
	s.mcp = newMCPSurface(s)

	return s
}

// Handler returns the route multiplexer. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run-aider", s.handleRunAider)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /mcp/tools", s.mcp.handleListTools)
	mux.HandleFunc("POST /mcp/call", s.mcp.handleCallTool)

	return mux
}

// ListenAndServe serves HTTP on addr until the listener fails.
// Timeouts are sized for long-running SSE responses.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Minute,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  5 * time.Minute,
	}

	s.log.Info("Starting aider-api server", "addr", addr)

	return s.srv.ListenAndServe()
}

// runOptions assembles the per-request library options.
func (s *Server) runOptions(log *slog.Logger) []aiderapi.Option {
	return []aiderapi.Option{
		aiderapi.WithLogger(log),
		aiderapi.WithAiderPath(s.cfg.AiderPath),
		aiderapi.WithRequireFiles(s.cfg.RequireFiles),
	}
}

// handleRunAider runs one edit pass, streaming or aggregate per the request.
func (s *Server) handleRunAider(w http.ResponseWriter, r *http.Request) {
	requestID := ulid.Make().String()
	log := s.log.With("request_id", requestID)

	var req aiderapi.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug("Malformed request body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}

	log.Info("Handling edit pass",
		"streaming", req.Streaming(),
		"file_count", len(req.Files),
		"dry_run", req.DryRun,
	)

	opts := s.runOptions(log)

	if req.Streaming() {
		s.streamRun(w, r, &req, opts, log)

		return
	}

	result, err := aiderapi.Run(r.Context(), &req, opts...)
	if err != nil {
		writeValidationError(w, log, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

// streamRun relays the event sequence as Server-Sent Events. Validation
// failures are rejected before the stream is opened; once streaming has
// begun, the terminal complete/error event ends the response.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request, req *aiderapi.EditRequest, opts []aiderapi.Option, log *slog.Logger) {
	events, err := aiderapi.Stream(r.Context(), req, opts...)
	if err != nil {
		writeValidationError(w, log, err)

		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Response writer does not support flushing")
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		if err := writeSSE(w, ev); err != nil {
			// Client gone; breaking the loop kills the child and
			// releases the workspace via the sequence's own cleanup.
			log.Info("Stream consumer disconnected", "error", err)

			break
		}

		flusher.Flush()
	}
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeSSE frames one event as "event: <name>" plus a JSON data line.
func writeSSE(w http.ResponseWriter, ev aiderapi.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte("event: " + ev.EventName() + "\ndata: ")); err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return err
	}

	_, err = w.Write([]byte("\n\n"))

	return err
}

// writeValidationError maps library errors onto HTTP statuses: request
// contract violations become 422, anything else a generic 500.
func writeValidationError(w http.ResponseWriter, log *slog.Logger, err error) {
	var pathErr *sdkerrors.InvalidPathError

	switch {
	case errors.Is(err, sdkerrors.ErrEmptyMessage),
		errors.Is(err, sdkerrors.ErrFilesRequired),
		errors.As(err, &pathErr):
		log.Debug("Request failed validation", "error", err)
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("Request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
