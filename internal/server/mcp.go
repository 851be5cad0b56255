package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	aiderapi "github.com/tluyben/aider-api"
	"github.com/tluyben/aider-api/internal/mcptool"
)

// mcpSurface exposes the edit pass as an MCP tool next to the JSON API.
type mcpSurface struct {
	server   *Server
	registry *mcptool.Registry
}

func newMCPSurface(s *Server) *mcpSurface {
	m := &mcpSurface{
		server:   s,
		registry: mcptool.NewRegistry("aider-api", "1.0.0"),
	}

	m.registry.AddTool(
		mcptool.NewTool("run_aider", "Run an aider edit pass over the given files", runAiderSchema()),
		m.handleRunAiderTool,
	)

	return m
}

// runAiderSchema describes the run_aider tool input.
func runAiderSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"message": {
				Type:        "string",
				Description: "Natural-language edit instruction",
			},
			"files": {
				Type:        "object",
				Description: "Mapping of relative file path to file content",
				AdditionalProperties: &jsonschema.Schema{
					Type: "string",
				},
			},
			"auto_commits":  {Type: "boolean"},
			"dirty_commits": {Type: "boolean"},
			"dry_run":       {Type: "boolean"},
			"root": {
				Type:        "string",
				Description: "Directory aider runs in",
			},
		},
		Required: []string{"message"},
	}
}

// handleRunAiderTool adapts a tool call onto an aggregate edit pass. The
// full result object is returned as JSON text; validation failures become
// error results.
func (m *mcpSurface) handleRunAiderTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.ErrorResult(err.Error()), nil
	}

	editReq := &aiderapi.EditRequest{}

	if message, ok := args["message"].(string); ok {
		editReq.Message = message
	}

	if files, ok := args["files"].(map[string]any); ok {
		editReq.Files = make(map[string]string, len(files))

		for name, content := range files {
			if text, ok := content.(string); ok {
				editReq.Files[name] = text
			}
		}
	}

	if v, ok := args["auto_commits"].(bool); ok {
		editReq.AutoCommits = &v
	}

	if v, ok := args["dirty_commits"].(bool); ok {
		editReq.DirtyCommits = &v
	}

	if v, ok := args["dry_run"].(bool); ok {
		editReq.DryRun = v
	}

	if root, ok := args["root"].(string); ok {
		editReq.Root = root
	}

	log := m.server.log.With("component", "mcp")

	result, err := aiderapi.Run(ctx, editReq, m.server.runOptions(log)...)
	if err != nil {
		return mcptool.ErrorResult(err.Error()), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcptool.ErrorResult(err.Error()), nil
	}

	return mcptool.TextResult(string(data)), nil
}

// handleListTools serves the tool registry listing.
func (m *mcpSurface) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"server": m.registry.ServerInfo(),
		"tools":  m.registry.ListTools(),
	})
}

// callToolRequest is the wire format of POST /mcp/call.
type callToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// handleCallTool invokes a registered tool by name.
func (m *mcpSurface) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var req callToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}

	if req.Name == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "tool name is required")

		return
	}

	writeJSON(w, http.StatusOK, m.registry.CallTool(r.Context(), req.Name, req.Arguments))
}
