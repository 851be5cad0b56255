// Package mcptool exposes aider-api operations as MCP tools.
//
// The official MCP SDK's server is built around transport-based sessions;
// this package keeps its own registry so tools can be listed and invoked
// directly by the HTTP layer while still using the official protocol types.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Registry holds MCP tools for direct programmatic invocation.
type Registry struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*registeredTool
}

// registeredTool holds tool metadata and handler.
type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewRegistry creates an empty tool registry.
func NewRegistry(name, version string) *Registry {
	return &Registry{
		name:    name,
		version: version,
		tools:   make(map[string]*registeredTool, 4),
	}
}

// AddTool registers a tool with the registry.
func (r *Registry) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name] = &registeredTool{
		tool:    tool,
		handler: handler,
	}
}

// ServerInfo returns name/version metadata for listings.
func (r *Registry) ServerInfo() map[string]any {
	return map[string]any{
		"name":    r.name,
		"version": r.version,
	}
}

// ListTools returns metadata for all registered tools in wire format.
func (r *Registry) ListTools() []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]map[string]any, 0, len(r.tools))

	for _, t := range r.tools {
		toolMap := map[string]any{
			"name":        t.tool.Name,
			"description": t.tool.Description,
		}

		if t.tool.InputSchema != nil {
			schemaData, err := json.Marshal(t.tool.InputSchema)
			if err == nil {
				var schemaMap map[string]any
				if json.Unmarshal(schemaData, &schemaMap) == nil {
					toolMap["inputSchema"] = schemaMap
				}
			}
		}

		result = append(result, toolMap)
	}

	return result
}

// CallTool executes a tool by name with the given input. Tool-level failures
// are encoded in the result rather than returned as errors.
func (r *Registry) CallTool(ctx context.Context, name string, input map[string]any) map[string]any {
	r.mu.RLock()
	t, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return errorResultMap("Tool not found: " + name)
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		return errorResultMap("Failed to marshal input: " + err.Error())
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		return errorResultMap("Tool execution failed: " + err.Error())
	}

	return resultToMap(result)
}

// resultToMap converts an MCP CallToolResult to the wire format.
func resultToMap(result *mcp.CallToolResult) map[string]any {
	if result == nil {
		return map[string]any{"content": []map[string]any{}}
	}

	content := make([]map[string]any, 0, len(result.Content))

	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			content = append(content, map[string]any{
				"type": "text",
				"text": text.Text,
			})
		}
	}

	resultMap := map[string]any{"content": content}

	if result.IsError {
		resultMap["is_error"] = true
	}

	return resultMap
}

func errorResultMap(message string) map[string]any {
	return map[string]any{
		"content":  []map[string]any{{"type": "text", "text": message}},
		"is_error": true,
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
