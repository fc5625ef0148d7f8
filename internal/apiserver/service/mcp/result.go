package mcp

import (
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentatproj/mentat/pkg/logger"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

// ToolDescriptor is an immutable snapshot of one tool advertised by a
// server, taken at connect time.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// ToolResult is the normalized outcome of one tool call. Exactly one of
// Text or Structured is set.
type ToolResult struct {
	Text       string         `json:"text,omitempty"`
	Structured map[string]any `json:"structured,omitempty"`
	IsError    bool           `json:"is_error,omitempty"`
}

// Kind reports which arm of the union is populated.
func (r *ToolResult) Kind() string {
	if r.Structured != nil {
		return "structured"
	}
	return "text"
}

// String renders the result for feeding back into the conversation.
// Structured results are serialized to JSON.
func (r *ToolResult) String() string {
	if r.Structured != nil {
		s, err := json.MarshalString(r.Structured)
		if err != nil {
			logger.Warn("[MCP] failed to serialize structured tool result: %v", err)
			return ""
		}
		return s
	}
	return r.Text
}

// normalizeResult converts a raw protocol result into the tagged union.
// Structured content wins when the server provides it; otherwise all
// text blocks are joined with newlines.
func normalizeResult(res *mcp.CallToolResult) *ToolResult {
	if res == nil {
		return &ToolResult{}
	}

	out := &ToolResult{IsError: res.IsError}

	if sc, ok := res.StructuredContent.(map[string]any); ok && len(sc) > 0 {
		out.Structured = sc
		return out
	}

	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	out.Text = strings.Join(parts, "\n")
	return out
}

// descriptorsFromTools snapshots the protocol tool list into descriptors.
// The input schema is decoded into a plain map so downstream consumers
// never hold protocol types.
func descriptorsFromTools(serverName string, tools []mcp.Tool) []ToolDescriptor {
	descs := make([]ToolDescriptor, 0, len(tools))
	for _, t := range tools {
		raw, err := json.Marshal(t.InputSchema)
		if err != nil {
			logger.Warn("[MCP] server %q: tool %q has unusable input schema: %v", serverName, t.Name, err)
			continue
		}
		var schema map[string]any
		if err := json.Unmarshal(raw, &schema); err != nil {
			logger.Warn("[MCP] server %q: tool %q has unusable input schema: %v", serverName, t.Name, err)
			continue
		}
		descs = append(descs, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return descs
}

// previewOf trims s to at most n runes for log lines and audit records.
func previewOf(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
