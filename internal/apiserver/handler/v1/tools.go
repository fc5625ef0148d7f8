package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/internal/pkg/core"
	"github.com/mentatproj/mentat/pkg/errorx"
)

// ToolHandler exposes tool discovery and direct tool execution.
type ToolHandler struct {
	registry mcp.Registry
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(registry mcp.Registry) *ToolHandler {
	return &ToolHandler{registry: registry}
}

// List handles GET /v1/tools. Tools are grouped by connected server.
func (h *ToolHandler) List(c *gin.Context) {
	core.WriteResponse(c, nil, gin.H{"servers": h.registry.AllTools()})
}

// Call handles POST /v1/tools/calls.
func (h *ToolHandler) Call(c *gin.Context) {
	var req ToolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind tool call request"), nil)
		return
	}

	result, err := h.registry.ExecuteTool(c.Request.Context(), req.Server, req.Tool, req.Arguments)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrToolExecute), "call tool %q on %q", req.Tool, req.Server), nil)
		return
	}

	core.WriteResponse(c, nil, ToolCallResponse{
		Kind:       result.Kind(),
		Text:       result.Text,
		Structured: result.Structured,
		IsError:    result.IsError,
	})
}
