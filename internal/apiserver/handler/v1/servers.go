package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/internal/pkg/core"
	"github.com/mentatproj/mentat/pkg/errorx"
)

// ServerHandler exposes the MCP registry over REST: configuration CRUD
// plus connection lifecycle.
type ServerHandler struct {
	registry mcp.Registry
}

// NewServerHandler creates a new ServerHandler.
func NewServerHandler(registry mcp.Registry) *ServerHandler {
	return &ServerHandler{registry: registry}
}

// List handles GET /v1/servers.
func (h *ServerHandler) List(c *gin.Context) {
	core.WriteResponse(c, nil, ServerListResponse{
		Available: h.registry.ListAvailable(),
		Connected: h.registry.ListConnected(),
	})
}

// Get handles GET /v1/servers/:name.
func (h *ServerHandler) Get(c *gin.Context) {
	name := c.Param("name")
	info, err := h.registry.Describe(name)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrServerNotFound, "server %q not found", name), nil)
		return
	}
	core.WriteResponse(c, nil, info)
}

// Create handles POST /v1/servers.
func (h *ServerHandler) Create(c *gin.Context) {
	cfg, err := bindServerConfig(c)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	if err := h.registry.AddServer(cfg); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrServerSave), "add server %q", cfg.Name), nil)
		return
	}
	info, _ := h.registry.Describe(cfg.Name)
	core.WriteResponse(c, nil, info)
}

// Update handles PUT /v1/servers/:name.
func (h *ServerHandler) Update(c *gin.Context) {
	cfg, err := bindServerConfig(c)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}
	cfg.Name = c.Param("name")

	if err := h.registry.UpdateServer(cfg); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrServerSave), "update server %q", cfg.Name), nil)
		return
	}
	info, _ := h.registry.Describe(cfg.Name)
	core.WriteResponse(c, nil, info)
}

// Delete handles DELETE /v1/servers/:name.
func (h *ServerHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.registry.RemoveServer(name); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrServerRemove), "remove server %q", name), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"name": name, "deleted": true})
}

// Connect handles POST /v1/servers/:name/connect.
func (h *ServerHandler) Connect(c *gin.Context) {
	name := c.Param("name")
	if err := h.registry.Connect(c.Request.Context(), name); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrServerConnect), "connect server %q", name), nil)
		return
	}
	info, _ := h.registry.Describe(name)
	core.WriteResponse(c, nil, info)
}

// ConnectURL handles POST /v1/servers/connections. It registers and
// connects a network (SSE) server in one step.
func (h *ServerHandler) ConnectURL(c *gin.Context) {
	var req ConnectURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind connect request"), nil)
		return
	}

	if err := h.registry.ConnectURL(c.Request.Context(), req.Name, req.URL); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, serverErrCode(err, ErrServerConnect), "connect server %q at %q", req.Name, req.URL), nil)
		return
	}
	info, _ := h.registry.Describe(req.Name)
	core.WriteResponse(c, nil, info)
}

// Disconnect handles DELETE /v1/servers/:name/connection.
func (h *ServerHandler) Disconnect(c *gin.Context) {
	name := c.Param("name")
	closed := h.registry.Disconnect(name)
	core.WriteResponse(c, nil, gin.H{"name": name, "disconnected": closed})
}

// DisconnectAll handles DELETE /v1/servers/connections.
func (h *ServerHandler) DisconnectAll(c *gin.Context) {
	h.registry.DisconnectAll()
	core.WriteResponse(c, nil, gin.H{"disconnected": true})
}

func bindServerConfig(c *gin.Context) (*mcp.ServerConfig, error) {
	var req ServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errorx.WrapC(err, ErrBind, "bind server request")
	}

	cfg := &mcp.ServerConfig{
		Name:        req.Name,
		Description: req.Description,
		Transport:   req.Transport,
		Command:     req.Command,
		Args:        req.Args,
		Env:         req.Env,
		URL:         req.URL,
		Disabled:    req.Disabled,
	}
	if err := cfg.Validate(); err != nil {
		return nil, errorx.WrapC(err, ErrValidation, "validate server %q", cfg.Name)
	}
	return cfg, nil
}

// serverErrCode maps registry sentinels onto handler error codes,
// falling back to the given default.
func serverErrCode(err error, fallback int) int {
	switch {
	case errors.Is(err, mcp.ErrServerNotFound):
		return ErrServerNotFound
	case errors.Is(err, mcp.ErrServerExists):
		return ErrServerExists
	case errors.Is(err, mcp.ErrServerDisabled):
		return ErrServerDisabled
	case errors.Is(err, mcp.ErrNotConnected):
		return ErrServerNotConnected
	default:
		return fallback
	}
}
