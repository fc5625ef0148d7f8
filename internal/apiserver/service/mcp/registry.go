package mcp

import (
	"context"
	"time"
)

// ServerInfo is the merged describe view of a server: its configuration
// plus live connection state.
type ServerInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Transport   string           `json:"transport"`
	Command     string           `json:"command,omitempty"`
	URL         string           `json:"url,omitempty"`
	Enabled     bool             `json:"enabled"`
	Connected   bool             `json:"connected"`
	ConnectedAt *time.Time       `json:"connected_at,omitempty"`
	ToolCount   int              `json:"tool_count"`
	Tools       []ToolDescriptor `json:"tools,omitempty"`
}

// ServerStore persists runtime configuration changes so administrative
// add/update/remove survives a restart.
type ServerStore interface {
	Save(cfg *ServerConfig) error
	Delete(name string) error
	List() ([]*ServerConfig, error)
}

// Registry manages the available server set and the live connections,
// and is the single entry point for tool execution.
type Registry interface {
	// Connect establishes a connection to a configured server and
	// discovers its tools. Connecting an already-connected server is a
	// no-op.
	Connect(ctx context.Context, name string) error

	// ConnectURL connects to an SSE server by URL, synthesizing a
	// configuration entry under the given name.
	ConnectURL(ctx context.Context, name, rawURL string) error

	// Disconnect closes the named connection. Returns false if the
	// server was not connected.
	Disconnect(name string) bool

	// DisconnectAll closes every live connection, best effort.
	DisconnectAll()

	// ListConnected returns the names of connected servers, sorted.
	ListConnected() []string

	// ListAvailable returns the names of all configured servers, sorted.
	ListAvailable() []string

	// Describe merges configuration and connection state for one server.
	Describe(name string) (*ServerInfo, error)

	// Tools returns the tool snapshot of a connected server.
	Tools(name string) ([]ToolDescriptor, error)

	// AllTools returns tool snapshots of every connected server,
	// keyed by server name.
	AllTools() map[string][]ToolDescriptor

	// ExecuteTool runs one tool call on a connected server.
	ExecuteTool(ctx context.Context, server, tool string, args map[string]any) (*ToolResult, error)

	// AddServer registers a new server configuration at runtime.
	AddServer(cfg *ServerConfig) error

	// UpdateServer replaces an existing server configuration. A live
	// connection keeps running on the old config until reconnected.
	UpdateServer(cfg *ServerConfig) error

	// RemoveServer drops a server from the available set, disconnecting
	// it first if connected.
	RemoveServer(name string) error

	// Reload replaces the file-backed portion of the available set.
	// Store-persisted runtime entries are overlaid on top; live
	// connections are untouched.
	Reload(cfg *MCPConfig)
}
