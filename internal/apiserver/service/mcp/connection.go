package mcp

import (
	"time"

	"github.com/mentatproj/mentat/pkg/logger"
)

// Connection is one live MCP session. It owns the session client and the
// tool snapshot discovered at connect time. Connections are immutable
// after creation; reconnecting replaces the whole value.
type Connection struct {
	Name        string
	Config      *ServerConfig
	Client      SessionClient
	Transport   string
	ConnectedAt time.Time
	Tools       []ToolDescriptor
}

// Tool looks up a tool descriptor in the snapshot.
func (c *Connection) Tool(name string) (ToolDescriptor, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDescriptor{}, false
}

// Close releases the session client.
func (c *Connection) Close() {
	if c.Client == nil {
		return
	}
	if err := c.Client.Close(); err != nil {
		logger.Warn("[MCP] server %q: failed to close session: %v", c.Name, err)
	}
}
