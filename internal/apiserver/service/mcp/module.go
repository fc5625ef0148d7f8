// Package mcp manages MCP server connections: the available server set,
// live sessions with tool snapshots, and single tool execution.
package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/mentatproj/mentat/pkg/logger"
)

// Config is the MCP module configuration.
type Config struct {
	MCPConfig *MCPConfig

	// Store persists runtime-added servers. Optional.
	Store ServerStore

	// Recorder receives one audit record per tool call. Optional.
	Recorder Recorder

	// ToolCallTimeout bounds each tool call. Zero disables the deadline.
	ToolCallTimeout time.Duration

	// AutoConnect connects every enabled server during module startup.
	AutoConnect bool

	// ClientName and ClientVersion identify this client in the MCP
	// handshake.
	ClientName    string
	ClientVersion string
}

// CompletedConfig is the completed configuration for the MCP module.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MCPConfig == nil {
		c.MCPConfig = NewMCPConfig()
	}
	for name, srv := range c.MCPConfig.MCPServers {
		srv.Name = name
		if srv.Transport == "" {
			srv.Transport = TransportStdio
		}
	}
	if c.ClientName == "" {
		c.ClientName = "mentat-apiserver"
	}
	if c.ClientVersion == "" {
		c.ClientVersion = "0.1.0"
	}

	return CompletedConfig{c}
}

// Module is the top-level MCP module.
type Module struct {
	Registry Registry
}

// New creates the MCP module. Stored runtime servers are overlaid on the
// file configuration; with AutoConnect set, enabled servers are connected
// concurrently and individual failures only logged.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	reg := newRegistry(c)

	if c.Store != nil {
		stored, err := c.Store.List()
		if err != nil {
			logger.Warn("[MCP] failed to load stored servers: %v", err)
		}
		reg.mu.Lock()
		for _, srv := range stored {
			reg.available[srv.Name] = srv
		}
		reg.mu.Unlock()
	}

	if c.AutoConnect {
		connectAll(ctx, reg)
	}

	logger.Info("[MCP] module initialized (%d servers available)", len(reg.ListAvailable()))
	return &Module{Registry: reg}, nil
}

// Close releases all live connections.
func (m *Module) Close() error {
	if m.Registry != nil {
		m.Registry.DisconnectAll()
	}
	return nil
}

func connectAll(ctx context.Context, reg *registry) {
	names := reg.ListAvailable()

	var wg sync.WaitGroup
	for _, name := range names {
		reg.mu.RLock()
		cfg := reg.available[name]
		reg.mu.RUnlock()
		if cfg == nil || cfg.Disabled {
			continue
		}

		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			if err := reg.Connect(ctx, n); err != nil {
				logger.Warn("[MCP] server %q failed to connect: %v", n, err)
			}
		}(name)
	}
	wg.Wait()

	logger.Info("[MCP] startup connect complete: %d/%d servers connected",
		len(reg.ListConnected()), len(names))
}
