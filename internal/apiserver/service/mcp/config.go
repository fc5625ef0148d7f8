package mcp

import (
	"fmt"
	"os"
	"sort"

	"github.com/mentatproj/mentat/pkg/utils/json"
)

// MCPConfig holds the top-level MCP configuration.
// Compatible with Claude Desktop / VS Code MCP config format.
//
// File format (mcp.json):
//
//	{
//	  "mcpServers": {
//	    "server-name": {
//	      "transport": "stdio",
//	      "command": "npx",
//	      "args": ["-y", "@anthropic/mcp-filesystem-server", "/tmp"]
//	    }
//	  }
//	}
type MCPConfig struct {
	// MCPServers maps server name to server configuration.
	// Uses "mcpServers" key for Claude Desktop compatibility.
	MCPServers map[string]*ServerConfig `json:"mcpServers"`
}

// ServerConfig defines the configuration for a single MCP server.
// Supports two transport types: "stdio" (subprocess) and "sse" (HTTP SSE).
type ServerConfig struct {
	// Name is the server name. Filled from the mcpServers map key when
	// loaded from file; required when added through the API.
	Name string `json:"name,omitempty"`

	// Description is a human-readable summary shown by describe/list.
	Description string `json:"description,omitempty"`

	// Transport is the MCP transport protocol: "stdio" or "sse".
	// Default: "stdio".
	Transport string `json:"transport,omitempty"`

	// --- stdio transport fields ---

	// Command is the executable to launch (stdio only).
	Command string `json:"command,omitempty"`

	// Args are the command-line arguments (stdio only).
	Args []string `json:"args,omitempty"`

	// Env is the environment for the subprocess (stdio only).
	// Values support ${VAR} expansion from the host environment.
	Env map[string]string `json:"env,omitempty"`

	// --- sse transport fields ---

	// URL is the SSE endpoint URL (sse only).
	URL string `json:"url,omitempty"`

	// --- common fields ---

	// Disabled keeps the entry in the available set but refuses connects.
	Disabled bool `json:"disabled,omitempty"`
}

// Enabled reports whether the server may be connected.
func (s *ServerConfig) Enabled() bool {
	return !s.Disabled
}

// EnvSlice renders Env as sorted KEY=VALUE pairs with ${VAR} expanded,
// the form the stdio subprocess expects.
func (s *ServerConfig) EnvSlice() []string {
	if len(s.Env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+os.ExpandEnv(s.Env[k]))
	}
	return pairs
}

// Validate checks a single server entry, filling the transport default.
func (s *ServerConfig) Validate() error {
	if s.Transport == "" {
		s.Transport = TransportStdio
	}
	switch s.Transport {
	case TransportStdio:
		if s.Command == "" {
			return fmt.Errorf("server %q: command is required for stdio transport", s.Name)
		}
	case TransportSSE:
		if s.URL == "" {
			return fmt.Errorf("server %q: url is required for sse transport", s.Name)
		}
	default:
		return fmt.Errorf("server %q: unsupported transport %q (must be 'stdio' or 'sse')", s.Name, s.Transport)
	}
	return nil
}

// LoadMCPConfig loads the MCP configuration from a JSON file.
// If the file does not exist, returns an empty config (no error).
func LoadMCPConfig(path string) (*MCPConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMCPConfig(), nil
		}
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", path, err)
	}

	cfg := &MCPConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", path, err)
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*ServerConfig)
	}
	for name, srv := range cfg.MCPServers {
		srv.Name = name
	}

	return cfg, nil
}

// NewMCPConfig creates a default (empty) MCP configuration.
func NewMCPConfig() *MCPConfig {
	return &MCPConfig{
		MCPServers: make(map[string]*ServerConfig),
	}
}

// Validate checks the MCP configuration for obvious errors.
func (c *MCPConfig) Validate() []error {
	var errs []error
	for name, srv := range c.MCPServers {
		srv.Name = name
		if err := srv.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
