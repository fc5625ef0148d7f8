package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

// MCPOptions holds options for the MCP (Model Context Protocol) subsystem.
// MCP servers live in a standalone configuration file.
type MCPOptions struct {
	// ConfigFile is the path to the MCP configuration file.
	ConfigFile string `json:"config_file" mapstructure:"config_file"`

	// ToolCallTimeout bounds each tool call. Zero disables the deadline.
	ToolCallTimeout time.Duration `json:"tool_call_timeout" mapstructure:"tool_call_timeout"`

	// AutoConnect connects every enabled server at startup.
	AutoConnect bool `json:"auto_connect" mapstructure:"auto_connect"`

	// HotReload watches the config file and refreshes the available set.
	HotReload bool `json:"hot_reload" mapstructure:"hot_reload"`
}

// NewMCPOptions creates a default MCPOptions instance.
func NewMCPOptions() *MCPOptions {
	return &MCPOptions{
		ConfigFile:      "conf/mcp.json",
		ToolCallTimeout: 300 * time.Second,
		HotReload:       true,
	}
}

// Validate checks the MCPOptions for correctness.
func (o *MCPOptions) Validate() error {
	if o.ConfigFile == "" {
		return errors.New("config_file is required")
	}
	if o.ToolCallTimeout < 0 {
		return errors.New("tool_call_timeout must be >= 0")
	}
	return nil
}

// AddFlags adds the MCPOptions flags to the given flag set.
func (o *MCPOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "mcp.config-file", o.ConfigFile,
		"Path to the MCP configuration file.")
	fs.DurationVar(&o.ToolCallTimeout, "mcp.tool-call-timeout", o.ToolCallTimeout,
		"Per tool call deadline. Zero disables the deadline.")
	fs.BoolVar(&o.AutoConnect, "mcp.auto-connect", o.AutoConnect,
		"Connect every enabled MCP server at startup.")
	fs.BoolVar(&o.HotReload, "mcp.hot-reload", o.HotReload,
		"Watch the MCP config file and refresh available servers on change.")
}
