package mcp

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// Transport kinds understood by the registry.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// SessionClient is the narrow slice of the mcp-go client the registry
// needs. Keeping it small lets tests substitute in-memory fakes.
type SessionClient interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Connector opens the transport for one server and returns a session
// client ready for the MCP handshake. Open covers only transport setup;
// the handshake is the registry's job so failures stay stage-tagged.
type Connector interface {
	Kind() string
	Open(ctx context.Context, cfg *ServerConfig) (SessionClient, error)
}

// stdioConnector launches the server as a subprocess and talks MCP over
// its stdin/stdout.
type stdioConnector struct{}

func (stdioConnector) Kind() string { return TransportStdio }

func (stdioConnector) Open(_ context.Context, cfg *ServerConfig) (SessionClient, error) {
	return client.NewStdioMCPClient(cfg.Command, cfg.EnvSlice(), cfg.Args...)
}

// sseConnector dials an HTTP SSE endpoint. The event stream must be up
// before the handshake, bounded by the transport timeout.
type sseConnector struct{}

func (sseConnector) Kind() string { return TransportSSE }

func (sseConnector) Open(ctx context.Context, cfg *ServerConfig) (SessionClient, error) {
	endpoint := cfg.URL
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid sse url %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid sse url %q: scheme must be http or https", endpoint)
	}

	cli, err := client.NewSSEMCPClient(endpoint)
	if err != nil {
		return nil, err
	}

	if err := cli.Start(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to start sse stream: %w", err)
	}

	return cli, nil
}

func defaultConnectors() map[string]Connector {
	return map[string]Connector{
		TransportStdio: stdioConnector{},
		TransportSSE:   sseConnector{},
	}
}
