package mcp

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/mentatproj/mentat/pkg/logger"
)

const (
	defaultTransportTimeout = 10 * time.Second
	defaultHandshakeTimeout = 30 * time.Second
)

// registry is the default Registry implementation.
type registry struct {
	mu        sync.RWMutex
	available map[string]*ServerConfig
	conns     map[string]*Connection

	connectors map[string]Connector
	invoker    Invoker
	store      ServerStore

	transportTimeout time.Duration
	handshakeTimeout time.Duration
	clientInfo       mcpgo.Implementation
}

var _ Registry = (*registry)(nil)

func newRegistry(c CompletedConfig) *registry {
	r := &registry{
		available:        make(map[string]*ServerConfig, len(c.MCPConfig.MCPServers)),
		conns:            make(map[string]*Connection),
		connectors:       defaultConnectors(),
		invoker:          NewInvoker(c.ToolCallTimeout, c.Recorder),
		store:            c.Store,
		transportTimeout: defaultTransportTimeout,
		handshakeTimeout: defaultHandshakeTimeout,
		clientInfo: mcpgo.Implementation{
			Name:    c.ClientName,
			Version: c.ClientVersion,
		},
	}

	for name, srv := range c.MCPConfig.MCPServers {
		r.available[name] = srv
	}

	return r
}

// Connect establishes a connection and snapshots the server's tools.
// Transport setup and the protocol handshake run outside the registry
// lock so a slow server never blocks other operations.
func (r *registry) Connect(ctx context.Context, name string) error {
	r.mu.RLock()
	_, connected := r.conns[name]
	cfg, ok := r.available[name]
	r.mu.RUnlock()

	if connected {
		logger.Debug("[MCP] server %q already connected", name)
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrServerNotFound, name)
	}
	if cfg.Disabled {
		return fmt.Errorf("%w: %q", ErrServerDisabled, name)
	}

	conn, err := r.dial(ctx, cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.conns[name]; exists {
		r.mu.Unlock()
		// Lost the race against a concurrent Connect. Keep the winner.
		conn.Close()
		return nil
	}
	r.conns[name] = conn
	r.mu.Unlock()

	logger.Info("[MCP] server %q connected via %s (%d tools)", name, conn.Transport, len(conn.Tools))
	return nil
}

// ConnectURL connects to an SSE endpoint by URL, synthesizing a config
// entry under the given name. An existing entry with the same name is
// overwritten.
func (r *registry) ConnectURL(ctx context.Context, name, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &ConnectError{Server: name, Stage: StageTransport, Err: fmt.Errorf("invalid url %q: %w", rawURL, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConnectError{Server: name, Stage: StageTransport, Err: fmt.Errorf("invalid url %q: scheme must be http or https", rawURL)}
	}

	r.mu.Lock()
	if _, connected := r.conns[name]; connected {
		r.mu.Unlock()
		logger.Debug("[MCP] server %q already connected", name)
		return nil
	}
	cfg := &ServerConfig{
		Name:        name,
		Description: "network server added at runtime",
		Transport:   TransportSSE,
		URL:         rawURL,
	}
	r.available[name] = cfg
	r.mu.Unlock()

	return r.Connect(ctx, name)
}

// dial opens the transport, performs the handshake and discovers tools.
// Any mid-setup failure closes the client and reports the failed stage.
func (r *registry) dial(ctx context.Context, cfg *ServerConfig) (*Connection, error) {
	connector, ok := r.connectors[cfg.Transport]
	if !ok {
		return nil, &ConnectError{Server: cfg.Name, Stage: StageTransport, Err: fmt.Errorf("unknown transport %q", cfg.Transport)}
	}

	openCtx, cancelOpen := context.WithTimeout(ctx, r.transportTimeout)
	defer cancelOpen()

	cli, err := connector.Open(openCtx, cfg)
	if err != nil {
		return nil, &ConnectError{Server: cfg.Name, Stage: StageTransport, Err: err}
	}

	hsCtx, cancelHS := context.WithTimeout(ctx, r.handshakeTimeout)
	defer cancelHS()

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = r.clientInfo

	if _, err := cli.Initialize(hsCtx, initReq); err != nil {
		_ = cli.Close()
		return nil, &ConnectError{Server: cfg.Name, Stage: StageHandshake, Err: err}
	}

	listed, err := cli.ListTools(hsCtx, mcpgo.ListToolsRequest{})
	if err != nil {
		_ = cli.Close()
		return nil, &ConnectError{Server: cfg.Name, Stage: StageDiscovery, Err: err}
	}

	return &Connection{
		Name:        cfg.Name,
		Config:      cfg,
		Client:      cli,
		Transport:   cfg.Transport,
		ConnectedAt: time.Now(),
		Tools:       descriptorsFromTools(cfg.Name, listed.Tools),
	}, nil
}

func (r *registry) Disconnect(name string) bool {
	r.mu.Lock()
	conn, ok := r.conns[name]
	if ok {
		delete(r.conns, name)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	conn.Close()
	logger.Info("[MCP] server %q disconnected", name)
	return true
}

func (r *registry) DisconnectAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	if len(conns) > 0 {
		logger.Info("[MCP] disconnected %d servers", len(conns))
	}
}

func (r *registry) ListConnected() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.available))
	for name := range r.available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) Describe(name string) (*ServerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.available[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, name)
	}

	info := &ServerInfo{
		Name:        name,
		Description: cfg.Description,
		Transport:   cfg.Transport,
		Command:     cfg.Command,
		URL:         cfg.URL,
		Enabled:     cfg.Enabled(),
	}

	if conn, connected := r.conns[name]; connected {
		info.Connected = true
		at := conn.ConnectedAt
		info.ConnectedAt = &at
		info.ToolCount = len(conn.Tools)
		if err := copier.Copy(&info.Tools, &conn.Tools); err != nil {
			return nil, fmt.Errorf("failed to copy tool snapshot for %q: %w", name, err)
		}
	}

	return info, nil
}

func (r *registry) Tools(name string) ([]ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConnected, name)
	}

	tools := make([]ToolDescriptor, len(conn.Tools))
	copy(tools, conn.Tools)
	return tools, nil
}

func (r *registry) AllTools() map[string][]ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string][]ToolDescriptor, len(r.conns))
	for name, conn := range r.conns {
		tools := make([]ToolDescriptor, len(conn.Tools))
		copy(tools, conn.Tools)
		all[name] = tools
	}
	return all
}

func (r *registry) ExecuteTool(ctx context.Context, server, tool string, args map[string]any) (*ToolResult, error) {
	r.mu.RLock()
	conn, ok := r.conns[server]
	r.mu.RUnlock()

	// Only the live-connection set matters here: an unknown name and a
	// known-but-disconnected name are the same failure to a caller.
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConnected, server)
	}

	return r.invoker.Invoke(ctx, conn, tool, args)
}

func (r *registry) AddServer(cfg *ServerConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.available[cfg.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrServerExists, cfg.Name)
	}
	r.available[cfg.Name] = cfg
	r.mu.Unlock()

	r.persist(cfg)
	logger.Info("[MCP] server %q added (%s)", cfg.Name, cfg.Transport)
	return nil
}

func (r *registry) UpdateServer(cfg *ServerConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.available[cfg.Name]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrServerNotFound, cfg.Name)
	}
	r.available[cfg.Name] = cfg
	_, connected := r.conns[cfg.Name]
	r.mu.Unlock()

	r.persist(cfg)
	if connected {
		logger.Warn("[MCP] server %q updated while connected, reconnect to apply", cfg.Name)
	}
	return nil
}

func (r *registry) RemoveServer(name string) error {
	r.mu.Lock()
	_, exists := r.available[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrServerNotFound, name)
	}
	delete(r.available, name)
	r.mu.Unlock()

	r.Disconnect(name)

	if r.store != nil {
		if err := r.store.Delete(name); err != nil {
			logger.Warn("[MCP] failed to remove server %q from store: %v", name, err)
		}
	}
	logger.Info("[MCP] server %q removed", name)
	return nil
}

// Reload replaces the file-backed available set. Store entries overlay
// the file, and configs of live connections are carried over so a
// connected server never loses its describe view.
func (r *registry) Reload(cfg *MCPConfig) {
	next := make(map[string]*ServerConfig, len(cfg.MCPServers))
	for name, srv := range cfg.MCPServers {
		srv.Name = name
		next[name] = srv
	}

	if r.store != nil {
		stored, err := r.store.List()
		if err != nil {
			logger.Warn("[MCP] failed to load stored servers on reload: %v", err)
		}
		for _, srv := range stored {
			next[srv.Name] = srv
		}
	}

	r.mu.Lock()
	for name, conn := range r.conns {
		if _, ok := next[name]; !ok {
			next[name] = conn.Config
		}
	}
	r.available = next
	r.mu.Unlock()

	logger.Info("[MCP] configuration reloaded (%d servers available)", len(next))
}

func (r *registry) persist(cfg *ServerConfig) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(cfg); err != nil {
		logger.Warn("[MCP] failed to persist server %q: %v", cfg.Name, err)
	}
}
