package mcp

import (
	"context"
	"errors"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type fakeCall struct {
	toolName string
	args     map[string]any
}

type fakeSession struct {
	tools      []mcpgo.Tool
	initErr    error
	listErr    error
	callErr    error
	callResult *mcpgo.CallToolResult
	calls      []fakeCall
	closed     int
}

func (f *fakeSession) Initialize(ctx context.Context, req mcpgo.InitializeRequest) (*mcpgo.InitializeResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &mcpgo.InitializeResult{}, nil
}

func (f *fakeSession) ListTools(ctx context.Context, req mcpgo.ListToolsRequest) (*mcpgo.ListToolsResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcpgo.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeSession) CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	f.calls = append(f.calls, fakeCall{toolName: req.Params.Name, args: args})
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callResult, nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type fakeConnector struct {
	kind    string
	session SessionClient
	err     error
	calls   int
}

func (f *fakeConnector) Kind() string { return f.kind }

func (f *fakeConnector) Open(ctx context.Context, cfg *ServerConfig) (SessionClient, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeStore struct {
	saved   map[string]*ServerConfig
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*ServerConfig)}
}

func (s *fakeStore) Save(cfg *ServerConfig) error {
	s.saved[cfg.Name] = cfg
	return nil
}

func (s *fakeStore) Delete(name string) error {
	s.deleted = append(s.deleted, name)
	delete(s.saved, name)
	return nil
}

func (s *fakeStore) List() ([]*ServerConfig, error) {
	var out []*ServerConfig
	for _, cfg := range s.saved {
		out = append(out, cfg)
	}
	return out, nil
}

func pingTool() mcpgo.Tool {
	return mcpgo.Tool{Name: "ping", Description: "Ping the server"}
}

func newTestRegistry(cfg *MCPConfig, connectors map[string]Connector) *registry {
	c := Config{MCPConfig: cfg}
	r := newRegistry(c.Complete())
	if connectors != nil {
		r.connectors = connectors
	}
	return r
}

func stdioConfig(name string) *MCPConfig {
	return &MCPConfig{MCPServers: map[string]*ServerConfig{
		name: {Name: name, Transport: TransportStdio, Command: "mcp-server"},
	}}
}

func TestRegistry_Connect_DiscoversTools(t *testing.T) {
	session := &fakeSession{tools: []mcpgo.Tool{pingTool()}}
	conn := &fakeConnector{kind: TransportStdio, session: session}

	r := newTestRegistry(stdioConfig("localfs"), map[string]Connector{TransportStdio: conn})

	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	connected := r.ListConnected()
	if len(connected) != 1 || connected[0] != "localfs" {
		t.Fatalf("expected [localfs] connected, got %v", connected)
	}

	tools, err := r.Tools("localfs")
	if err != nil {
		t.Fatalf("Tools() error: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "ping" {
		t.Fatalf("expected tool snapshot [ping], got %v", tools)
	}
}

func TestRegistry_Describe_MergesLiveState(t *testing.T) {
	session := &fakeSession{tools: []mcpgo.Tool{
		pingTool(),
		{Name: "stat", Description: "File metadata"},
	}}
	conn := &fakeConnector{kind: TransportStdio, session: session}
	r := newTestRegistry(stdioConfig("localfs"), map[string]Connector{TransportStdio: conn})

	info, err := r.Describe("localfs")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if info.Connected || info.ConnectedAt != nil || len(info.Tools) != 0 {
		t.Fatalf("disconnected server must carry no live state, got %+v", info)
	}

	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	info, err = r.Describe("localfs")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if !info.Connected || info.ConnectedAt == nil {
		t.Fatalf("expected live state after connect, got %+v", info)
	}

	// The describe view matches the connect-time snapshot exactly.
	snapshot, err := r.Tools("localfs")
	if err != nil {
		t.Fatalf("Tools() error: %v", err)
	}
	if info.ToolCount != len(snapshot) {
		t.Fatalf("ToolCount = %d, snapshot %d", info.ToolCount, len(snapshot))
	}
	if len(info.Tools) != len(snapshot) {
		t.Fatalf("tool count = %d, snapshot %d", len(info.Tools), len(snapshot))
	}
	for i := range snapshot {
		if info.Tools[i].Name != snapshot[i].Name {
			t.Fatalf("tool %d = %q, snapshot %q", i, info.Tools[i].Name, snapshot[i].Name)
		}
	}

	if _, err := r.Describe("ghost"); !errors.Is(err, ErrServerNotFound) {
		t.Fatalf("expected ErrServerNotFound, got %v", err)
	}
}

func TestRegistry_Connect_Idempotent(t *testing.T) {
	conn := &fakeConnector{kind: TransportStdio, session: &fakeSession{}}
	r := newTestRegistry(stdioConfig("localfs"), map[string]Connector{TransportStdio: conn})

	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("first Connect() error: %v", err)
	}
	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("second Connect() error: %v", err)
	}

	if conn.calls != 1 {
		t.Fatalf("expected one transport open, got %d", conn.calls)
	}
}

func TestRegistry_Connect_UnknownServer(t *testing.T) {
	r := newTestRegistry(NewMCPConfig(), nil)

	err := r.Connect(context.Background(), "ghost")
	if !errors.Is(err, ErrServerNotFound) {
		t.Fatalf("expected ErrServerNotFound, got %v", err)
	}
}

func TestRegistry_Connect_DisabledServer(t *testing.T) {
	cfg := stdioConfig("localfs")
	cfg.MCPServers["localfs"].Disabled = true

	r := newTestRegistry(cfg, map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: &fakeSession{}},
	})

	err := r.Connect(context.Background(), "localfs")
	if !errors.Is(err, ErrServerDisabled) {
		t.Fatalf("expected ErrServerDisabled, got %v", err)
	}
}

func TestRegistry_Connect_TransportFailureStageTagged(t *testing.T) {
	dialErr := errors.New("dial tcp: connection refused")
	r := newTestRegistry(stdioConfig("broken"), map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, err: dialErr},
	})

	err := r.Connect(context.Background(), "broken")

	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if ce.Stage != StageTransport {
		t.Fatalf("expected transport stage, got %s", ce.Stage)
	}
	if !errors.Is(err, dialErr) {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
	if len(r.ListConnected()) != 0 {
		t.Fatalf("failed connect must not register a connection")
	}
}

func TestRegistry_Connect_HandshakeFailureClosesClient(t *testing.T) {
	session := &fakeSession{initErr: errors.New("protocol version mismatch")}
	r := newTestRegistry(stdioConfig("broken"), map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	})

	err := r.Connect(context.Background(), "broken")

	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if ce.Stage != StageHandshake {
		t.Fatalf("expected handshake stage, got %s", ce.Stage)
	}
	if session.closed != 1 {
		t.Fatalf("expected client closed on handshake failure, closed=%d", session.closed)
	}
}

func TestRegistry_Connect_DiscoveryFailureClosesClient(t *testing.T) {
	session := &fakeSession{listErr: errors.New("tools/list unsupported")}
	r := newTestRegistry(stdioConfig("broken"), map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	})

	err := r.Connect(context.Background(), "broken")

	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if ce.Stage != StageDiscovery {
		t.Fatalf("expected discovery stage, got %s", ce.Stage)
	}
	if session.closed != 1 {
		t.Fatalf("expected client closed on discovery failure, closed=%d", session.closed)
	}
}

func TestRegistry_ConnectURL_RejectsBadScheme(t *testing.T) {
	r := newTestRegistry(NewMCPConfig(), nil)

	err := r.ConnectURL(context.Background(), "remote", "ftp://example.com/sse")

	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if ce.Stage != StageTransport {
		t.Fatalf("expected transport stage, got %s", ce.Stage)
	}
	if len(r.ListAvailable()) != 0 {
		t.Fatalf("rejected url must not synthesize a config entry")
	}
}

func TestRegistry_ConnectURL_SynthesizesConfig(t *testing.T) {
	session := &fakeSession{tools: []mcpgo.Tool{pingTool()}}
	r := newTestRegistry(NewMCPConfig(), map[string]Connector{
		TransportSSE: &fakeConnector{kind: TransportSSE, session: session},
	})

	if err := r.ConnectURL(context.Background(), "remote", "http://127.0.0.1:9011/sse"); err != nil {
		t.Fatalf("ConnectURL() error: %v", err)
	}

	info, err := r.Describe("remote")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if info.Transport != TransportSSE || info.URL != "http://127.0.0.1:9011/sse" {
		t.Fatalf("unexpected synthesized config: %+v", info)
	}
	if !info.Connected || info.ConnectedAt == nil {
		t.Fatalf("expected connected describe view, got %+v", info)
	}
}

func TestRegistry_Disconnect_Idempotent(t *testing.T) {
	session := &fakeSession{}
	r := newTestRegistry(stdioConfig("localfs"), map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	})

	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	if !r.Disconnect("localfs") {
		t.Fatalf("expected first Disconnect to report true")
	}
	if r.Disconnect("localfs") {
		t.Fatalf("expected second Disconnect to report false")
	}
	if session.closed != 1 {
		t.Fatalf("expected exactly one close, got %d", session.closed)
	}
}

func TestRegistry_DisconnectAll(t *testing.T) {
	a := &fakeSession{}
	b := &fakeSession{}
	cfg := &MCPConfig{MCPServers: map[string]*ServerConfig{
		"a": {Name: "a", Transport: TransportStdio, Command: "a-server"},
		"b": {Name: "b", Transport: TransportStdio, Command: "b-server"},
	}}

	conn := &fakeConnector{kind: TransportStdio, session: a}
	r := newTestRegistry(cfg, map[string]Connector{TransportStdio: conn})

	if err := r.Connect(context.Background(), "a"); err != nil {
		t.Fatalf("Connect(a) error: %v", err)
	}
	conn.session = b
	if err := r.Connect(context.Background(), "b"); err != nil {
		t.Fatalf("Connect(b) error: %v", err)
	}

	r.DisconnectAll()

	if len(r.ListConnected()) != 0 {
		t.Fatalf("expected no connections after DisconnectAll, got %v", r.ListConnected())
	}
	if a.closed != 1 || b.closed != 1 {
		t.Fatalf("expected both sessions closed, got a=%d b=%d", a.closed, b.closed)
	}
}

func TestRegistry_ExecuteTool_NotConnected(t *testing.T) {
	r := newTestRegistry(stdioConfig("localfs"), nil)

	// Known config entry without a live connection.
	_, err := r.ExecuteTool(context.Background(), "localfs", "ping", nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	// A name absent from config fails the same way: only the live
	// connection set decides.
	_, err = r.ExecuteTool(context.Background(), "ghost", "ping", nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	if _, err := r.Tools("ghost"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected from Tools, got %v", err)
	}
}

func TestRegistry_ExecuteTool_PassesArguments(t *testing.T) {
	session := &fakeSession{
		tools:      []mcpgo.Tool{pingTool()},
		callResult: mcpgo.NewToolResultText("pong"),
	}
	r := newTestRegistry(stdioConfig("localfs"), map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	})

	if err := r.Connect(context.Background(), "localfs"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	args := map[string]any{"target": "db-1"}
	result, err := r.ExecuteTool(context.Background(), "localfs", "ping", args)
	if err != nil {
		t.Fatalf("ExecuteTool() error: %v", err)
	}
	if result.Text != "pong" {
		t.Fatalf("expected text result %q, got %q", "pong", result.Text)
	}

	if len(session.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(session.calls))
	}
	if session.calls[0].toolName != "ping" {
		t.Fatalf("expected tool name ping, got %q", session.calls[0].toolName)
	}
	if session.calls[0].args["target"] != "db-1" {
		t.Fatalf("arguments not passed through: %v", session.calls[0].args)
	}
}

func TestRegistry_AddUpdateRemoveServer(t *testing.T) {
	store := newFakeStore()
	session := &fakeSession{}

	c := Config{MCPConfig: NewMCPConfig(), Store: store}
	r := newRegistry(c.Complete())
	r.connectors = map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	}

	cfg := &ServerConfig{Name: "docs", Transport: TransportStdio, Command: "docs-server"}
	if err := r.AddServer(cfg); err != nil {
		t.Fatalf("AddServer() error: %v", err)
	}
	if err := r.AddServer(cfg); !errors.Is(err, ErrServerExists) {
		t.Fatalf("expected ErrServerExists, got %v", err)
	}
	if _, ok := store.saved["docs"]; !ok {
		t.Fatalf("expected AddServer to persist config")
	}

	updated := &ServerConfig{Name: "docs", Transport: TransportStdio, Command: "docs-server-v2"}
	if err := r.UpdateServer(updated); err != nil {
		t.Fatalf("UpdateServer() error: %v", err)
	}
	if store.saved["docs"].Command != "docs-server-v2" {
		t.Fatalf("expected UpdateServer to persist new command")
	}
	if err := r.UpdateServer(&ServerConfig{Name: "ghost", Transport: TransportStdio, Command: "x"}); !errors.Is(err, ErrServerNotFound) {
		t.Fatalf("expected ErrServerNotFound, got %v", err)
	}

	if err := r.Connect(context.Background(), "docs"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := r.RemoveServer("docs"); err != nil {
		t.Fatalf("RemoveServer() error: %v", err)
	}
	if session.closed != 1 {
		t.Fatalf("expected RemoveServer to disconnect first, closed=%d", session.closed)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "docs" {
		t.Fatalf("expected store delete for docs, got %v", store.deleted)
	}
	if err := r.RemoveServer("docs"); !errors.Is(err, ErrServerNotFound) {
		t.Fatalf("expected ErrServerNotFound after removal, got %v", err)
	}
}

func TestRegistry_Reload_PreservesConnectedAndStored(t *testing.T) {
	store := newFakeStore()
	_ = store.Save(&ServerConfig{Name: "stored", Transport: TransportStdio, Command: "stored-server"})

	session := &fakeSession{}
	c := Config{MCPConfig: stdioConfig("live"), Store: store}
	r := newRegistry(c.Complete())
	r.connectors = map[string]Connector{
		TransportStdio: &fakeConnector{kind: TransportStdio, session: session},
	}

	if err := r.Connect(context.Background(), "live"); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	// New file drops "live" and introduces "fresh".
	r.Reload(&MCPConfig{MCPServers: map[string]*ServerConfig{
		"fresh": {Transport: TransportStdio, Command: "fresh-server"},
	}})

	available := r.ListAvailable()
	want := map[string]bool{"fresh": true, "stored": true, "live": true}
	if len(available) != len(want) {
		t.Fatalf("expected available %v, got %v", want, available)
	}
	for _, name := range available {
		if !want[name] {
			t.Fatalf("unexpected available server %q in %v", name, available)
		}
	}

	if len(r.ListConnected()) != 1 || r.ListConnected()[0] != "live" {
		t.Fatalf("reload must not touch live connections, got %v", r.ListConnected())
	}
}
