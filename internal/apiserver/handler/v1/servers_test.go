package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/internal/apiserver/service/orchestrator"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRegistry implements mcp.Registry in memory.
type fakeRegistry struct {
	available map[string]*mcp.ServerConfig
	connected map[string]bool

	connectErr error
	execResult *mcp.ToolResult
	execErr    error
	execCalls  []string
}

var _ mcp.Registry = (*fakeRegistry)(nil)

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		available: map[string]*mcp.ServerConfig{},
		connected: map[string]bool{},
	}
}

func (f *fakeRegistry) Connect(_ context.Context, name string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	if _, ok := f.available[name]; !ok {
		return mcp.ErrServerNotFound
	}
	f.connected[name] = true
	return nil
}

func (f *fakeRegistry) ConnectURL(ctx context.Context, name, rawURL string) error {
	f.available[name] = &mcp.ServerConfig{Name: name, Transport: mcp.TransportSSE, URL: rawURL}
	return f.Connect(ctx, name)
}

func (f *fakeRegistry) Disconnect(name string) bool {
	was := f.connected[name]
	delete(f.connected, name)
	return was
}

func (f *fakeRegistry) DisconnectAll() {
	f.connected = map[string]bool{}
}

func (f *fakeRegistry) ListConnected() []string {
	var names []string
	for name := range f.connected {
		names = append(names, name)
	}
	return names
}

func (f *fakeRegistry) ListAvailable() []string {
	var names []string
	for name := range f.available {
		names = append(names, name)
	}
	return names
}

func (f *fakeRegistry) Describe(name string) (*mcp.ServerInfo, error) {
	cfg, ok := f.available[name]
	if !ok {
		return nil, mcp.ErrServerNotFound
	}
	return &mcp.ServerInfo{
		Name:      cfg.Name,
		Transport: cfg.Transport,
		URL:       cfg.URL,
		Enabled:   cfg.Enabled(),
		Connected: f.connected[name],
	}, nil
}

func (f *fakeRegistry) Tools(name string) ([]mcp.ToolDescriptor, error) {
	if !f.connected[name] {
		return nil, mcp.ErrNotConnected
	}
	return nil, nil
}

func (f *fakeRegistry) AllTools() map[string][]mcp.ToolDescriptor {
	return map[string][]mcp.ToolDescriptor{}
}

func (f *fakeRegistry) ExecuteTool(_ context.Context, server, tool string, _ map[string]any) (*mcp.ToolResult, error) {
	f.execCalls = append(f.execCalls, server+"/"+tool)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.execResult, nil
}

func (f *fakeRegistry) AddServer(cfg *mcp.ServerConfig) error {
	if _, ok := f.available[cfg.Name]; ok {
		return mcp.ErrServerExists
	}
	f.available[cfg.Name] = cfg
	return nil
}

func (f *fakeRegistry) UpdateServer(cfg *mcp.ServerConfig) error {
	if _, ok := f.available[cfg.Name]; !ok {
		return mcp.ErrServerNotFound
	}
	f.available[cfg.Name] = cfg
	return nil
}

func (f *fakeRegistry) RemoveServer(name string) error {
	if _, ok := f.available[name]; !ok {
		return mcp.ErrServerNotFound
	}
	f.Disconnect(name)
	delete(f.available, name)
	return nil
}

func (f *fakeRegistry) Reload(*mcp.MCPConfig) {}

func newTestRouter(reg mcp.Registry, qs QueryService) *gin.Engine {
	g := gin.New()
	servers := NewServerHandler(reg)
	tools := NewToolHandler(reg)

	v1 := g.Group("/v1")
	v1.GET("/servers", servers.List)
	v1.POST("/servers", servers.Create)
	v1.GET("/servers/:name", servers.Get)
	v1.PUT("/servers/:name", servers.Update)
	v1.DELETE("/servers/:name", servers.Delete)
	v1.POST("/servers/:name/connect", servers.Connect)
	v1.POST("/servers/connections", servers.ConnectURL)
	v1.DELETE("/servers/:name/connection", servers.Disconnect)
	v1.POST("/tools/calls", tools.Call)
	if qs != nil {
		v1.POST("/queries", NewQueryHandler(qs).Create)
	}
	return g
}

func doRequest(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestServerHandler_CreateAndGet(t *testing.T) {
	reg := newFakeRegistry()
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/servers",
		`{"name":"docs","transport":"stdio","command":"docs-server"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, g, http.MethodGet, "/v1/servers/docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var info mcp.ServerInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Name != "docs" || info.Connected {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestServerHandler_CreateDuplicateConflicts(t *testing.T) {
	reg := newFakeRegistry()
	reg.available["docs"] = &mcp.ServerConfig{Name: "docs", Transport: "stdio", Command: "x"}
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/servers",
		`{"name":"docs","transport":"stdio","command":"docs-server"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestServerHandler_CreateRejectsInvalidConfig(t *testing.T) {
	g := newTestRouter(newFakeRegistry(), nil)

	// stdio transport without a command.
	w := doRequest(t, g, http.MethodPost, "/v1/servers", `{"name":"docs","transport":"stdio"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestServerHandler_GetUnknownIs404(t *testing.T) {
	g := newTestRouter(newFakeRegistry(), nil)

	w := doRequest(t, g, http.MethodGet, "/v1/servers/ghost", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestServerHandler_ConnectLifecycle(t *testing.T) {
	reg := newFakeRegistry()
	reg.available["docs"] = &mcp.ServerConfig{Name: "docs", Transport: "stdio", Command: "x"}
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/servers/docs/connect", "")
	if w.Code != http.StatusOK {
		t.Fatalf("connect status = %d", w.Code)
	}
	if !reg.connected["docs"] {
		t.Fatal("registry not connected after connect")
	}

	w = doRequest(t, g, http.MethodDelete, "/v1/servers/docs/connection", "")
	if w.Code != http.StatusOK {
		t.Fatalf("disconnect status = %d", w.Code)
	}
	if reg.connected["docs"] {
		t.Fatal("registry still connected after disconnect")
	}
}

func TestServerHandler_ConnectFailureIsBadGateway(t *testing.T) {
	reg := newFakeRegistry()
	reg.available["docs"] = &mcp.ServerConfig{Name: "docs", Transport: "stdio", Command: "x"}
	reg.connectErr = &mcp.ConnectError{Server: "docs", Stage: mcp.StageTransport, Err: context.DeadlineExceeded}
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/servers/docs/connect", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestServerHandler_ConnectURL(t *testing.T) {
	reg := newFakeRegistry()
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/servers/connections",
		`{"name":"remote","url":"http://127.0.0.1:3000/sse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !reg.connected["remote"] {
		t.Fatal("remote server not connected")
	}
}

func TestToolHandler_Call(t *testing.T) {
	reg := newFakeRegistry()
	reg.execResult = &mcp.ToolResult{Text: "42"}
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/tools/calls",
		`{"server":"docs","tool":"search","arguments":{"q":"answer"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ToolCallResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Text != "42" || resp.Kind != "text" || resp.IsError {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(reg.execCalls) != 1 || reg.execCalls[0] != "docs/search" {
		t.Fatalf("unexpected exec calls %v", reg.execCalls)
	}
}

func TestToolHandler_CallNotConnectedIsConflict(t *testing.T) {
	reg := newFakeRegistry()
	reg.execErr = mcp.ErrNotConnected
	g := newTestRouter(reg, nil)

	w := doRequest(t, g, http.MethodPost, "/v1/tools/calls",
		`{"server":"docs","tool":"search"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

type fakeQueryService struct {
	req    *orchestrator.QueryRequest
	result *orchestrator.QueryResult
	err    error
}

func (f *fakeQueryService) Process(_ context.Context, req *orchestrator.QueryRequest) (*orchestrator.QueryResult, error) {
	f.req = req
	return f.result, f.err
}

func (f *fakeQueryService) ProcessStream(_ context.Context, req *orchestrator.QueryRequest) *schema.StreamReader[*orchestrator.QueryEvent] {
	f.req = req
	sr, sw := schema.Pipe[*orchestrator.QueryEvent](4)
	go func() {
		defer sw.Close()
		sw.Send(&orchestrator.QueryEvent{Type: orchestrator.EventIteration, Iteration: 1, ToolCalls: 1}, nil)
		sw.Send(&orchestrator.QueryEvent{Type: orchestrator.EventToolCall, Server: "docs", Tool: "search", Preview: "42"}, nil)
		if f.err != nil {
			sw.Send(&orchestrator.QueryEvent{Type: orchestrator.EventError, Error: f.err.Error()}, nil)
			return
		}
		sw.Send(&orchestrator.QueryEvent{Type: orchestrator.EventAnswer, Result: f.result}, nil)
	}()
	return sr
}

func TestQueryHandler_Create(t *testing.T) {
	qs := &fakeQueryService{result: &orchestrator.QueryResult{Answer: "done", Iterations: 1}}
	g := newTestRouter(newFakeRegistry(), qs)

	w := doRequest(t, g, http.MethodPost, "/v1/queries",
		`{"query":"what changed?","servers":["docs"],"chaining":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if qs.req == nil || qs.req.Query != "what changed?" {
		t.Fatalf("query not forwarded: %+v", qs.req)
	}
	if qs.req.Chaining == nil || *qs.req.Chaining {
		t.Fatal("chaining flag lost in binding")
	}

	var result orchestrator.QueryResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Answer != "done" {
		t.Fatalf("answer = %q", result.Answer)
	}
}

func TestQueryHandler_Stream(t *testing.T) {
	qs := &fakeQueryService{result: &orchestrator.QueryResult{Answer: "done", Iterations: 1}}
	g := newTestRouter(newFakeRegistry(), qs)

	w := doRequest(t, g, http.MethodPost, "/v1/queries",
		`{"query":"what changed?","stream":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	body := w.Body.String()
	var events []orchestrator.QueryEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") || line == "data: [DONE]" {
			continue
		}
		var ev orchestrator.QueryEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("unmarshal event %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, body %q", len(events), body)
	}
	if events[0].Type != orchestrator.EventIteration || events[1].Type != orchestrator.EventToolCall {
		t.Fatalf("unexpected event order %+v", events)
	}
	last := events[len(events)-1]
	if last.Type != orchestrator.EventAnswer || last.Result == nil || last.Result.Answer != "done" {
		t.Fatalf("unexpected terminal event %+v", last)
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]") {
		t.Fatalf("missing [DONE] sentinel: %q", body)
	}
}

func TestQueryHandler_EmptyQueryRejected(t *testing.T) {
	g := newTestRouter(newFakeRegistry(), &fakeQueryService{})

	w := doRequest(t, g, http.MethodPost, "/v1/queries", `{"query":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
