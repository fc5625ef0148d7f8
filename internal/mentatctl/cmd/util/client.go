// Package util holds the REST client and helpers shared by mentatctl
// subcommands.
package util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mentatproj/mentat/pkg/utils/json"
)

// DefaultServerAddr is where a locally started apiserver listens.
const DefaultServerAddr = "http://127.0.0.1:8320"

// ServerInfo mirrors the apiserver's describe payload.
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

// ToolDescriptor is one tool as discovered on a server.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// ServerList is the GET /v1/servers payload.
type ServerList struct {
	Available []string `json:"available"`
	Connected []string `json:"connected"`
}

// ServerSpec is the body for adding or updating a server.
type ServerSpec struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Transport   string            `json:"transport,omitempty"`
	Command     string            `json:"command,omitempty"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	URL         string            `json:"url,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
}

// ToolCallResult is the POST /v1/tools/calls payload.
type ToolCallResult struct {
	Kind       string         `json:"kind"`
	Text       string         `json:"text,omitempty"`
	Structured map[string]any `json:"structured,omitempty"`
	IsError    bool           `json:"is_error"`
}

// QueryRequest is the body for POST /v1/queries.
type QueryRequest struct {
	Query    string   `json:"query"`
	Servers  []string `json:"servers,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Chaining *bool    `json:"chaining,omitempty"`
}

// QueryResult is the POST /v1/queries payload.
type QueryResult struct {
	Answer        string   `json:"answer"`
	ServersUsed   []string `json:"servers_used,omitempty"`
	ToolCallsMade int      `json:"tool_calls_made"`
	Iterations    int      `json:"iterations"`
}

// AuditEntry is one row of the tool-call audit trail.
type AuditEntry struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Server        string    `json:"server"`
	Tool          string    `json:"tool"`
	DurationMs    int64     `json:"duration_ms"`
	Status        string    `json:"status"`
	Preview       string    `json:"preview"`
	CalledAt      time.Time `json:"called_at"`
}

type errResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client talks to the mentat apiserver REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the apiserver at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultServerAddr
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = 330 * time.Second
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s (code %d)", resp.StatusCode, apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// ListServers returns available and connected server names.
func (c *Client) ListServers(ctx context.Context) (*ServerList, error) {
	var list ServerList
	if err := c.do(ctx, http.MethodGet, "/v1/servers", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DescribeServer returns config plus connection state for one server.
func (c *Client) DescribeServer(ctx context.Context, name string) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/v1/servers/"+url.PathEscape(name), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// AddServer registers a new server configuration.
func (c *Client) AddServer(ctx context.Context, spec *ServerSpec) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodPost, "/v1/servers", spec, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveServer deletes a server configuration.
func (c *Client) RemoveServer(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/servers/"+url.PathEscape(name), nil, nil)
}

// Connect establishes a connection to a configured server.
func (c *Client) Connect(ctx context.Context, name string) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodPost, "/v1/servers/"+url.PathEscape(name)+"/connect", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ConnectURL registers and connects a network server in one step.
func (c *Client) ConnectURL(ctx context.Context, name, rawURL string) (*ServerInfo, error) {
	var info ServerInfo
	body := map[string]string{"name": name, "url": rawURL}
	if err := c.do(ctx, http.MethodPost, "/v1/servers/connections", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Disconnect closes the connection to one server.
func (c *Client) Disconnect(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/servers/"+url.PathEscape(name)+"/connection", nil, nil)
}

// ListTools returns tools grouped by connected server.
func (c *Client) ListTools(ctx context.Context) (map[string][]ToolDescriptor, error) {
	var resp struct {
		Servers map[string][]ToolDescriptor `json:"servers"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/tools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Servers, nil
}

// CallTool executes one tool directly.
func (c *Client) CallTool(ctx context.Context, server, tool string, args map[string]any) (*ToolCallResult, error) {
	body := map[string]any{"server": server, "tool": tool, "arguments": args}
	var result ToolCallResult
	if err := c.do(ctx, http.MethodPost, "/v1/tools/calls", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query runs one natural-language query through the orchestrator.
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/v1/queries", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Audit lists recent tool-call records, newest first.
func (c *Client) Audit(ctx context.Context, server string, limit int) ([]AuditEntry, error) {
	q := url.Values{}
	if server != "" {
		q.Set("server", server)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/audit/calls"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Data []AuditEntry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
