package v1

// --- Server management API ---

// ServerRequest is the body for POST /v1/servers and PUT /v1/servers/:name.
type ServerRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description,omitempty"`
	Transport   string            `json:"transport,omitempty"`
	Command     string            `json:"command,omitempty"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	URL         string            `json:"url,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
}

// ConnectURLRequest is the body for POST /v1/servers/connections.
type ConnectURLRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

// ServerListResponse is the response for GET /v1/servers.
type ServerListResponse struct {
	Available []string `json:"available"`
	Connected []string `json:"connected"`
}

// --- Tool API ---

// ToolCallRequest is the body for POST /v1/tools/calls.
type ToolCallRequest struct {
	Server    string         `json:"server" binding:"required"`
	Tool      string         `json:"tool" binding:"required"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolCallResponse is the normalized tool result.
type ToolCallResponse struct {
	Kind       string         `json:"kind"`
	Text       string         `json:"text,omitempty"`
	Structured map[string]any `json:"structured,omitempty"`
	IsError    bool           `json:"is_error"`
}

// --- System API ---

// SystemInfoResponse is the response for GET /v1/system/info.
type SystemInfoResponse struct {
	HostName  string `json:"hostname"`
	OSRelease string `json:"os_release"`
	CPUCore   uint64 `json:"cpu_cores"`
	MemTotal  uint64 `json:"mem_total_mb"`
	MemFree   uint64 `json:"mem_free_mb"`
}
