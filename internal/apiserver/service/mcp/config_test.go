package mcp

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMCPConfig_MissingFileIsEmpty(t *testing.T) {
	cfg, err := LoadMCPConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadMCPConfig() error: %v", err)
	}
	if len(cfg.MCPServers) != 0 {
		t.Fatalf("expected empty config, got %v", cfg.MCPServers)
	}
}

func TestLoadMCPConfig_FillsNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	raw := `{
	  "mcpServers": {
	    "localfs": {"command": "localfs-mcp", "args": ["--root", "/tmp"]},
	    "remote": {"transport": "sse", "url": "http://127.0.0.1:9011/sse"}
	  }
	}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadMCPConfig(path)
	if err != nil {
		t.Fatalf("LoadMCPConfig() error: %v", err)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() errors: %v", errs)
	}

	local := cfg.MCPServers["localfs"]
	if local.Name != "localfs" {
		t.Fatalf("expected name filled from key, got %q", local.Name)
	}
	if local.Transport != TransportStdio {
		t.Fatalf("expected stdio default, got %q", local.Transport)
	}
	if cfg.MCPServers["remote"].Transport != TransportSSE {
		t.Fatalf("expected sse transport kept")
	}
}

func TestServerConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"stdio ok", ServerConfig{Name: "a", Command: "bin"}, false},
		{"stdio missing command", ServerConfig{Name: "a", Transport: TransportStdio}, true},
		{"sse ok", ServerConfig{Name: "a", Transport: TransportSSE, URL: "http://x/sse"}, false},
		{"sse missing url", ServerConfig{Name: "a", Transport: TransportSSE}, true},
		{"unknown transport", ServerConfig{Name: "a", Transport: "grpc"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestServerConfig_EnvSlice(t *testing.T) {
	t.Setenv("MENTAT_TEST_TOKEN", "s3cret")

	cfg := &ServerConfig{
		Name:    "a",
		Command: "bin",
		Env: map[string]string{
			"B_VAR": "two",
			"A_VAR": "one",
			"TOKEN": "${MENTAT_TEST_TOKEN}",
		},
	}

	want := []string{"A_VAR=one", "B_VAR=two", "TOKEN=s3cret"}
	if got := cfg.EnvSlice(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EnvSlice() = %v, want %v", got, want)
	}

	empty := &ServerConfig{Name: "b", Command: "bin"}
	if empty.EnvSlice() != nil {
		t.Fatalf("expected nil env slice for empty env")
	}
}
