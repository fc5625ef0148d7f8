package bolt

import (
	"path/filepath"
	"testing"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
)

func openTestStore(t *testing.T) *ServerStore {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "servers.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewServerStore(db)
}

func TestServerStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	cfg := &mcp.ServerConfig{
		Name:      "docs",
		Transport: "stdio",
		Command:   "docs-server",
		Args:      []string{"--root", "/srv/docs"},
		Env:       map[string]string{"TOKEN": "abc"},
	}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Upsert overwrites.
	cfg.Command = "docs-server-v2"
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() upsert error: %v", err)
	}

	configs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(configs))
	}
	got := configs[0]
	if got.Name != "docs" || got.Command != "docs-server-v2" {
		t.Fatalf("unexpected config %+v", got)
	}
	if got.Env["TOKEN"] != "abc" || len(got.Args) != 2 {
		t.Fatalf("nested fields lost: %+v", got)
	}
}

func TestServerStore_Delete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save(&mcp.ServerConfig{Name: "a", Transport: "stdio", Command: "a"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	// Deleting twice is a no-op.
	if err := store.Delete("a"); err != nil {
		t.Fatalf("Delete() second call error: %v", err)
	}

	configs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(configs) != 0 {
		t.Fatalf("expected empty store, got %v", configs)
	}
}
