package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()

	rec, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = rec.Close() })

	return rec
}

func TestRecorder_RecordAndRecent(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	calledAt := time.Now().Truncate(time.Millisecond)
	rec.Record(ctx, &mcp.CallRecord{
		CorrelationID: "docs:search:1700000000000",
		Server:        "docs",
		Tool:          "search",
		Duration:      125 * time.Millisecond,
		Status:        "ok",
		Preview:       "3 results",
		CalledAt:      calledAt,
	})
	rec.Record(ctx, &mcp.CallRecord{
		CorrelationID: "docs:search:1700000000500",
		Server:        "docs",
		Tool:          "search",
		Duration:      40 * time.Millisecond,
		Status:        "error",
		Preview:       "Error: index offline",
		CalledAt:      calledAt.Add(time.Second),
	})

	entries, err := rec.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Status != "error" || entries[1].Status != "ok" {
		t.Fatalf("unexpected order: %q then %q", entries[0].Status, entries[1].Status)
	}
	got := entries[1]
	if got.CorrelationID != "docs:search:1700000000000" || got.DurationMs != 125 {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !got.CalledAt.Equal(calledAt) {
		t.Fatalf("CalledAt = %v, want %v", got.CalledAt, calledAt)
	}
}

func TestRecorder_RecentFiltersByServer(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	for _, server := range []string{"docs", "tickets", "docs"} {
		rec.Record(ctx, &mcp.CallRecord{
			CorrelationID: server + ":t:1",
			Server:        server,
			Tool:          "t",
			Status:        "ok",
			CalledAt:      time.Now(),
		})
	}

	entries, err := rec.Recent(ctx, "docs", 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 docs entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Server != "docs" {
			t.Fatalf("filter leaked entry for %q", e.Server)
		}
	}
}

func TestRecorder_RecentLimit(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec.Record(ctx, &mcp.CallRecord{
			CorrelationID: "s:t:1", Server: "s", Tool: "t", Status: "ok", CalledAt: time.Now(),
		})
	}

	entries, err := rec.Recent(ctx, "", 3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}
