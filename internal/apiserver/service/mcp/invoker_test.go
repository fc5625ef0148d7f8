package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type deadlineSession struct {
	fakeSession
	hadDeadline bool
	deadline    time.Time
}

func (d *deadlineSession) CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	d.deadline, d.hadDeadline = ctx.Deadline()
	return d.fakeSession.CallTool(ctx, req)
}

type spyRecorder struct {
	records []*CallRecord
}

func (s *spyRecorder) Record(ctx context.Context, rec *CallRecord) {
	s.records = append(s.records, rec)
}

func testConnection(client SessionClient) *Connection {
	return &Connection{
		Name:        "srv",
		Config:      &ServerConfig{Name: "srv", Transport: TransportStdio, Command: "srv-bin"},
		Client:      client,
		Transport:   TransportStdio,
		ConnectedAt: time.Now(),
		Tools:       []ToolDescriptor{{Name: "ping"}},
	}
}

func TestInvoker_WrapsCallError(t *testing.T) {
	cause := errors.New("boom")
	inv := NewInvoker(0, nil)

	_, err := inv.Invoke(context.Background(), testConnection(&fakeSession{callErr: cause}), "ping", nil)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "srv") || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("error should name server and tool: %v", err)
	}
}

func TestInvoker_AppliesCallDeadline(t *testing.T) {
	session := &deadlineSession{fakeSession: fakeSession{callResult: mcpgo.NewToolResultText("ok")}}
	inv := NewInvoker(5*time.Second, nil)

	if _, err := inv.Invoke(context.Background(), testConnection(session), "ping", nil); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if !session.hadDeadline {
		t.Fatalf("expected call context to carry a deadline")
	}
}

func TestInvoker_ZeroTimeoutDisablesDeadline(t *testing.T) {
	session := &deadlineSession{fakeSession: fakeSession{callResult: mcpgo.NewToolResultText("ok")}}
	inv := NewInvoker(0, nil)

	if _, err := inv.Invoke(context.Background(), testConnection(session), "ping", nil); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if session.hadDeadline {
		t.Fatalf("expected unbounded call context")
	}
}

func TestInvoker_RecordsAudit(t *testing.T) {
	rec := &spyRecorder{}
	inv := NewInvoker(0, rec)
	session := &fakeSession{callResult: mcpgo.NewToolResultText("pong")}

	if _, err := inv.Invoke(context.Background(), testConnection(session), "ping", nil); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if !strings.HasPrefix(got.CorrelationID, "srv:ping:") {
		t.Fatalf("unexpected correlation id %q", got.CorrelationID)
	}
	if got.Status != "ok" || got.Preview != "pong" {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestInvoker_RecordsFailure(t *testing.T) {
	rec := &spyRecorder{}
	inv := NewInvoker(0, rec)
	session := &fakeSession{callErr: errors.New("boom")}

	if _, err := inv.Invoke(context.Background(), testConnection(session), "ping", nil); err == nil {
		t.Fatalf("expected error")
	}

	if len(rec.records) != 1 || rec.records[0].Status != "error" {
		t.Fatalf("expected one error record, got %+v", rec.records)
	}
}

func TestInvoker_ServerSideErrorIsResultNotError(t *testing.T) {
	inv := NewInvoker(0, nil)
	session := &fakeSession{callResult: mcpgo.NewToolResultError("index out of range")}

	result, err := inv.Invoke(context.Background(), testConnection(session), "ping", nil)
	if err != nil {
		t.Fatalf("server-side tool error must not be a transport error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected IsError result, got %+v", result)
	}
	if result.Text != "index out of range" {
		t.Fatalf("unexpected result text %q", result.Text)
	}
}
