package mcp

import (
	"context"
	"fmt"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/mentatproj/mentat/pkg/logger"
)

// DefaultToolCallTimeout bounds a single tool call unless configured
// otherwise. Zero disables the deadline.
const DefaultToolCallTimeout = 300 * time.Second

const resultPreviewLen = 200

// CallRecord is the audit view of one completed tool call.
type CallRecord struct {
	CorrelationID string
	Server        string
	Tool          string
	Duration      time.Duration
	Status        string // "ok" or "error"
	Preview       string
	CalledAt      time.Time
}

// Recorder receives one record per completed tool call. Implementations
// must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, rec *CallRecord)
}

// Invoker executes a single tool call against a live connection. It is
// stateless: timing, correlation and logging per call, no retries.
type Invoker interface {
	Invoke(ctx context.Context, conn *Connection, tool string, args map[string]any) (*ToolResult, error)
}

type toolInvoker struct {
	callTimeout time.Duration
	recorder    Recorder
}

// NewInvoker creates an Invoker with the given per-call timeout.
// recorder may be nil.
func NewInvoker(callTimeout time.Duration, recorder Recorder) Invoker {
	return &toolInvoker{callTimeout: callTimeout, recorder: recorder}
}

func (i *toolInvoker) Invoke(ctx context.Context, conn *Connection, tool string, args map[string]any) (*ToolResult, error) {
	start := time.Now()
	corrID := fmt.Sprintf("%s:%s:%d", conn.Name, tool, start.UnixMilli())

	logger.WithFields(map[string]interface{}{
		"correlation_id": corrID,
		"server":         conn.Name,
		"tool":           tool,
	}).Info("tool call start")

	if i.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.callTimeout)
		defer cancel()
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	raw, err := conn.Client.CallTool(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"correlation_id": corrID,
			"server":         conn.Name,
			"tool":           tool,
			"duration_ms":    elapsed.Milliseconds(),
			"error":          err.Error(),
		}).Error("tool call failed")
		i.record(ctx, corrID, conn.Name, tool, elapsed, "error", err.Error(), start)

		return nil, fmt.Errorf("tool %q on server %q failed after %s: %w", tool, conn.Name, elapsed.Round(time.Millisecond), err)
	}

	result := normalizeResult(raw)
	preview := previewOf(result.String(), resultPreviewLen)

	status := "ok"
	if result.IsError {
		status = "error"
	}

	logger.WithFields(map[string]interface{}{
		"correlation_id": corrID,
		"server":         conn.Name,
		"tool":           tool,
		"duration_ms":    elapsed.Milliseconds(),
		"status":         status,
		"result_kind":    result.Kind(),
		"preview":        preview,
	}).Info("tool call complete")
	i.record(ctx, corrID, conn.Name, tool, elapsed, status, preview, start)

	return result, nil
}

func (i *toolInvoker) record(ctx context.Context, corrID, server, tool string, d time.Duration, status, preview string, at time.Time) {
	if i.recorder == nil {
		return
	}
	i.recorder.Record(ctx, &CallRecord{
		CorrelationID: corrID,
		Server:        server,
		Tool:          tool,
		Duration:      d,
		Status:        status,
		Preview:       previewOf(preview, resultPreviewLen),
		CalledAt:      at,
	})
}
