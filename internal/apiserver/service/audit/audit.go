// Package audit keeps a durable per-tool-call trail in SQLite. Each
// completed call lands as one row: correlation id, server, tool,
// duration, status and a short result preview.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/pkg/logger"
)

const tableToolCalls = "tool_calls"

// Recorder writes tool-call records to SQLite. Safe for concurrent use;
// database/sql serializes access to the single connection pool.
type Recorder struct {
	db *sql.DB
}

var _ mcp.Recorder = (*Recorder)(nil)

// Open creates (if needed) and opens the audit database at path.
func Open(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Recorder{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + tableToolCalls + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			correlation_id TEXT NOT NULL,
			server TEXT NOT NULL,
			tool TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			preview TEXT NOT NULL,
			called_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_calls_server ON ` + tableToolCalls + `(server)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_calls_called_at ON ` + tableToolCalls + `(called_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// Record persists one completed tool call. Failures are logged and
// swallowed: auditing never blocks or fails a tool call.
func (r *Recorder) Record(ctx context.Context, rec *mcp.CallRecord) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+tableToolCalls+` (correlation_id, server, tool, duration_ms, status, preview, called_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.CorrelationID, rec.Server, rec.Tool, rec.Duration.Milliseconds(), rec.Status, rec.Preview, rec.CalledAt.UnixMilli())
	if err != nil {
		logger.Warn("[Audit] failed to record tool call %s: %v", rec.CorrelationID, err)
	}
}

// Entry is one audit row as returned by Recent.
type Entry struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Server        string    `json:"server"`
	Tool          string    `json:"tool"`
	DurationMs    int64     `json:"duration_ms"`
	Status        string    `json:"status"`
	Preview       string    `json:"preview"`
	CalledAt      time.Time `json:"called_at"`
}

// Recent returns up to limit audit entries, newest first. server narrows
// to one server when non-empty.
func (r *Recorder) Recent(ctx context.Context, server string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, correlation_id, server, tool, duration_ms, status, preview, called_at FROM ` + tableToolCalls
	args := []any{}
	if server != "" {
		query += ` WHERE server = ?`
		args = append(args, server)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool calls: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var calledAt int64
		if err := rows.Scan(&e.ID, &e.CorrelationID, &e.Server, &e.Tool, &e.DurationMs, &e.Status, &e.Preview, &calledAt); err != nil {
			return nil, fmt.Errorf("failed to scan tool call: %w", err)
		}
		e.CalledAt = time.UnixMilli(calledAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
