package mcp

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the registry. Callers match with errors.Is.
var (
	// ErrServerNotFound means the server name is not present in the
	// available configuration set.
	ErrServerNotFound = errors.New("mcp server not found")

	// ErrServerExists means an AddServer collided with an existing entry.
	ErrServerExists = errors.New("mcp server already exists")

	// ErrServerDisabled means the server is configured but disabled.
	ErrServerDisabled = errors.New("mcp server is disabled")

	// ErrNotConnected means the server has no live connection.
	ErrNotConnected = errors.New("mcp server not connected")
)

// ConnectStage identifies which phase of connection setup failed.
type ConnectStage string

const (
	StageTransport ConnectStage = "transport"
	StageHandshake ConnectStage = "handshake"
	StageDiscovery ConnectStage = "discovery"
)

// ConnectError wraps a connection setup failure with the server name and
// the stage that failed, so callers can tell a dead endpoint apart from a
// protocol mismatch.
type ConnectError struct {
	Server string
	Stage  ConnectStage
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("mcp server %q: %s failed: %v", e.Server, e.Stage, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
