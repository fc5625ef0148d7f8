// Package safego launches goroutines that never take the process down
// on panic.
package safego

import (
	"context"
	"runtime/debug"

	"github.com/mentatproj/mentat/pkg/logger"
)

// Go runs fn in a new goroutine, recovering and logging any panic.
// The context is accepted for call-site symmetry; cancellation is the
// callee's responsibility.
func Go(_ context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
