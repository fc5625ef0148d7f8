package orchestrator

import (
	"context"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	"github.com/mentatproj/mentat/pkg/utils/safego"
)

// Query event types.
const (
	EventIteration = "iteration"
	EventToolCall  = "tool_call"
	EventAnswer    = "answer"
	EventError     = "error"
)

const eventPreviewLen = 200

// QueryEvent is one progress event of a streamed query.
type QueryEvent struct {
	Type      string `json:"type"`
	Iteration int    `json:"iteration,omitempty"`
	ToolCalls int    `json:"tool_calls,omitempty"`
	Server    string `json:"server,omitempty"`
	Tool      string `json:"tool,omitempty"`
	Preview   string `json:"preview,omitempty"`

	// Result carries the final outcome on "answer" events.
	Result *QueryResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type emitFn func(*QueryEvent)

func (f emitFn) event(ev *QueryEvent) {
	if f != nil {
		f(ev)
	}
}

// ProcessStream runs the query asynchronously and streams progress
// events. The reader yields iteration and tool_call events as the loop
// advances and closes after a terminal answer or error event. The
// caller owns the reader and must Close it.
func (o *Orchestrator) ProcessStream(ctx context.Context, req *QueryRequest) *schema.StreamReader[*QueryEvent] {
	sr, sw := schema.Pipe[*QueryEvent](8)

	safego.Go(ctx, func() {
		defer sw.Close()

		result, err := o.process(ctx, req, func(ev *QueryEvent) {
			sw.Send(ev, nil)
		})
		if err != nil {
			sw.Send(&QueryEvent{Type: EventError, Error: err.Error()}, nil)
			return
		}
		sw.Send(&QueryEvent{Type: EventAnswer, Result: result}, nil)
	})

	return sr
}

// eventPreview trims s to at most eventPreviewLen runes, never
// splitting a multi-byte rune.
func eventPreview(s string) string {
	if utf8.RuneCountInString(s) <= eventPreviewLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:eventPreviewLen]) + "..."
}
