// Package orchestrator drives the query loop: it hands connected MCP
// tools to a chat model and executes the tool calls the model requests
// until it produces a final answer.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/pkg/logger"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

// DefaultMaxIterations bounds the model round-trips per query.
const DefaultMaxIterations = 10

// ToolExecutor is the slice of the MCP registry the orchestrator needs.
type ToolExecutor interface {
	AllTools() map[string][]mcp.ToolDescriptor
	Tools(name string) ([]mcp.ToolDescriptor, error)
	ExecuteTool(ctx context.Context, server, tool string, args map[string]any) (*mcp.ToolResult, error)
}

// ModelBuilder constructs tool-calling chat models.
type ModelBuilder interface {
	BuildChatModel(ctx context.Context, providerID, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error)
}

// QueryRequest is one user query against the connected servers.
type QueryRequest struct {
	Query string `json:"query"`

	// Servers restricts the tool scope. Empty means every connected
	// server.
	Servers []string `json:"servers,omitempty"`

	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Chaining selects sequential tool execution with reflection
	// between calls. Defaults to true; false runs each batch of calls
	// concurrently.
	Chaining *bool `json:"chaining,omitempty"`

	Params *entity.LLMParams `json:"params,omitempty"`
}

func (r *QueryRequest) chained() bool {
	return r.Chaining == nil || *r.Chaining
}

// QueryResult is the outcome of one processed query.
type QueryResult struct {
	Answer        string   `json:"answer"`
	ServersUsed   []string `json:"servers_used,omitempty"`
	ToolCallsMade int      `json:"tool_calls_made"`
	Iterations    int      `json:"iterations"`
}

// Orchestrator runs queries. Safe for concurrent use: all per-query
// state lives on the stack.
type Orchestrator struct {
	executor      ToolExecutor
	models        ModelBuilder
	maxIterations int
}

// NewOrchestrator creates an Orchestrator. maxIterations <= 0 selects
// the default ceiling.
func NewOrchestrator(executor ToolExecutor, models ModelBuilder, maxIterations int) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		executor:      executor,
		models:        models,
		maxIterations: maxIterations,
	}
}

// Process answers one query. Tool failures flow back to the model as
// error-tagged tool results; a failed model completion is fatal.
func (o *Orchestrator) Process(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	return o.process(ctx, req, nil)
}

func (o *Orchestrator) process(ctx context.Context, req *QueryRequest, emit emitFn) (*QueryResult, error) {
	scope := o.collectTools(req.Servers)
	if len(scope) == 0 {
		return &QueryResult{Answer: noServersAnswer}, nil
	}

	ts := newToolSet(scope)

	base, err := o.models.BuildChatModel(ctx, req.Provider, req.Model, req.Params)
	if err != nil {
		return nil, fmt.Errorf("build chat model: %w", err)
	}

	toolModel := base
	if !ts.empty() {
		toolModel, err = base.WithTools(ts.infos)
		if err != nil {
			return nil, fmt.Errorf("bind tools: %w", err)
		}
	}

	chained := req.chained()
	history := []*schema.Message{
		schema.SystemMessage(buildSystemPrompt(scope, chained)),
		schema.UserMessage(req.Query),
	}

	result := &QueryResult{}
	used := make(map[string]bool)

	for i := 0; i < o.maxIterations; i++ {
		resp, err := toolModel.Generate(ctx, history)
		if err != nil {
			return nil, fmt.Errorf("completion failed: %w", err)
		}
		result.Iterations = i + 1
		history = append(history, resp)

		if len(resp.ToolCalls) == 0 {
			result.Answer = resp.Content
			result.ServersUsed = sortedKeys(used)
			return result, nil
		}

		logger.Info("[Orchestrator] iteration %d: model requested %d tool calls", i+1, len(resp.ToolCalls))
		emit.event(&QueryEvent{Type: EventIteration, Iteration: i + 1, ToolCalls: len(resp.ToolCalls)})

		if chained {
			history, err = o.runChained(ctx, base, ts, resp.ToolCalls, history, used, result, emit)
			if err != nil {
				return nil, err
			}
		} else {
			history = o.runBatched(ctx, ts, resp.ToolCalls, history, used, result, emit)
		}
	}

	// Ceiling reached: force a final answer with no further tool use.
	history = append(history, schema.UserMessage(forcedSummaryPrompt))
	final, err := base.Generate(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("final completion failed: %w", err)
	}

	result.Answer = final.Content
	result.ServersUsed = sortedKeys(used)
	return result, nil
}

// runChained executes the batch one call at a time. Between calls the
// unbound model reflects on the result so later calls can build on
// earlier ones; no reflection follows the last call of the batch.
func (o *Orchestrator) runChained(ctx context.Context, reflector model.ToolCallingChatModel, ts *toolSet, calls []schema.ToolCall, history []*schema.Message, used map[string]bool, result *QueryResult, emit emitFn) ([]*schema.Message, error) {
	for idx, call := range calls {
		msg, server := o.executeCall(ctx, ts, call)
		result.ToolCallsMade++
		if server != "" {
			used[server] = true
		}
		history = append(history, msg)
		emit.event(&QueryEvent{Type: EventToolCall, Server: server, Tool: call.Function.Name, Preview: eventPreview(msg.Content)})

		if idx < len(calls)-1 {
			refl, err := reflector.Generate(ctx, history)
			if err != nil {
				return nil, fmt.Errorf("reflection completion failed: %w", err)
			}
			history = append(history, refl)
		}
	}
	return history, nil
}

// runBatched dispatches every call of the batch concurrently, then
// appends the results in the order the model emitted the calls. One
// failing call never aborts its siblings.
func (o *Orchestrator) runBatched(ctx context.Context, ts *toolSet, calls []schema.ToolCall, history []*schema.Message, used map[string]bool, result *QueryResult, emit emitFn) []*schema.Message {
	msgs := make([]*schema.Message, len(calls))
	servers := make([]string, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call schema.ToolCall) {
			defer wg.Done()
			msgs[i], servers[i] = o.executeCall(ctx, ts, call)
		}(i, call)
	}
	wg.Wait()

	for i := range calls {
		result.ToolCallsMade++
		if servers[i] != "" {
			used[servers[i]] = true
		}
		history = append(history, msgs[i])
		emit.event(&QueryEvent{Type: EventToolCall, Server: servers[i], Tool: calls[i].Function.Name, Preview: eventPreview(msgs[i].Content)})
	}
	return history
}

// executeCall routes and runs one tool call, converting any failure into
// an error-tagged tool result for the model. Returns the server that
// handled the call, or "" when routing failed.
func (o *Orchestrator) executeCall(ctx context.Context, ts *toolSet, call schema.ToolCall) (*schema.Message, string) {
	name := call.Function.Name

	server, ok := ts.routing[name]
	if !ok {
		logger.Warn("[Orchestrator] model requested unknown tool %q", name)
		return toolMessage(call.ID, fmt.Sprintf("Error: tool %q is not available", name)), ""
	}

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolMessage(call.ID, fmt.Sprintf("Error: invalid arguments for tool %q: %v", name, err)), ""
		}
	}

	toolResult, err := o.executor.ExecuteTool(ctx, server, name, args)
	if err != nil {
		return toolMessage(call.ID, "Error: "+err.Error()), server
	}

	content := toolResult.String()
	if toolResult.IsError {
		content = "Error: " + content
	}
	return toolMessage(call.ID, content), server
}

// collectTools snapshots the tool scope. Requested servers without a
// live connection are skipped, not fatal; an all-skipped scope falls
// through to the no-servers sentinel.
func (o *Orchestrator) collectTools(servers []string) map[string][]mcp.ToolDescriptor {
	if len(servers) == 0 {
		return o.executor.AllTools()
	}

	scope := make(map[string][]mcp.ToolDescriptor, len(servers))
	for _, name := range servers {
		tools, err := o.executor.Tools(name)
		if err != nil {
			logger.Warn("[Orchestrator] skipping requested server %q: %v", name, err)
			continue
		}
		scope[name] = tools
	}
	return scope
}

func toolMessage(callID, content string) *schema.Message {
	return &schema.Message{
		Role:       schema.Tool,
		ToolCallID: callID,
		Content:    content,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
