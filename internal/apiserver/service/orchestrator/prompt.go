package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
)

// buildSystemPrompt renders the system message: the connected servers,
// their tools, and (in chained mode) guidance for sequential tool use.
func buildSystemPrompt(tools map[string][]mcp.ToolDescriptor, chaining bool) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant with access to tools from connected MCP servers.\n")
	b.WriteString("Use the tools when they help answer the user's question; answer directly when they don't.\n\n")
	b.WriteString("Connected servers and their tools:\n")

	servers := make([]string, 0, len(tools))
	for name := range tools {
		servers = append(servers, name)
	}
	sort.Strings(servers)

	for _, server := range servers {
		fmt.Fprintf(&b, "\n## %s\n", server)
		for _, desc := range tools[server] {
			if desc.Description != "" {
				fmt.Fprintf(&b, "- %s: %s\n", desc.Name, desc.Description)
			} else {
				fmt.Fprintf(&b, "- %s\n", desc.Name)
			}
		}
	}

	if chaining {
		b.WriteString("\nWhen a task needs several tools, call them one at a time: ")
		b.WriteString("use each result to decide the next call instead of requesting everything upfront. ")
		b.WriteString("Results from earlier calls may change what you ask for next.\n")
	} else {
		b.WriteString("\nYou may request several independent tool calls at once; they will run concurrently.\n")
	}

	b.WriteString("\nWhen you have enough information, give the final answer without further tool calls.")

	return b.String()
}

// forcedSummaryPrompt asks for a final answer once the iteration ceiling
// is reached.
const forcedSummaryPrompt = "You have reached the tool call limit. Provide your final answer now using the information gathered so far."

// noServersAnswer is returned without consulting the model when no MCP
// server is in scope for the query.
const noServersAnswer = "No MCP servers are connected. Connect to a server first, then retry the query."
