// Package query implements the one-shot `mentatctl query` command.
package query

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

// NewCmdQuery returns the `query` command.
func NewCmdQuery(client func() *util.Client) *cobra.Command {
	var servers []string
	var provider, model string
	var batched bool

	cmd := &cobra.Command{
		Use:   "query <message>",
		Short: "Answer one question using tools from connected servers",
		Example: heredoc.Doc(`
			# Ask across every connected server
			mentatctl query "what changed in the last release?"

			# Restrict the tool scope and pick a model
			mentatctl query --server docs --model claude-sonnet-4-5 "summarize the API docs"

			# Let independent tool calls run concurrently
			mentatctl query --batched "compare the docs and ticket backlogs"`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &util.QueryRequest{
				Query:    strings.Join(args, " "),
				Servers:  servers,
				Provider: provider,
				Model:    model,
			}
			if batched {
				chaining := false
				req.Chaining = &chaining
			}

			fmt.Printf("%sThinking...%s", "\033[2m", "\033[0m")
			result, err := client().Query(cmd.Context(), req)
			fmt.Print("\r\033[K")
			if err != nil {
				return err
			}

			width := util.TermWidth() - 4
			fmt.Println(util.RenderMarkdown(result.Answer, width))

			if result.ToolCallsMade > 0 {
				fmt.Println()
				fmt.Println(color.New(color.Faint).Sprintf("%d tool calls over %d iterations (servers: %s)",
					result.ToolCallsMade, result.Iterations, strings.Join(result.ServersUsed, ", ")))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVar(&servers, "server", nil, "Restrict tools to this server. Repeatable.")
	fs.StringVar(&provider, "provider", "", "LLM provider id. Defaults to the apiserver's default.")
	fs.StringVar(&model, "model", "", "Model id. Defaults to the provider's default.")
	fs.BoolVar(&batched, "batched", false, "Run independent tool calls concurrently instead of chaining.")

	return cmd
}
