// Package chat implements the interactive `mentatctl chat` TUI.
package chat

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

// NewCmdChat returns the `chat` command.
func NewCmdChat(client func() *util.Client) *cobra.Command {
	var servers []string
	var provider, model string
	var batched bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question answering session",
		Example: heredoc.Doc(`
			# Open an interactive session against every connected server
			mentatctl chat

			# Scope the session to one server
			mentatctl chat --server docs`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := &util.QueryRequest{
				Servers:  servers,
				Provider: provider,
				Model:    model,
			}
			if batched {
				chaining := false
				base.Chaining = &chaining
			}
			return runTUI(client(), base)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVar(&servers, "server", nil, "Restrict tools to this server. Repeatable.")
	fs.StringVar(&provider, "provider", "", "LLM provider id. Defaults to the apiserver's default.")
	fs.StringVar(&model, "model", "", "Model id. Defaults to the provider's default.")
	fs.BoolVar(&batched, "batched", false, "Run independent tool calls concurrently instead of chaining.")

	return cmd
}
