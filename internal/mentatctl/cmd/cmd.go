// Package cmd assembles the mentatctl command tree.
package cmd

import (
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/audit"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/chat"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/query"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/servers"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/tools"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

// NewMentatCtlCommand creates the `mentatctl` root command.
func NewMentatCtlCommand() *cobra.Command {
	var serverAddr string
	var timeout time.Duration

	cmds := &cobra.Command{
		Use:   "mentatctl",
		Short: "mentatctl controls the mentat API server",
		Long: heredoc.Doc(`
			mentatctl is the CLI for the mentat API server.

			It manages MCP server configurations and connections, calls tools
			directly, runs one-shot queries and opens an interactive chat
			session backed by the server's tool orchestrator.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := cmds.PersistentFlags()
	flags.StringVar(&serverAddr, "server-addr", util.DefaultServerAddr, "Mentat API server address.")
	flags.DurationVar(&timeout, "timeout", 330*time.Second, "HTTP request timeout.")
	_ = viper.BindPFlags(flags)

	client := func() *util.Client {
		return util.NewClient(serverAddr, timeout)
	}

	cmds.AddCommand(
		servers.NewCmdServers(client),
		tools.NewCmdTools(client),
		query.NewCmdQuery(client),
		chat.NewCmdChat(client),
		audit.NewCmdAudit(client),
	)

	return cmds
}
