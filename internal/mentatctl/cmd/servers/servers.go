// Package servers implements the `mentatctl servers` command group.
package servers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

var listExample = heredoc.Doc(`
	# List every configured server and its connection state
	mentatctl servers list

	# Show one server with its discovered tools
	mentatctl servers get docs

	# Register a stdio server and connect it
	mentatctl servers add docs --command docs-server --arg --root --arg /srv/docs
	mentatctl servers connect docs

	# Connect an SSE server by URL in one step
	mentatctl servers connect-url remote http://127.0.0.1:3000/sse`)

// NewCmdServers returns the `servers` command group.
func NewCmdServers(client func() *util.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servers",
		Short:   "Manage MCP server configurations and connections",
		Example: listExample,
	}

	cmd.AddCommand(
		newListCmd(client),
		newGetCmd(client),
		newAddCmd(client),
		newRemoveCmd(client),
		newConnectCmd(client),
		newConnectURLCmd(client),
		newDisconnectCmd(client),
	)

	return cmd
}

func newListCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured servers and their connection state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			list, err := c.ListServers(cmd.Context())
			if err != nil {
				return err
			}
			if len(list.Available) == 0 {
				fmt.Println("No MCP servers configured.")
				return nil
			}

			connected := make(map[string]bool, len(list.Connected))
			for _, name := range list.Connected {
				connected[name] = true
			}

			table := uitable.New()
			table.AddRow("NAME", "TRANSPORT", "STATE", "TOOLS", "DESCRIPTION")
			for _, name := range list.Available {
				info, err := c.DescribeServer(cmd.Context(), name)
				if err != nil {
					table.AddRow(name, "?", color.RedString("error"), "-", err.Error())
					continue
				}
				table.AddRow(name, info.Transport, stateOf(info, connected[name]), len(info.Tools), info.Description)
			}
			fmt.Println(table)
			return nil
		},
	}
}

func stateOf(info *util.ServerInfo, connected bool) string {
	switch {
	case connected:
		return color.GreenString("connected")
	case !info.Enabled:
		return color.YellowString("disabled")
	default:
		return "available"
	}
}

func newGetCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <server>",
		Short: "Show one server's configuration, state and tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := client().DescribeServer(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			table := uitable.New()
			table.AddRow("Name:", info.Name)
			if info.Description != "" {
				table.AddRow("Description:", info.Description)
			}
			table.AddRow("Transport:", info.Transport)
			if info.Command != "" {
				table.AddRow("Command:", info.Command)
			}
			if info.URL != "" {
				table.AddRow("URL:", info.URL)
			}
			table.AddRow("Enabled:", info.Enabled)
			table.AddRow("Connected:", info.Connected)
			if info.ConnectedAt != nil {
				table.AddRow("Connected at:", info.ConnectedAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Println(table)

			if len(info.Tools) > 0 {
				fmt.Println()
				tools := uitable.New()
				tools.MaxColWidth = 70
				tools.AddRow("TOOL", "DESCRIPTION")
				sort.Slice(info.Tools, func(i, j int) bool { return info.Tools[i].Name < info.Tools[j].Name })
				for _, tool := range info.Tools {
					tools.AddRow(tool.Name, tool.Description)
				}
				fmt.Println(tools)
			}
			return nil
		},
	}
}

func newAddCmd(client func() *util.Client) *cobra.Command {
	spec := &util.ServerSpec{}
	var args []string
	var env []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new MCP server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			spec.Name = posArgs[0]
			spec.Args = args
			spec.Env = parseEnv(env)

			info, err := client().AddServer(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Printf("Server %q added (transport %s).\n", info.Name, info.Transport)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&spec.Description, "description", "", "Human readable description.")
	fs.StringVar(&spec.Transport, "transport", "", "Transport: stdio or sse. Defaults to stdio.")
	fs.StringVar(&spec.Command, "command", "", "Executable for stdio transport.")
	fs.StringArrayVar(&args, "arg", nil, "Command argument. Repeatable.")
	fs.StringArrayVar(&env, "env", nil, "KEY=VALUE environment entry. Repeatable.")
	fs.StringVar(&spec.URL, "url", "", "Endpoint URL for sse transport.")
	fs.BoolVar(&spec.Disabled, "disabled", false, "Register the server without making it connectable.")

	return cmd
}

func parseEnv(entries []string) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, _ := strings.Cut(entry, "=")
		env[key] = value
	}
	return env
}

func newRemoveCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <server>",
		Short: "Remove a server, disconnecting it first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().RemoveServer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Server %q removed.\n", args[0])
			return nil
		},
	}
}

func newConnectCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <server>",
		Short: "Connect a configured server and discover its tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := client().Connect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Server %q connected, %d tools discovered.\n", info.Name, len(info.Tools))
			return nil
		},
	}
}

func newConnectURLCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "connect-url <name> <url>",
		Short: "Register and connect a network (SSE) server in one step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := client().ConnectURL(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Server %q connected at %s, %d tools discovered.\n", info.Name, info.URL, len(info.Tools))
			return nil
		},
	}
}

func newDisconnectCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <server>",
		Short: "Close the connection to one server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().Disconnect(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Server %q disconnected.\n", args[0])
			return nil
		},
	}
}
