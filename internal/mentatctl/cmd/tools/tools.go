// Package tools implements the `mentatctl tools` command group.
package tools

import (
	"fmt"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

// NewCmdTools returns the `tools` command group.
func NewCmdTools(client func() *util.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and call tools on connected servers",
		Example: heredoc.Doc(`
			# List every tool across connected servers
			mentatctl tools list

			# Call a tool directly with JSON arguments
			mentatctl tools call docs search --args '{"q":"release notes"}'`),
	}

	cmd.AddCommand(
		newListCmd(client),
		newCallCmd(client),
	)

	return cmd
}

func newListCmd(client func() *util.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tools grouped by connected server",
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := client().ListTools(cmd.Context())
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				fmt.Println("No connected servers.")
				return nil
			}

			names := make([]string, 0, len(servers))
			for name := range servers {
				names = append(names, name)
			}
			sort.Strings(names)

			table := uitable.New()
			table.MaxColWidth = 70
			table.AddRow("SERVER", "TOOL", "DESCRIPTION")
			for _, name := range names {
				for _, tool := range servers[name] {
					table.AddRow(name, tool.Name, tool.Description)
				}
			}
			fmt.Println(table)
			return nil
		},
	}
}

func newCallCmd(client func() *util.Client) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <server> <tool>",
		Short: "Execute one tool and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			var args map[string]any
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
					return fmt.Errorf("invalid --args JSON: %w", err)
				}
			}

			result, err := client().CallTool(cmd.Context(), posArgs[0], posArgs[1], args)
			if err != nil {
				return err
			}

			if result.IsError {
				fmt.Println(color.RedString("Tool reported an error:"))
			}
			if result.Kind == "structured" {
				data, err := json.MarshalIndent(result.Structured)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "", "Tool arguments as a JSON object.")

	return cmd
}
