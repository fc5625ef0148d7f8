// Package audit implements the `mentatctl audit` command.
package audit

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

// NewCmdAudit returns the `audit` command.
func NewCmdAudit(client func() *util.Client) *cobra.Command {
	var server string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool calls from the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := client().Audit(cmd.Context(), server, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No tool calls recorded.")
				return nil
			}

			table := uitable.New()
			table.MaxColWidth = 50
			table.AddRow("CALLED AT", "SERVER", "TOOL", "DURATION", "STATUS", "PREVIEW")
			for _, e := range entries {
				status := e.Status
				if status == "error" {
					status = color.RedString(status)
				}
				table.AddRow(
					e.CalledAt.Format("2006-01-02 15:04:05"),
					e.Server,
					e.Tool,
					(time.Duration(e.DurationMs) * time.Millisecond).String(),
					status,
					e.Preview,
				)
			}
			fmt.Println(table)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&server, "server", "", "Only show calls against this server.")
	fs.IntVar(&limit, "limit", 50, "Maximum number of records.")

	return cmd
}
