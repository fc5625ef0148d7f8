// Package apiserver assembles the mentat API server: the MCP registry,
// the LLM provider modules and the query orchestrator behind one REST
// and gRPC surface.
package apiserver

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mentatproj/mentat/internal/apiserver/config"
	"github.com/mentatproj/mentat/internal/apiserver/options"
	"github.com/mentatproj/mentat/pkg/logger"
)

// NewAPIServerCommand creates the mentat-apiserver root command.
func NewAPIServerCommand(basename string) *cobra.Command {
	opts := options.NewOptions()

	var configFile string
	var logLevel string
	var logFile string

	cmd := &cobra.Command{
		Use:   basename,
		Short: "The mentat API server",
		Long: `The mentat API server manages MCP (Model Context Protocol) server
connections and answers natural-language queries by orchestrating LLM
tool calls against them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				logger.SetLevel(logLevel)
			}
			if logFile != "" {
				if err := logger.InitLog(logFile); err != nil {
					return err
				}
				defer logger.FlushLog()
			}

			if configFile != "" {
				viper.SetConfigFile(configFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file %q: %w", configFile, err)
				}
				if err := viper.Unmarshal(opts); err != nil {
					return fmt.Errorf("failed to unmarshal config: %w", err)
				}
			}

			if err := opts.Complete(); err != nil {
				return err
			}
			if errs := opts.Validate(); len(errs) > 0 {
				msgs := make([]string, 0, len(errs))
				for _, err := range errs {
					msgs = append(msgs, err.Error())
				}
				return fmt.Errorf("invalid options: %s", strings.Join(msgs, "; "))
			}

			logger.Info("[Apiserver] starting with options: %s", opts)

			cfg, err := config.CreateConfigFromOptions(opts)
			if err != nil {
				return err
			}

			return Run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configFile, "config", "c", "", "Path to the apiserver configuration file (yaml/json).")
	fs.StringVar(&logLevel, "log-level", "", "Override log level (debug|info|warn|error).")
	fs.StringVar(&logFile, "log-file", "", "Also write logs to this file.")
	opts.AddFlags(fs)

	_ = viper.BindPFlags(fs)

	return cmd
}
