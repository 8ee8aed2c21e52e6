package cli

import (
	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/config"
	"github.com/ngenohkevin/hivedeck-monitor/internal/server"
)

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Serve this host's process table",
		Long: `Run the process directory agent.

Serves GET /processes and the kill, suspend and resume actions for the
local host. Every route except /health requires the API key.

Examples:
  hivedeck-monitor agent
  PORT=9000 hivedeck-monitor agent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return server.New(cfg).Run()
		},
	}
}
