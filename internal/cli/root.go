// Package cli provides the hivedeck-monitor commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/config"
	"github.com/ngenohkevin/hivedeck-monitor/internal/directory"
)

// Version is set at build time
var Version = "1.0.0"

// globalFlags are shared by every subcommand
type globalFlags struct {
	envFile string
	url     string
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		// Errors already printed by cobra
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "hivedeck-monitor",
		Short:   "Hivedeck Monitor - watch and control processes on a host",
		Version: Version,
		Long: `Hivedeck Monitor watches the processes of a host through a process
directory agent and lets an operator terminate, suspend or resume them.

Run 'agent' on the host to expose its process table, then point
'dashboard', 'list' or 'action' at it with DIRECTORY_URL or --url.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.envFile != "" {
				os.Setenv("ENV_FILE", flags.envFile)
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to the .env file (default: ./.env)")
	root.PersistentFlags().StringVar(&flags.url, "url", "", "process directory base URL (overrides DIRECTORY_URL)")

	root.AddCommand(
		newAgentCmd(),
		newDashboardCmd(flags),
		newListCmd(flags),
		newActionCmd(flags),
		newKeygenCmd(),
	)

	return root
}

// loadClient loads configuration and builds a directory client from it
func loadClient(flags *globalFlags) (*config.Config, *directory.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if flags.url != "" {
		cfg.DirectoryURL = flags.url
	}

	client, err := directory.NewClient(cfg.DirectoryURL, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid DIRECTORY_URL: %w", err)
	}
	return cfg, client, nil
}
