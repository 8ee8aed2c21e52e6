package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/config"
)

func newKeygenCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an API key",
		Long: `Generate a random API key shared by the agent and the dashboard.

With --save the key is written to the .env file as API_KEY, keeping
any other entries. The file is restricted to its owner.

Examples:
  hivedeck-monitor keygen
  hivedeck-monitor keygen --save
  hivedeck-monitor keygen --save --env-file /etc/hivedeck/.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.GenerateAPIKey()
			if err != nil {
				return err
			}

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			}

			envFile := os.Getenv("ENV_FILE")
			if envFile == "" {
				envFile = ".env"
			}
			if err := config.SaveAPIKey(envFile, key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", envFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "write the key to the .env file")
	return cmd
}
