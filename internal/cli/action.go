package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

func newActionCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "action <terminate|suspend|resume> <pid>",
		Short: "Terminate, suspend or resume one process",
		Long: `Send one control command to the process directory.

Examples:
  hivedeck-monitor action terminate 4242
  hivedeck-monitor action suspend 4242
  hivedeck-monitor action resume 4242`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := process.ParseAction(args[0])
			if err != nil {
				return err
			}

			pid, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil || pid <= 0 {
				return fmt.Errorf("invalid pid %q", args[1])
			}

			cfg, client, err := loadClient(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()
			}

			if err := client.Dispatch(ctx, int32(pid), action); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s sent to PID %d\n", action, pid)
			return nil
		},
	}
}
