package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/internal/dashboard"
	"github.com/ngenohkevin/hivedeck-monitor/internal/directory"
	"github.com/ngenohkevin/hivedeck-monitor/internal/tui"
)

const hostInfoTimeout = 3 * time.Second

func newDashboardCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Watch processes in an interactive table",
		Long: `Open the interactive process dashboard.

Polls the process directory every POLL_INTERVAL_MS and renders the
result as a sortable table. Logs go to LOG_FILE so they never corrupt
the screen.

Examples:
  hivedeck-monitor dashboard
  hivedeck-monitor dashboard --url http://raspberrypi.local:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := loadClient(flags)
			if err != nil {
				return err
			}

			logFile, err := tea.LogToFile(cfg.LogFile, "dashboard")
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer logFile.Close()

			feed := tui.NewFeed()
			defer feed.Close()
			d := dashboard.New(client, client, dashboard.Options{
				Interval:        cfg.PollInterval,
				RequestTimeout:  cfg.RequestTimeout,
				RefreshOnAction: cfg.RefreshOnAction,
				OnUpdate:        feed.Publish,
			})

			m := tui.New(d, feed, tui.Options{
				Host:          hostSummary(cmd.Context(), client),
				Source:        client.BaseURL(),
				ActionTimeout: cfg.RequestTimeout,
			})

			if err := d.Start(); err != nil {
				return err
			}
			defer d.Close()

			log.Printf("Dashboard watching %s every %v", client.BaseURL(), cfg.PollInterval)

			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running TUI: %w", err)
			}
			return nil
		},
	}
}

// hostSummary describes the watched host, or returns "" if the agent
// cannot say
func hostSummary(ctx context.Context, client *directory.Client) string {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, hostInfoTimeout)
	defer cancel()

	info, err := client.HostInfo(ctx)
	if err != nil {
		log.Printf("Host info unavailable: %v", err)
		return ""
	}
	return info.Summary()
}
