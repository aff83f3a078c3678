package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
)

var alertsNotify bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show overdue and due-soon tasks",
	Long: `Evaluate alert conditions against your open tasks and display any
triggered alerts.

Alerts fire for overdue tasks, tasks due within alerts.due_soon_days, and
more than alerts.max_open_tasks open tasks. With --notify the alerts are
also posted to the configured Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized")
		}
		sess, err := requireSession()
		if err != nil {
			return err
		}

		ctx := context.Background()
		tasks, err := TaskMgr.ListTasks(ctx, sess, core.DefaultQueryParams())
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}
		alerts := AlertEngine.Evaluate(tasks, now())

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
		} else {
			fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
			for _, alert := range alerts {
				severity := strings.ToUpper(string(alert.Severity))
				fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
			}
		}

		if alertsNotify {
			if Notifier == nil {
				return fmt.Errorf("notifier not configured: set notifications.slack.webhook_url in .taskdeck.yaml")
			}
			if err := Notifier.Notify(ctx, alerts); err != nil {
				return fmt.Errorf("sending notification: %w", err)
			}
			if len(alerts) > 0 {
				fmt.Fprintln(out, "\nNotification sent.")
			}
		}

		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Send alerts to the configured Slack webhook")
	rootCmd.AddCommand(alertsCmd)
}
