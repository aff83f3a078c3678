package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/observability"
)

var (
	metricsJSON     bool
	metricsSince    string
	metricsWarnings bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display local activity metrics",
	Long: `Display metrics derived from the local event log.

Metrics include tasks created, updated, completed and deleted, status
transitions, tasks created by priority and category, comments, attachments,
dependencies, subtasks, logins and expired sessions.

Forced logouts and deletions are recorded at WARN level; --warnings lists
those events instead of the summary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized")
		}

		sinceTime, err := observability.ParseSince(metricsSince, now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		if metricsWarnings {
			return printWarnings(cmd, sinceTime)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, metrics)
		}

		// Table format.
		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		rows := []struct {
			label string
			value int
		}{
			{"Events recorded:", metrics.EventCount},
			{"Tasks created:", metrics.TasksCreated},
			{"Tasks updated:", metrics.TasksUpdated},
			{"Tasks completed:", metrics.TasksCompleted},
			{"Tasks deleted:", metrics.TasksDeleted},
			{"Comments added:", metrics.CommentsAdded},
			{"Attachments uploaded:", metrics.AttachmentsUploaded},
			{"Dependencies added:", metrics.DependenciesAdded},
			{"Subtasks added:", metrics.SubtasksAdded},
			{"Logins:", metrics.Logins},
			{"Sessions expired:", metrics.SessionsExpired},
			{"Warnings:", metrics.Warnings},
		}
		for _, r := range rows {
			fmt.Fprintf(out, "  %-24s %d\n", r.label, r.value)
		}

		printCounts(cmd, "Status transitions:", metrics.StatusTransitions)
		printCounts(cmd, "Created by priority:", metrics.TasksByPriority)
		printCounts(cmd, "Created by category:", metrics.TasksByCategory)

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// printWarnings lists the WARN-level events recorded since the given time.
func printWarnings(cmd *cobra.Command, since time.Time) error {
	if EventLog == nil {
		return fmt.Errorf("event log not initialized")
	}
	events, err := EventLog.Read(observability.EventFilter{Since: &since, Level: observability.LevelWarn})
	if err != nil {
		return fmt.Errorf("reading warnings: %w", err)
	}

	out := cmd.OutOrStdout()
	if metricsJSON {
		if events == nil {
			events = []observability.Event{}
		}
		return writeJSON(out, events)
	}
	if len(events) == 0 {
		fmt.Fprintf(out, "No warnings since %s.\n", since.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintf(out, "%d warning(s) since %s\n\n", len(events), since.Format("2006-01-02"))
	for _, e := range events {
		fmt.Fprintf(out, "  %s  %-20s %s\n", e.Time.Local().Format(time.DateTime), e.Type, describeEvent(e))
	}
	return nil
}

func describeEvent(e observability.Event) string {
	var parts []string
	if id, ok := e.Data["task_id"].(float64); ok {
		parts = append(parts, fmt.Sprintf("task #%d", int64(id)))
	}
	if id, ok := e.Data["attachment_id"].(float64); ok {
		parts = append(parts, fmt.Sprintf("attachment #%d", int64(id)))
	}
	if e.UserID != 0 {
		parts = append(parts, fmt.Sprintf("user %d", e.UserID))
	}
	return strings.Join(parts, ", ")
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "    %-28s %d\n", k+":", counts[k])
	}
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().BoolVar(&metricsWarnings, "warnings", false, "List WARN-level events (forced logouts, deletions) instead of the summary")
	metricsCmd.Flags().StringVar(&metricsSince, "since", observability.DefaultMetricsWindow, "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
