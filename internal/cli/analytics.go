package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var analyticsJSON bool

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

const barWidth = 30

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show task analytics computed by the backend",
	Long: `Show totals, completion rate, overdue count and the distribution of your
tasks by priority and category, as computed by the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		a, err := TaskMgr.Analytics(context.Background(), sess)
		if err != nil {
			return err
		}
		if analyticsJSON {
			return writeJSON(cmd.OutOrStdout(), a)
		}
		printAnalytics(cmd.OutOrStdout(), a)
		return nil
	},
}

func printAnalytics(w io.Writer, a *models.Analytics) {
	rate := 0.0
	if a.TotalTasks > 0 {
		rate = float64(a.CompletedTasks) / float64(a.TotalTasks) * 100
	}

	fmt.Fprintln(w, "Task analytics")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-18s %d\n", "Total:", a.TotalTasks)
	fmt.Fprintf(w, "  %-18s %d (%.0f%%)\n", "Completed:", a.CompletedTasks, rate)
	fmt.Fprintf(w, "  %-18s %d\n", "Pending:", a.PendingTasks())
	fmt.Fprintf(w, "  %-18s %d\n", "Overdue:", a.OverdueTasks)

	fmt.Fprintln(w, "\n  By priority:")
	priorities := []struct {
		label string
		n     int
	}{
		{string(models.PriorityLow), a.LowPriorityTasks},
		{string(models.PriorityMedium), a.MediumPriorityTasks},
		{string(models.PriorityHigh), a.HighPriorityTasks},
		{string(models.PriorityUrgent), a.UrgentTasks},
	}
	for _, p := range priorities {
		fmt.Fprintf(w, "    %-10s %4d %s\n", p.label, p.n, bar(p.n, a.TotalTasks))
	}

	if len(a.CategoryDistribution) > 0 {
		fmt.Fprintln(w, "\n  By category:")
		for _, c := range a.CategoryDistribution {
			fmt.Fprintf(w, "    %-10s %4d %s\n", c.Name, c.Value, bar(c.Value, a.TotalTasks))
		}
	}
}

// bar renders n as a share of total, barWidth cells wide at 100%.
func bar(n, total int) string {
	if total <= 0 || n <= 0 {
		return ""
	}
	cells := n * barWidth / total
	if cells == 0 {
		cells = 1
	}
	if cells > barWidth {
		cells = barWidth
	}
	return barStyle.Render(strings.Repeat("█", cells))
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "Output analytics as JSON")
	rootCmd.AddCommand(analyticsCmd)
}
