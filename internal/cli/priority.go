package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var taskPriorityCmd = &cobra.Command{
	Use:   "priority <task-id> <priority>",
	Short: "Change a task's priority",
	Long: `Change a task's priority to LOW, MEDIUM, HIGH or URGENT.

Example:
  tdeck task priority 42 urgent`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		priority := models.Priority(strings.ToUpper(args[1]))

		task, err := TaskMgr.UpdatePriority(context.Background(), sess, id, priority)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d priority is now %s\n", task.ID, task.Priority)
		return nil
	},
}

func init() {
	taskPriorityCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 1 {
			return completePriorities(cmd, args, toComplete)
		}
		return completeTaskIDs(models.StatusCompleted)(cmd, args, toComplete)
	}
	taskCmd.AddCommand(taskPriorityCmd)
}
