package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Change a task's status",
	Long: `Change a task's status to TODO, IN_PROGRESS or COMPLETED.

Example:
  tdeck task status 42 completed`,
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
		status := models.TaskStatus(strings.ToUpper(args[1]))

		task, err := TaskMgr.UpdateStatus(context.Background(), sess, id, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", task.ID, task.Status)
		return nil
	},
}

func init() {
	taskStatusCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 1 {
			return completeStatuses(cmd, args, toComplete)
		}
		return completeTaskIDs()(cmd, args, toComplete)
	}
	taskCmd.AddCommand(taskStatusCmd)
}
