package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var taskDepsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Manage the tasks a task depends on",
}

var depsListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List the tasks a task depends on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}

		deps, err := TaskMgr.ListDependencies(context.Background(), sess, id)
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d has no dependencies.\n", id)
			return nil
		}
		printTaskTable(cmd.OutOrStdout(), deps)
		return nil
	},
}

var depsAddCmd = &cobra.Command{
	Use:   "add <task-id> <depends-on-id>",
	Short: "Make a task depend on another task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		depID, err := parseID("dependency", args[1])
		if err != nil {
			return err
		}

		if err := TaskMgr.AddDependency(context.Background(), sess, id, depID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d now depends on #%d\n", id, depID)
		return nil
	},
}

var depsRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <depends-on-id>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		depID, err := parseID("dependency", args[1])
		if err != nil {
			return err
		}

		if err := TaskMgr.RemoveDependency(context.Background(), sess, id, depID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d no longer depends on #%d\n", id, depID)
		return nil
	},
}

var taskSubtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a task's subtasks",
}

var subtaskListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List a task's subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}

		subtasks, err := TaskMgr.ListSubtasks(context.Background(), sess, id)
		if err != nil {
			return err
		}
		if len(subtasks) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d has no subtasks.\n", id)
			return nil
		}
		printTaskTable(cmd.OutOrStdout(), subtasks)
		return nil
	},
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task-id> <title...>",
	Short: "Add a subtask; it inherits the parent's category",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}

		sub, err := TaskMgr.AddSubtask(context.Background(), sess, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added subtask #%d to task #%d\n", sub.ID, id)
		return nil
	},
}

var subtaskRemoveCmd = &cobra.Command{
	Use:   "remove <subtask-id>",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("subtask", args[0])
		if err != nil {
			return err
		}

		if err := TaskMgr.RemoveSubtask(context.Background(), sess, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed subtask #%d\n", id)
		return nil
	},
}

func init() {
	taskDepsCmd.AddCommand(depsListCmd)
	taskDepsCmd.AddCommand(depsAddCmd)
	taskDepsCmd.AddCommand(depsRemoveCmd)
	taskCmd.AddCommand(taskDepsCmd)

	taskSubtaskCmd.AddCommand(subtaskListCmd)
	taskSubtaskCmd.AddCommand(subtaskAddCmd)
	taskSubtaskCmd.AddCommand(subtaskRemoveCmd)
	taskCmd.AddCommand(taskSubtaskCmd)
}
