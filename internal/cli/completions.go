package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// completeTaskIDs returns a completion function that lists the user's task
// ids, optionally excluding tasks in the given statuses. It completes
// nothing when no session is stored.
func completeTaskIDs(excludeStatuses ...models.TaskStatus) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		sess, err := requireSession()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := TaskMgr.ListTasks(context.Background(), sess, core.DefaultQueryParams())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.TaskStatus]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, task := range tasks {
			if exclude[task.Status] {
				continue
			}
			id := strconv.FormatInt(task.ID, 10)
			if toComplete == "" || strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+string(task.Status)+": "+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completePriorities returns the priority values.
func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"LOW\tLow priority",
		"MEDIUM\tMedium priority (default)",
		"HIGH\tHigh priority",
		"URGENT\tUrgent",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeStatuses returns the status values.
func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"TODO\tNot started",
		"IN_PROGRESS\tBeing worked on",
		"COMPLETED\tDone",
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeCategories(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeSortKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(core.SortKeys))
	for i, k := range core.SortKeys {
		out[i] = string(k)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
