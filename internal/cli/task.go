package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (list, show, create, edit, delete, status, priority)",
	Long: `Task management commands.

List, search, filter and sort your tasks, create and edit them, change
status or priority, and manage comments, attachments, dependencies and
subtasks.`,
}

// task list flags.
var (
	listSearch   string
	listStatus   string
	listPriority string
	listCategory string
	listSortBy   string
	listOrder    string
	listJSON     bool
)

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your tasks",
	Long: `List your tasks with optional search, filters and sorting.

--search matches a case-insensitive substring of the title or description.
--status, --priority and --category filter by exact value (ALL disables the
filter). --sort-by is one of dueDate, title or status; --order is asc or
desc. Defaults come from the query section of .taskdeck.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		params, err := listParams()
		if err != nil {
			return err
		}

		tasks, err := TaskMgr.ListTasks(context.Background(), sess, params)
		if err != nil {
			return err
		}

		if listJSON {
			return writeJSON(cmd.OutOrStdout(), tasks)
		}
		printTaskTable(cmd.OutOrStdout(), tasks)
		return nil
	},
}

// listParams merges the list flags over the configured defaults.
func listParams() (core.QueryParams, error) {
	params := QueryDefaults
	if params.SortBy == "" {
		params = core.DefaultQueryParams()
	}
	params.Search = listSearch
	if listStatus != "" {
		params.Status = strings.ToUpper(listStatus)
	}
	if listPriority != "" {
		params.Priority = strings.ToUpper(listPriority)
	}
	if listCategory != "" {
		params.Category = listCategory
	}
	if listSortBy != "" {
		key, err := core.ParseSortKey(listSortBy)
		if err != nil {
			return params, err
		}
		params.SortBy = key
	}
	if listOrder != "" {
		order, err := core.ParseSortOrder(listOrder)
		if err != nil {
			return params, err
		}
		params.SortOrder = order
	}
	return params, nil
}

var showJSON bool

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its comments, attachments, dependencies and subtasks",
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

		ctx := context.Background()
		task, err := TaskMgr.GetTask(ctx, sess, id)
		if err != nil {
			return err
		}
		if showJSON {
			return writeJSON(cmd.OutOrStdout(), task)
		}

		comments, err := TaskMgr.ListComments(ctx, sess, id)
		if err != nil {
			return err
		}
		attachments, err := TaskMgr.ListAttachments(ctx, sess, id)
		if err != nil {
			return err
		}
		deps, err := TaskMgr.ListDependencies(ctx, sess, id)
		if err != nil {
			return err
		}
		subtasks, err := TaskMgr.ListSubtasks(ctx, sess, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTaskDetails(out, task)
		printSection(out, "Comments", len(comments))
		for _, c := range comments {
			printComment(out, c)
		}
		printSection(out, "Attachments", len(attachments))
		for _, a := range attachments {
			printAttachment(out, a)
		}
		printSection(out, "Depends on", len(deps))
		for _, d := range deps {
			fmt.Fprintf(out, "  #%-6d %-12s %s\n", d.ID, d.Status, d.Title)
		}
		printSection(out, "Subtasks", len(subtasks))
		for _, s := range subtasks {
			fmt.Fprintf(out, "  #%-6d %-12s %s\n", s.ID, s.Status, s.Title)
		}
		return nil
	},
}

// task create/edit flags.
var (
	formTitle       string
	formDescription string
	formStatus      string
	formPriority    string
	formCategory    string
	formDue         string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create a new task. Title, description and a due date of today or later
are required; status defaults to TODO, priority to MEDIUM and category to
Work. Every validation problem is reported at once, one line per field.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		draft, err := applyFormFlags(cmd, models.NewTaskDraft())
		if err != nil {
			return err
		}

		task, err := TaskMgr.CreateTask(context.Background(), sess, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", task.ID)
		printTaskDetails(cmd.OutOrStdout(), task)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Edit an existing task",
	Long: `Edit an existing task. Only the flags you pass change; the rest keep the
task's current values. The edited task is validated like a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		current, err := TaskMgr.GetTask(ctx, sess, id)
		if err != nil {
			return err
		}
		draft, err := applyFormFlags(cmd, models.DraftFromTask(*current))
		if err != nil {
			return err
		}

		task, err := TaskMgr.UpdateTask(ctx, sess, id, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", task.ID)
		printTaskDetails(cmd.OutOrStdout(), task)
		return nil
	},
}

// applyFormFlags copies the flags the user set onto draft.
func applyFormFlags(cmd *cobra.Command, draft models.TaskDraft) (models.TaskDraft, error) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		draft.Title = formTitle
	}
	if flags.Changed("description") {
		draft.Description = formDescription
	}
	if flags.Changed("status") {
		draft.Status = models.TaskStatus(strings.ToUpper(formStatus))
	}
	if flags.Changed("priority") {
		draft.Priority = models.Priority(strings.ToUpper(formPriority))
	}
	if flags.Changed("category") {
		draft.Category = models.Category(formCategory)
	}
	if flags.Changed("due") {
		due, err := models.ParseDate(formDue)
		if err != nil {
			return draft, core.FieldErrors{core.FieldDueDate: "Due date must be a date like 2025-12-31"}
		}
		draft.DueDate = due
	}
	return draft, nil
}

var deleteYes bool

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task permanently",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		if !deleteYes && !confirm(cmd, fmt.Sprintf("Delete task #%d?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if err := TaskMgr.DeleteTask(context.Background(), sess, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
		return nil
	},
}

// --- output helpers ---

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printTaskTable(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	today := now()
	fmt.Fprintf(w, "  %-7s %-12s %-7s %-10s %-11s %s\n", "ID", "STATUS", "PRI", "CATEGORY", "DUE", "TITLE")
	fmt.Fprintf(w, "  %-7s %-12s %-7s %-10s %-11s %s\n", "--", "------", "---", "--------", "---", "-----")
	for _, t := range tasks {
		due := "-"
		if !t.DueDate.IsZero() {
			due = t.DueDate.String()
		}
		title := t.Title
		if t.Overdue(today) {
			title += " (overdue)"
		}
		fmt.Fprintf(w, "  %-7s %-12s %-7s %-10s %-11s %s\n",
			fmt.Sprintf("#%d", t.ID), t.Status, t.Priority, t.Category, due, title)
	}
	fmt.Fprintf(w, "\n  %d task(s)\n", len(tasks))
}

func printTaskDetails(w io.Writer, t *models.Task) {
	fmt.Fprintf(w, "#%d %s\n", t.ID, t.Title)
	fmt.Fprintf(w, "  Status:      %s\n", t.Status)
	fmt.Fprintf(w, "  Priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "  Category:    %s\n", t.Category)
	if !t.DueDate.IsZero() {
		due := t.DueDate.String()
		if t.Overdue(now()) {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "  Due:         %s\n", due)
	}
	if t.ParentID != 0 {
		fmt.Fprintf(w, "  Subtask of:  #%d\n", t.ParentID)
	}
	if t.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", t.Description)
	}
}

func printSection(w io.Writer, title string, n int) {
	fmt.Fprintf(w, "\n== %s (%d) ==\n", title, n)
}

func init() {
	taskListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive text to find in title or description")
	taskListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (TODO, IN_PROGRESS, COMPLETED, ALL)")
	taskListCmd.Flags().StringVar(&listPriority, "priority", "", "Filter by priority (LOW, MEDIUM, HIGH, URGENT, ALL)")
	taskListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category (Work, Personal, Shopping, Health, Education, Other, ALL)")
	taskListCmd.Flags().StringVar(&listSortBy, "sort-by", "", "Sort key (dueDate, title, status)")
	taskListCmd.Flags().StringVar(&listOrder, "order", "", "Sort order (asc, desc)")
	taskListCmd.Flags().BoolVar(&listJSON, "json", false, "Output tasks as JSON")
	_ = taskListCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	_ = taskListCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	_ = taskListCmd.RegisterFlagCompletionFunc("category", completeCategories)
	_ = taskListCmd.RegisterFlagCompletionFunc("sort-by", completeSortKeys)

	taskShowCmd.Flags().BoolVar(&showJSON, "json", false, "Output the task as JSON")

	for _, c := range []*cobra.Command{taskCreateCmd, taskEditCmd} {
		c.Flags().StringVar(&formTitle, "title", "", "Task title (at most 50 characters)")
		c.Flags().StringVar(&formDescription, "description", "", "Task description (at most 200 characters)")
		c.Flags().StringVar(&formStatus, "status", "", "Status (TODO, IN_PROGRESS, COMPLETED)")
		c.Flags().StringVar(&formPriority, "priority", "", "Priority (LOW, MEDIUM, HIGH, URGENT)")
		c.Flags().StringVar(&formCategory, "category", "", "Category (Work, Personal, Shopping, Health, Education, Other)")
		c.Flags().StringVar(&formDue, "due", "", "Due date (YYYY-MM-DD), today or later")
		_ = c.RegisterFlagCompletionFunc("status", completeStatuses)
		_ = c.RegisterFlagCompletionFunc("priority", completePriorities)
		_ = c.RegisterFlagCompletionFunc("category", completeCategories)
	}

	taskDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")

	taskShowCmd.ValidArgsFunction = completeTaskIDs()
	taskEditCmd.ValidArgsFunction = completeTaskIDs()
	taskDeleteCmd.ValidArgsFunction = completeTaskIDs()

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	rootCmd.AddCommand(taskCmd)
}
