package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var taskCommentCmd = &cobra.Command{
	Use:   "comment",
	Short: "List or add task comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List a task's comments, oldest first",
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

		comments, err := TaskMgr.ListComments(context.Background(), sess, id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(comments) == 0 {
			fmt.Fprintln(out, "No comments yet.")
			return nil
		}
		for _, c := range comments {
			printComment(out, c)
		}
		return nil
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <task-id> <text...>",
	Short: "Add a comment to a task",
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

		c, err := TaskMgr.AddComment(context.Background(), sess, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added comment #%d to task #%d\n", c.ID, id)
		return nil
	},
}

func printComment(w io.Writer, c models.Comment) {
	author := c.UserName
	if author == "" {
		author = "unknown"
	}
	when := ""
	if c.CreatedAt != nil && !c.CreatedAt.IsZero() {
		when = " " + c.CreatedAt.Local().Format(time.DateTime)
	}
	fmt.Fprintf(w, "  %s%s\n    %s\n", author, when, c.Content)
}

func init() {
	commentListCmd.ValidArgsFunction = completeTaskIDs()
	commentAddCmd.ValidArgsFunction = completeTaskIDs()
	taskCommentCmd.AddCommand(commentListCmd)
	taskCommentCmd.AddCommand(commentAddCmd)
	taskCmd.AddCommand(taskCommentCmd)
}
