package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var taskAttachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage task attachments (list, upload, download, delete)",
}

var attachListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List a task's attachments",
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

		attachments, err := TaskMgr.ListAttachments(context.Background(), sess, id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(attachments) == 0 {
			fmt.Fprintln(out, "No attachments.")
			return nil
		}
		for _, a := range attachments {
			printAttachment(out, a)
		}
		return nil
	},
}

var attachUploadCmd = &cobra.Command{
	Use:   "upload <task-id> <file>",
	Short: "Upload a file to a task",
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

		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[1], err)
		}
		defer f.Close()

		a, err := TaskMgr.UploadAttachment(context.Background(), sess, id, filepath.Base(args[1]), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as attachment #%d (%s)\n", a.FileName, a.ID, formatSize(a.FileSize))
		return nil
	},
}

var attachOutput string

var attachDownloadCmd = &cobra.Command{
	Use:   "download <attachment-id>",
	Short: "Download an attachment",
	Long: `Download an attachment to the file named by --output, or to stdout when
--output is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("attachment", args[0])
		if err != nil {
			return err
		}
		if attachOutput == "" {
			return fmt.Errorf("--output is required (use - for stdout)")
		}

		if attachOutput == "-" {
			_, err := TaskMgr.DownloadAttachment(context.Background(), sess, id, cmd.OutOrStdout())
			return err
		}

		f, err := os.Create(attachOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", attachOutput, err)
		}
		n, err := TaskMgr.DownloadAttachment(context.Background(), sess, id, f)
		closeErr := f.Close()
		if err != nil {
			_ = os.Remove(attachOutput)
			return err
		}
		if closeErr != nil {
			return fmt.Errorf("closing %s: %w", attachOutput, closeErr)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%s)\n", attachOutput, formatSize(n))
		return nil
	},
}

var attachDeleteCmd = &cobra.Command{
	Use:   "delete <attachment-id>",
	Short: "Delete an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		id, err := parseID("attachment", args[0])
		if err != nil {
			return err
		}

		if err := TaskMgr.DeleteAttachment(context.Background(), sess, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted attachment #%d\n", id)
		return nil
	},
}

func printAttachment(w io.Writer, a models.Attachment) {
	fmt.Fprintf(w, "  #%-6d %-32s %10s\n", a.ID, a.FileName, formatSize(a.FileSize))
}

// formatSize renders a byte count in binary units.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	attachDownloadCmd.Flags().StringVarP(&attachOutput, "output", "o", "", "Destination file, or - for stdout")
	attachListCmd.ValidArgsFunction = completeTaskIDs()

	taskAttachCmd.AddCommand(attachListCmd)
	taskAttachCmd.AddCommand(attachUploadCmd)
	taskAttachCmd.AddCommand(attachDownloadCmd)
	taskAttachCmd.AddCommand(attachDeleteCmd)
	taskCmd.AddCommand(taskAttachCmd)
}
