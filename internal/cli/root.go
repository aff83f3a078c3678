package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Version returns the version injected via ldflags.
func Version() string {
	return appVersion
}

var rootCmd = &cobra.Command{
	Use:   "tdeck",
	Short: "taskdeck - a terminal client for your task backend",
	Long: `taskdeck (tdeck) manages your tasks on a task backend from the terminal.

Log in once, then list, search, filter and sort your tasks, create and edit
them, track comments, attachments, dependencies and subtasks, and browse
everything in an interactive list view.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tdeck %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ErrorMessage renders a command error for the terminal. Authentication
// failures get a hint to log in again.
func ErrorMessage(err error) string {
	msg := core.UserMessage(err)
	if errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrNotLoggedIn) {
		msg += "\nRun 'tdeck login' to sign in."
	}
	return msg
}
