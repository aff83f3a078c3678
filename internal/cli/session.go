package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// requireSession checks that the task services are wired and returns the
// stored session.
func requireSession() (*models.Session, error) {
	if TaskMgr == nil {
		return nil, fmt.Errorf("task manager not initialized")
	}
	if Auth == nil {
		return nil, fmt.Errorf("auth service not initialized")
	}
	return Auth.Current()
}

// parseID parses a positive numeric id argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive number", kind, s)
	}
	return id, nil
}

// confirm asks a yes/no question on the command's input. Anything other
// than y or yes declines.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readSecret reads a single line from r, e.g. a password piped on stdin.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
