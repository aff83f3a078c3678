package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install completions for one
// shell. An empty installPath means --install is unsupported.
type shellCompletion struct {
	generate    func(w io.Writer) error
	sessionHint string
	installPath func(home string) string
	afterHint   func(target string) []string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate:    func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		sessionHint: `eval "$(tdeck completion bash)"`,
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "tdeck")
		},
		afterHint: func(target string) []string {
			return []string{"Restart your shell or run: source " + target}
		},
	},
	"zsh": {
		generate:    func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		sessionHint: `eval "$(tdeck completion zsh)"`,
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_tdeck")
		},
		afterHint: func(target string) []string {
			return []string{
				"Ensure this directory is in your fpath. Add to ~/.zshrc if needed:",
				fmt.Sprintf("  fpath=(%s $fpath)", filepath.Dir(target)),
				"  autoload -Uz compinit && compinit",
			}
		},
	},
	"fish": {
		generate:    func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		sessionHint: "tdeck completion fish | source",
		installPath: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "tdeck.fish")
		},
		afterHint: func(string) []string {
			return []string{"Completions will be available in new fish sessions automatically."}
		},
	},
	"powershell": {
		generate:    func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		sessionHint: "tdeck completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for tdeck",
	Long: `Set up shell tab-completions for tdeck commands, flags, and task ids.

Supported shells: bash, zsh, fish, powershell

Quick install (adds completions to your shell profile):

  tdeck completion bash --install

Or print the completion script to stdout (for manual setup):

  tdeck completion zsh`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell profile")

	// Remove Cobra's default completion command and add ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := shellCompletions[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		return installCompletion(cmd, args[0], shell)
	}

	// Hints go to stderr so eval "$(tdeck completion bash)" still works.
	hints := []string{
		"# To load completions in your current session:",
		"#   " + shell.sessionHint,
		"#",
	}
	if shell.installPath != nil {
		hints = append(hints, "# To install permanently:", "#   tdeck completion "+args[0]+" --install", "#")
	}
	for _, line := range hints {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), line)
	}
	return shell.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, name string, shell shellCompletion) error {
	if shell.installPath == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'tdeck completion %s' and add the output to your profile", name, name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}

	target := shell.installPath(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, shell.generate); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	for _, line := range shell.afterHint(target) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// writeCompletionFile creates target and writes the completion script into
// it, propagating close errors.
func writeCompletionFile(target string, generate func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
