package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdeck/internal/core"
)

var (
	loginEmail         string
	loginPassword      string
	loginPasswordStdin bool
	signupName         string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the task backend",
	Long: `Log in with your email and password. The returned token and user are
stored in the session file and used by every other command until you log
out or the backend rejects the token.

Use --password-stdin to avoid leaving the password in shell history:

  echo "$PASSWORD" | tdeck login --email ada@example.com --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Auth == nil {
			return fmt.Errorf("auth service not initialized")
		}
		password, err := passwordFromFlags(cmd)
		if err != nil {
			return err
		}

		sess, err := Auth.Login(context.Background(), loginEmail, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Auth == nil {
			return fmt.Errorf("auth service not initialized")
		}
		password, err := passwordFromFlags(cmd)
		if err != nil {
			return err
		}

		sess, err := Auth.Signup(context.Background(), signupName, loginEmail, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Auth == nil {
			return fmt.Errorf("auth service not initialized")
		}
		if err := Auth.Logout(); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Auth == nil {
			return fmt.Errorf("auth service not initialized")
		}
		sess, err := Auth.Current()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s> (user %d)\n", sess.User.Name, sess.User.Email, sess.User.ID)
		if APIBaseURL != "" {
			fmt.Fprintf(out, "  Backend:   %s\n", APIBaseURL)
		}
		if !sess.LoggedInAt.IsZero() {
			fmt.Fprintf(out, "  Logged in: %s\n", sess.LoggedInAt.Local().Format(time.DateTime))
		}
		if exp, ok := core.TokenExpiry(sess.Token); ok {
			fmt.Fprintf(out, "  Expires:   %s\n", exp.Local().Format(time.DateTime))
		}
		return nil
	},
}

func passwordFromFlags(cmd *cobra.Command) (string, error) {
	if !loginPasswordStdin {
		return loginPassword, nil
	}
	if loginPassword != "" {
		return "", fmt.Errorf("--password and --password-stdin are mutually exclusive")
	}
	return readSecret(cmd.InOrStdin())
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "Account email")
		c.Flags().StringVar(&loginPassword, "password", "", "Account password")
		c.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	}
	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
