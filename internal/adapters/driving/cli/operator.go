package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var loginUsername string

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage the operator account and session",
	Long: `The operator reviews and exports complaints. There is one operator
account; create it with 'whistle operator setup'.`,
}

var operatorSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the operator account",
	Args:  cobra.NoArgs,
	RunE:  runOperatorSetup,
}

var operatorLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start an operator session",
	Args:  cobra.NoArgs,
	RunE:  runOperatorLogin,
}

var operatorLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the operator session",
	Args:  cobra.NoArgs,
	RunE:  runOperatorLogout,
}

var operatorPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the operator username and password",
	Long:  `Change the operator credentials. Existing sessions are ended.`,
	Args:  cobra.NoArgs,
	RunE:  runOperatorPasswd,
}

var operatorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runOperatorStatus,
}

func init() {
	operatorLoginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Operator username")

	operatorCmd.AddCommand(operatorSetupCmd)
	operatorCmd.AddCommand(operatorLoginCmd)
	operatorCmd.AddCommand(operatorLogoutCmd)
	operatorCmd.AddCommand(operatorPasswdCmd)
	operatorCmd.AddCommand(operatorStatusCmd)
	rootCmd.AddCommand(operatorCmd)
}

func runOperatorSetup(cmd *cobra.Command, _ []string) error {
	if operatorService == nil {
		return errors.New("operator service not configured")
	}
	if operatorService.IsConfigured() {
		return fmt.Errorf("%w: operator account exists, use 'whistle operator passwd'", domain.ErrAlreadyExists)
	}

	p := newPrompter(cmd)
	username := p.line(fmt.Sprintf("Username [%s]: ", domain.DefaultOperatorUsername))
	password, err := promptNewPassword(p)
	if err != nil {
		return err
	}

	if err := operatorService.ChangeCredentials(cmd.Context(), "", username, password); err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	cmd.Println("Operator account created. Run 'whistle operator login' to start a session.")
	return nil
}

func runOperatorLogin(cmd *cobra.Command, _ []string) error {
	if operatorService == nil {
		return errors.New("operator service not configured")
	}
	if !operatorService.IsConfigured() {
		return fmt.Errorf("%w: run 'whistle operator setup' first", domain.ErrAuthRequired)
	}

	p := newPrompter(cmd)
	username := loginUsername
	if username == "" {
		username = p.line("Username: ")
	}

	for attempt := 1; attempt <= domain.MaxLoginAttempts; attempt++ {
		password := p.secret("Password: ")
		session, err := operatorService.Login(cmd.Context(), username, password)
		if err == nil {
			cmd.Printf("Logged in as %s until %s\n", session.Operator, session.ExpiresAt.Local().Format("15:04"))
			return nil
		}
		if !errors.Is(err, domain.ErrAuthInvalid) {
			return fmt.Errorf("login failed: %w", err)
		}
		if left := domain.MaxLoginAttempts - attempt; left > 0 {
			cmd.Printf("Invalid credentials, %d attempts left.\n", left)
		}
	}
	return fmt.Errorf("%w: too many failed attempts", domain.ErrAuthInvalid)
}

func runOperatorLogout(cmd *cobra.Command, _ []string) error {
	if operatorService == nil {
		return errors.New("operator service not configured")
	}
	if err := operatorService.Logout(); err != nil {
		return err
	}
	cmd.Println("Logged out.")
	return nil
}

func runOperatorPasswd(cmd *cobra.Command, _ []string) error {
	if operatorService == nil {
		return errors.New("operator service not configured")
	}
	if !operatorService.IsConfigured() {
		return fmt.Errorf("%w: run 'whistle operator setup' first", domain.ErrAuthRequired)
	}

	p := newPrompter(cmd)
	current := p.secret("Current password: ")
	username := p.line("New username (blank to keep): ")
	password, err := promptNewPassword(p)
	if err != nil {
		return err
	}

	if err := operatorService.ChangeCredentials(cmd.Context(), current, username, password); err != nil {
		return fmt.Errorf("failed to change credentials: %w", err)
	}
	cmd.Println("Credentials updated. Please log in again.")
	return nil
}

func runOperatorStatus(cmd *cobra.Command, _ []string) error {
	if operatorService == nil {
		return errors.New("operator service not configured")
	}
	if !operatorService.IsConfigured() {
		cmd.Println("No operator account. Run 'whistle operator setup'.")
		return nil
	}

	ctx, err := operatorService.Resume(cmd.Context())
	if err != nil {
		cmd.Printf("Not logged in (%v)\n", err)
		return nil
	}
	session, _ := domain.SessionFromContext(ctx)
	cmd.Printf("Logged in as %s, session ends in %s\n",
		session.Operator, time.Until(session.ExpiresAt).Round(time.Minute))
	return nil
}

func promptNewPassword(p *prompter) (string, error) {
	password := p.secret(fmt.Sprintf("New password (min %d characters): ", domain.MinPasswordLength))
	confirm := p.secret("Confirm password: ")
	if password != confirm {
		return "", fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}
	return password, nil
}
